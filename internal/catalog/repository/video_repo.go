package repository

import (
	"video_editing_platform/internal/catalog/domain"

	"gorm.io/gorm"
)

// VideoRepo definition video catalog repo
type VideoRepo interface {
	AutoMigrate() error
	Create(video *domain.Video) error
	GetByID(id uint) (*domain.Video, error)
	Update(video *domain.Video) error
	Delete(id uint) error
	List(q domain.ListVideosQuery) ([]domain.Video, error)
	Count(q domain.ListVideosQuery) (int64, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

// AutoMigrate 依模型建立/更新 videos 資料表
func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Video{})
}

func (r *videoRepo) Create(video *domain.Video) error {
	return r.db.Create(video).Error
}

// GetByID get Video by id
func (r *videoRepo) GetByID(id uint) (*domain.Video, error) {
	var v domain.Video
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) Update(video *domain.Video) error {
	return r.db.Save(video).Error
}

func (r *videoRepo) Delete(id uint) error {
	return r.db.Delete(&domain.Video{}, id).Error
}

// List 分頁查詢，標題模糊搜尋使用 PostgreSQL 的 ILIKE（不分大小寫）
func (r *videoRepo) List(q domain.ListVideosQuery) ([]domain.Video, error) {
	var videos []domain.Video
	offset := (q.Page - 1) * q.Limit

	query := r.applyFilters(r.db, q).Limit(q.Limit).Offset(offset)

	switch q.SortBy {
	case "title":
		query = query.Order("title ASC")
	case "uploadDate":
		query = query.Order("created_at ASC")
	case "editDate":
		query = query.Order("updated_at ASC")
	}

	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// Count 與 List 相同條件的總筆數，用於計算總頁數
func (r *videoRepo) Count(q domain.ListVideosQuery) (int64, error) {
	var total int64
	if err := r.applyFilters(r.db.Model(&domain.Video{}), q).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *videoRepo) applyFilters(db *gorm.DB, q domain.ListVideosQuery) *gorm.DB {
	if q.Query != "" {
		db = db.Where("title ILIKE ?", "%"+q.Query+"%")
	}
	if q.Exclude != 0 {
		db = db.Where("id != ?", q.Exclude)
	}
	if q.PlaylistID != nil {
		db = db.Where("playlist_id = ?", *q.PlaylistID)
	}
	if q.Username != "" {
		db = db.Where("username = ?", q.Username)
	}
	return db
}
