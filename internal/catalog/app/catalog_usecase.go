package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"time"

	"video_editing_platform/internal/catalog/domain"
	"video_editing_platform/internal/catalog/repository"
	"video_editing_platform/pkg/database"
	errprocess "video_editing_platform/pkg/err"
	"video_editing_platform/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// videoPrefix / thumbnailPrefix Media Store 上的 key 前綴
	videoPrefix     = "videos/"
	thumbnailPrefix = "thumbnails/"
)

// CatalogUseCase 這裡封裝了影片目錄對外提供的應用服務
type CatalogUseCase interface {
	RequestUpload(ctx context.Context, up domain.UploadVideoReq, username string) (*domain.UploadVideoRes, error)
	ListVideos(ctx context.Context, q domain.ListVideosQuery) (*domain.ListVideosRes, error)
	GetVideo(ctx context.Context, id uint) (*domain.VideoInfo, error)
	UpdateVideo(ctx context.Context, id uint, req domain.UpdateVideoReq, username string) error
	DeleteVideo(ctx context.Context, id uint, filename, username string, isAdmin bool) error
	DownloadURL(ctx context.Context, filename string) (string, error)
}

type catalogUseCase struct {
	MinioClient database.MinIOClientRepo
	VideoRepo   repository.VideoRepo
	ListCache   database.RedisRepository[domain.ListVideosRes]
	VideoCache  database.RedisRepository[domain.VideoInfo]

	PresignExpiry time.Duration
	CacheTTL      time.Duration
}

// NewCatalogUseCase 建立一個新的 CatalogUseCase
func NewCatalogUseCase(
	minIO database.MinIOClientRepo,
	repo repository.VideoRepo,
	listCache database.RedisRepository[domain.ListVideosRes],
	videoCache database.RedisRepository[domain.VideoInfo],
	presignExpiry, cacheTTL time.Duration,
) CatalogUseCase {
	if presignExpiry <= 0 {
		presignExpiry = time.Hour
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &catalogUseCase{
		MinioClient:   minIO,
		VideoRepo:     repo,
		ListCache:     listCache,
		VideoCache:    videoCache,
		PresignExpiry: presignExpiry,
		CacheTTL:      cacheTTL,
	}
}

// uniqueObjectName 以 uuid + 毫秒時間戳產生不會碰撞的 object name，保留原始副檔名
func uniqueObjectName(filename string) string {
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixMilli(), path.Ext(filename))
}

// RequestUpload 產生影片（與可選縮圖）的 presigned 上傳連結並寫入目錄，
// 影片 bytes 由 client 直接傳到 Media Store，不經過 API
func (s *catalogUseCase) RequestUpload(ctx context.Context, up domain.UploadVideoReq, username string) (*domain.UploadVideoRes, error) {
	if up.Format == "" {
		return nil, errprocess.Set(fmt.Sprintf("filename[%s] format required", up.Filename))
	}

	objectName := uniqueObjectName(up.Filename)
	presignedURL, err := s.MinioClient.PresignPutURL(ctx, videoPrefix+objectName, s.PresignExpiry)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("filename[%s] 生成上傳連結失敗 : %v", up.Filename, err))
	}

	var thumbnailURL, thumbnailName string
	if up.Thumbnail != "" && up.ThumbnailFormat != "" {
		thumbnailName = uniqueObjectName(up.Thumbnail)
		thumbnailURL, err = s.MinioClient.PresignPutURL(ctx, thumbnailPrefix+thumbnailName, s.PresignExpiry)
		if err != nil {
			return nil, errprocess.Set(fmt.Sprintf("filename[%s] 生成縮圖上傳連結失敗 : %v", up.Filename, err))
		}
	}

	video := domain.Video{
		Title:       up.Title,
		Description: up.Description,
		Filename:    objectName,
		Username:    username,
		Thumbnail:   thumbnailName,
		PlaylistID:  up.PlaylistID,
		Size:        up.Size,
		Format:      up.Format,
	}
	if err := s.VideoRepo.Create(&video); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("filename[%s] 資料庫建立影片失敗 : %v", up.Filename, err))
	}

	return &domain.UploadVideoRes{
		PresignedURL:          presignedURL,
		ThumbnailPresignedURL: thumbnailURL,
		Filename:              objectName,
		ThumbnailFilename:     thumbnailName,
	}, nil
}

// ListVideos 分頁查詢影片，公開列表走 redis 快取
func (s *catalogUseCase) ListVideos(ctx context.Context, q domain.ListVideosQuery) (*domain.ListVideosRes, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 6
	}

	// 使用者私有列表不進共用快取
	cacheable := q.Username == ""
	cacheKey := fmt.Sprintf("videos:%d:%d:%s:%d:%s", q.Page, q.Limit, q.Query, q.Exclude, q.SortBy)

	if cacheable {
		if cached, err := s.ListCache.Get(ctx, cacheKey); err == nil {
			return &cached, nil
		} else if !errors.Is(err, database.ErrCacheMiss) {
			// 快取故障只記錄，不影響讀取
			logger.Log.Warn(fmt.Sprintf("讀取列表快取失敗: %v", err))
		}
	}

	videos, err := s.VideoRepo.List(q)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("查詢影片列表失敗 : %v", err))
	}
	total, err := s.VideoRepo.Count(q)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("計算影片總數失敗 : %v", err))
	}

	result := make([]domain.VideoInfo, 0, len(videos))
	for _, v := range videos {
		info, err := s.videoInfo(ctx, v)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}

	res := domain.ListVideosRes{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		Result:     result,
	}

	if cacheable {
		if err := s.ListCache.Set(ctx, cacheKey, res, s.CacheTTL); err != nil {
			logger.Log.Warn(fmt.Sprintf("寫入列表快取失敗: %v", err))
		}
	}
	return &res, nil
}

// GetVideo 取單一影片資訊，走 redis 快取
func (s *catalogUseCase) GetVideo(ctx context.Context, id uint) (*domain.VideoInfo, error) {
	cacheKey := fmt.Sprintf("video:%d", id)
	if cached, err := s.VideoCache.Get(ctx, cacheKey); err == nil {
		return &cached, nil
	} else if !errors.Is(err, database.ErrCacheMiss) {
		logger.Log.Warn(fmt.Sprintf("讀取影片快取失敗: %v", err))
	}

	video, err := s.VideoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, errprocess.Set(fmt.Sprintf("videoID[%d] 查詢影片失敗 : %v", id, err))
	}

	info, err := s.videoInfo(ctx, *video)
	if err != nil {
		return nil, err
	}

	if err := s.VideoCache.Set(ctx, cacheKey, info, s.CacheTTL); err != nil {
		logger.Log.Warn(fmt.Sprintf("寫入影片快取失敗: %v", err))
	}
	return &info, nil
}

// UpdateVideo 更新影片檔與 metadata：檢查擁有者與舊檔名後，刪除舊 object 再更新資料列
func (s *catalogUseCase) UpdateVideo(ctx context.Context, id uint, req domain.UpdateVideoReq, username string) error {
	video, err := s.VideoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVideoNotFound
		}
		return errprocess.Set(fmt.Sprintf("videoID[%d] 查詢影片失敗 : %v", id, err))
	}

	if video.Username != username {
		return domain.ErrPermissionDenied
	}
	if video.Filename != req.PreviousFilename {
		return domain.ErrFilenameMismatch
	}

	if err := s.MinioClient.RemoveObject(ctx, videoPrefix+req.PreviousFilename); err != nil {
		return errprocess.Set(fmt.Sprintf("videoID[%d] 刪除舊影片物件失敗 : %v", id, err))
	}

	video.Filename = req.NewFilename
	video.Title = req.Title
	video.Description = req.Description
	video.PlaylistID = req.PlaylistID
	if err := s.VideoRepo.Update(video); err != nil {
		return errprocess.Set(fmt.Sprintf("videoID[%d] 更新影片記錄失敗 : %v", id, err))
	}

	// 讓下一次讀取回源；videos:* 列表快取不主動失效，靠 TTL 過期
	if err := s.VideoCache.Del(ctx, fmt.Sprintf("video:%d", id)); err != nil {
		logger.Log.Warn(fmt.Sprintf("清除影片快取失敗: %v", err))
	}
	return nil
}

// DeleteVideo 刪除影片：需要 admin 且為擁有者，object 與資料列一併刪除
func (s *catalogUseCase) DeleteVideo(ctx context.Context, id uint, filename, username string, isAdmin bool) error {
	video, err := s.VideoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVideoNotFound
		}
		return errprocess.Set(fmt.Sprintf("videoID[%d] 查詢影片失敗 : %v", id, err))
	}

	if !isAdmin || video.Username != username {
		return domain.ErrPermissionDenied
	}
	if video.Filename != filename {
		return domain.ErrFilenameMismatch
	}

	if err := s.MinioClient.RemoveObject(ctx, videoPrefix+filename); err != nil {
		return errprocess.Set(fmt.Sprintf("videoID[%d] 刪除影片物件失敗 : %v", id, err))
	}
	if err := s.VideoRepo.Delete(id); err != nil {
		return errprocess.Set(fmt.Sprintf("videoID[%d] 刪除影片記錄失敗 : %v", id, err))
	}

	// videos:* 列表快取不主動失效，靠 TTL 過期
	if err := s.VideoCache.Del(ctx, fmt.Sprintf("video:%d", id)); err != nil {
		logger.Log.Warn(fmt.Sprintf("清除影片快取失敗: %v", err))
	}
	return nil
}

// DownloadURL 以檔名簽發短效下載連結；目錄影片都存在 videos/ 前綴下，
// 轉碼輸出檔的連結由 Finished 事件攜帶，不走這條路
func (s *catalogUseCase) DownloadURL(ctx context.Context, filename string) (string, error) {
	url, err := s.MinioClient.PresignGetURL(ctx, videoPrefix+filename, s.PresignExpiry)
	if err != nil {
		return "", errprocess.Set(fmt.Sprintf("filename[%s] 生成下載連結失敗 : %v", filename, err))
	}
	return url, nil
}

// videoInfo 組出對外的影片資訊，縮圖與影片都帶簽名連結
func (s *catalogUseCase) videoInfo(ctx context.Context, v domain.Video) (domain.VideoInfo, error) {
	url, err := s.MinioClient.PresignGetURL(ctx, videoPrefix+v.Filename, s.PresignExpiry)
	if err != nil {
		return domain.VideoInfo{}, errprocess.Set(fmt.Sprintf("videoID[%d] 生成影片連結失敗 : %v", v.ID, err))
	}

	var thumbnailURL string
	if v.Thumbnail != "" {
		thumbnailURL, err = s.MinioClient.PresignGetURL(ctx, thumbnailPrefix+v.Thumbnail, s.PresignExpiry)
		if err != nil {
			return domain.VideoInfo{}, errprocess.Set(fmt.Sprintf("videoID[%d] 生成縮圖連結失敗 : %v", v.ID, err))
		}
	}

	return domain.VideoInfo{
		ID:          v.ID,
		Title:       v.Title,
		Filename:    v.Filename,
		Description: v.Description,
		Username:    v.Username,
		Thumbnail:   thumbnailURL,
		URL:         url,
	}, nil
}
