package domain

import "time"

// Video 定義影片模型
type Video struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	// Filename 存於 MinIO 上的 object key（videos/ 前綴下）
	Filename string
	// Username 上傳者，來自身份供應商的 token claim
	Username string
	// Thumbnail 縮圖的 object key，可為空
	Thumbnail  string
	PlaylistID *uint
	Size       int64
	Format     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	Filename        string `json:"filename"`
	Format          string `json:"format"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	ThumbnailFormat string `json:"thumbnailFormat"`
	PlaylistID      *uint  `json:"playlist_id"`
	Size            int64  `json:"size"`
}

// UploadVideoRes usecase upload video response
// client 拿著 presigned URL 直接上傳到 Media Store，bytes 不經過 API。
// Filename 是 server 產生的 object name，client 後續提交轉碼（inputKey）
// 與更新、刪除（previousVideo / filename）都以它為準
type UploadVideoRes struct {
	PresignedURL          string `json:"presignedUrl"`
	ThumbnailPresignedURL string `json:"thumbnailPresignedUrl,omitempty"`
	Filename              string `json:"filename"`
	ThumbnailFilename     string `json:"thumbnailFilename,omitempty"`
}

// VideoInfo 對外回傳的影片資訊，URL 均為短效簽名連結
type VideoInfo struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	URL         string `json:"url"`
}

// ListVideosQuery 分頁查詢條件
type ListVideosQuery struct {
	Page  int
	Limit int
	// Query 標題模糊搜尋
	Query string
	// Exclude 排除特定影片 id（例如相關影片列表排除自己）
	Exclude uint
	// PlaylistID 篩選播放清單
	PlaylistID *uint
	// SortBy title / uploadDate / editDate
	SortBy string
	// Username 限定特定使用者的影片
	Username string
}

// ListVideosRes 分頁查詢結果
type ListVideosRes struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
	Result     []VideoInfo `json:"result"`
}

// UpdateVideoReq usecase update video request
type UpdateVideoReq struct {
	NewFilename      string `json:"newVideo"`
	PreviousFilename string `json:"previousVideo"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PlaylistID       *uint  `json:"playlist_id"`
}
