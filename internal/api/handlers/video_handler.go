package handlers

import (
	"errors"
	"strconv"

	catalog "video_editing_platform/internal/catalog/app"
	"video_editing_platform/internal/catalog/domain"
	transcode "video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/middlewares"
	"video_editing_platform/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// VideoHandler 处理影片目錄與轉碼提交的 HTTP 请求
type VideoHandler struct {
	Catalog catalog.CatalogUseCase
	Submit  catalog.SubmitUseCase
}

// NewVideoHandler 创建新的 VideoHandler
func NewVideoHandler(c catalog.CatalogUseCase, s catalog.SubmitUseCase) *VideoHandler {
	return &VideoHandler{
		Catalog: c,
		Submit:  s,
	}
}

// localUsername 取出 middleware 放進 locals 的使用者名稱
func localUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(middlewares.TokenUsername).(string)
	return username
}

// localIsAdmin 取出 middleware 放進 locals 的角色並判斷是否為 admin
func localIsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(middlewares.TokenRole).(string)
	return token.RoleType(role) == token.RoleAdmin
}

// statusFromErr 將 usecase 的 sentinel error 轉成 HTTP 狀態碼
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrVideoNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrFilenameMismatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RequestUpload 申請上傳影片
// @Summary 申請上傳影片
// @Description 回傳 presigned URL，client 拿著連結直接上傳到 Media Store
// @Tags Videos
// @Accept json
// @Produce json
// @Param request body domain.UploadVideoReq true "上傳請求"
// @Success 200 {object} domain.UploadVideoRes "申請成功"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /upload [post]
func (h *VideoHandler) RequestUpload(c *fiber.Ctx) error {
	var req domain.UploadVideoReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	res, err := h.Catalog.RequestUpload(c.Context(), req, localUsername(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// ListVideos 公開影片列表
// @Summary 公開影片列表
// @Description 分頁查詢影片，支援標題搜尋與排除特定 id
// @Tags Videos
// @Produce json
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Param query query string false "標題模糊搜尋"
// @Param exclude query int false "排除的影片 id"
// @Param sortBy query string false "title / uploadDate / editDate"
// @Success 200 {object} domain.ListVideosRes "查詢成功"
// @Failure 500 {object} string "服务器错误"
// @Router /videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	q := h.parseListQuery(c)

	res, err := h.Catalog.ListVideos(c.Context(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// ListUserVideos 登入者自己的影片列表
// @Summary 使用者影片列表
// @Description 列出 token 使用者自己的影片
// @Tags Videos
// @Produce json
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Success 200 {object} domain.ListVideosRes "查詢成功"
// @Failure 401 {object} string "未授權"
// @Router /uservideos [get]
func (h *VideoHandler) ListUserVideos(c *fiber.Ctx) error {
	q := h.parseListQuery(c)
	q.Username = localUsername(c)

	res, err := h.Catalog.ListVideos(c.Context(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// ListVideosByUser 指定使用者的影片列表，僅 admin 可查別人
// @Summary 指定使用者影片列表
// @Description admin 查詢任一使用者的影片
// @Tags Videos
// @Produce json
// @Param username path string true "使用者名稱"
// @Success 200 {object} domain.ListVideosRes "查詢成功"
// @Failure 403 {object} string "權限不足"
// @Router /uservideos/{username} [get]
func (h *VideoHandler) ListVideosByUser(c *fiber.Ctx) error {
	target := c.Params("username")
	if target != localUsername(c) && !localIsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
	}

	q := h.parseListQuery(c)
	q.Username = target

	res, err := h.Catalog.ListVideos(c.Context(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// GetVideo 取單一影片資訊
// @Summary 取單一影片
// @Description 回傳影片資訊與短效播放連結
// @Tags Videos
// @Produce json
// @Param id path int true "影片 id"
// @Success 200 {object} domain.VideoInfo "查詢成功"
// @Failure 404 {object} string "找不到影片"
// @Router /video/{id} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid video id"})
	}

	info, err := h.Catalog.GetVideo(c.Context(), uint(id))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(info)
}

// UpdateVideo 更新影片資訊
// @Summary 更新影片
// @Description 更新 metadata 並以新檔取代舊檔，僅擁有者可操作
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path int true "影片 id"
// @Param request body domain.UpdateVideoReq true "更新請求"
// @Success 200 {object} string "更新成功"
// @Failure 403 {object} string "權限不足"
// @Failure 404 {object} string "找不到影片"
// @Router /update/{id} [put]
func (h *VideoHandler) UpdateVideo(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid video id"})
	}

	var req domain.UpdateVideoReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.Catalog.UpdateVideo(c.Context(), uint(id), req, localUsername(c)); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "update success"})
}

// DeleteVideo 刪除影片
// @Summary 刪除影片
// @Description admin 且為擁有者才可刪除，需帶檔名再確認
// @Tags Videos
// @Produce json
// @Param id path int true "影片 id"
// @Param filename query string true "影片檔名"
// @Success 200 {object} string "刪除成功"
// @Failure 403 {object} string "權限不足"
// @Failure 404 {object} string "找不到影片"
// @Router /delete/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid video id"})
	}
	filename := c.Query("filename")
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "filename required"})
	}

	if err := h.Catalog.DeleteVideo(c.Context(), uint(id), filename, localUsername(c), localIsAdmin(c)); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "delete success"})
}

// Download 取得下載連結
// @Summary 取得下載連結
// @Description 以檔名簽發短效下載連結並轉址
// @Tags Videos
// @Produce json
// @Param filename path string true "影片檔名"
// @Success 302 {object} string "轉址到下載連結"
// @Failure 500 {object} string "服务器错误"
// @Router /download/{filename} [get]
func (h *VideoHandler) Download(c *fiber.Ctx) error {
	filename := c.Params("filename")
	url, err := h.Catalog.DownloadURL(c.Context(), filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Redirect(url, fiber.StatusFound)
}

// processRequest /process 的請求格式，inputKey 指向已上傳的原始檔
type processRequest struct {
	InputKey string                   `json:"inputKey"`
	SocketID string                   `json:"socketId"`
	Options  transcode.ProcessOptions `json:"options"`
}

// Process 提交轉碼任務
// @Summary 提交轉碼任務
// @Description 驗證選項後將任務入列，立即回傳 taskId，進度經由 progress relay 推送
// @Tags Transcode
// @Accept json
// @Produce json
// @Param request body processRequest true "轉碼請求"
// @Success 202 {object} string "任務已入列"
// @Failure 400 {object} string "选项错误"
// @Failure 500 {object} string "服务器错误"
// @Router /process [post]
func (h *VideoHandler) Process(c *fiber.Ctx) error {
	var req processRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	// 選項錯誤在邊界擋下，不合法的組合不會流進 pipeline
	if req.InputKey == "" || req.SocketID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "inputKey and socketId required"})
	}
	if err := req.Options.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	taskID, err := h.Submit.SubmitJob(req.InputKey, req.SocketID, req.Options)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"taskId": taskID})
}

// parseListQuery 解析分頁查詢參數
func (h *VideoHandler) parseListQuery(c *fiber.Ctx) domain.ListVideosQuery {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "6"))
	exclude, _ := strconv.Atoi(c.Query("exclude", "0"))

	return domain.ListVideosQuery{
		Page:    page,
		Limit:   limit,
		Query:   c.Query("query"),
		Exclude: uint(exclude),
		SortBy:  c.Query("sortBy"),
	}
}
