package app

import (
	"bufio"
	"fmt"
	"time"

	"video_editing_platform/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// heartbeatInterval SSE heartbeat 間隔，用於偵測斷線
const heartbeatInterval = 15 * time.Second

// SSEHandler 處理進度推播連線
type SSEHandler struct {
	registry *ClientRegistry
}

// NewSSEHandler create SSEHandler
func NewSSEHandler(registry *ClientRegistry) *SSEHandler {
	return &SSEHandler{registry: registry}
}

// Progress godoc
// @Summary Subscribe transcode progress
// @Description Opens a long-lived SSE stream delivering progress events for the given connection id
// @Tags Progress
// @Produce text/event-stream
// @Param id path string true "Connection id (socket id)"
// @Success 200 {string} string "event stream"
// @Router /progress/{id} [get]
func (h *SSEHandler) Progress(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "connection id required"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch := h.registry.Subscribe(id)
	logger.Log.Info(fmt.Sprintf("client[%s] 已訂閱進度推播", id))

	// StreamWriter 在 response goroutine 中執行，
	// 連線結束（client 斷線或被新連線覆蓋）時釋放 slot
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.registry.Unsubscribe(id, ch)
			logger.Log.Info(fmt.Sprintf("client[%s] 已離線", id))
		}()

		// 定期送 SSE comment 當作 heartbeat，
		// 讓 Flush 在 client 斷線後回傳錯誤，確保 slot 被釋放
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case payload, ok := <-ch:
				if !ok {
					// 被同 id 的新連線覆蓋
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				// 每個事件一個 frame，立即送出
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

// RegisterRoutes 註冊 relay 的路由
func RegisterRoutes(app *fiber.App, handler *SSEHandler) {
	app.Get("/progress/:id", handler.Progress)
}
