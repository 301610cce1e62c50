package router

import (
	"video_editing_platform/internal/api/handlers"
	"video_editing_platform/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes 注册影片相关的路由
func RegisterRoutes(app *fiber.App, videoHandler *handlers.VideoHandler) {
	app.Get("/swagger/*", swagger.HandlerDefault)

	// 公開路由
	app.Get("/videos", videoHandler.ListVideos)
	app.Get("/video/:id", videoHandler.GetVideo)
	app.Get("/download/:filename", videoHandler.Download)

	// 需要 token 的路由
	auth := app.Group("/", middlewares.JWTMiddleware())
	auth.Post("/upload", videoHandler.RequestUpload)
	auth.Get("/uservideos", videoHandler.ListUserVideos)
	auth.Get("/uservideos/:username", videoHandler.ListVideosByUser)
	auth.Post("/process", videoHandler.Process)
	auth.Put("/update/:id", videoHandler.UpdateVideo)
	auth.Delete("/delete/:id", videoHandler.DeleteVideo)
}
