package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_editing_platform/internal/relay/app"
	"video_editing_platform/pkg/config"
	"video_editing_platform/pkg/database"
	"video_editing_platform/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

// readerMaxWait 拉取訊息的最長等待時間，到期回傳讓迴圈檢查 ctx
const readerMaxWait = 20 * time.Second

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ProgressRelay, config.EnvConfig.ProgressRelayLogPath)
	cfg := config.LoadConfig[config.ProgressRelay](config.EnvConfig.ProgressRelay, config.EnvConfig.ProgressRelayYAMLPath)

	// 1. 建立 Kafka Reader 使用重試機制
	kafkaReader, err := database.NewKafkaReaderWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		GroupID:       cfg.Kafka.GroupID,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: cfg.Kafka.RetryInterval,
	}, readerMaxWait, 100)
	if err != nil {
		log.Fatalf("Kafka Reader 建立失敗: %v", err)
	}
	defer kafkaReader.Close()

	// 2. 啟動 Poller，把進度訊息派發給訂閱的 SSE 連線
	registry := app.NewClientRegistry()
	poller := app.NewPoller(kafkaReader, registry, cfg.PollBackoff)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go poller.Run(ctx)

	// 3. 建立 Fiber 应用
	r := fiber.New()
	// 添加日志中间件
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ProgressRelayLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// 注册路由
	app.RegisterRoutes(r, app.NewSSEHandler(registry))

	// 启动服务器
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
