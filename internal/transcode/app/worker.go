package app

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/database"
	"video_editing_platform/pkg/logger"

	"github.com/streadway/amqp"
)

const presignExpiry = time.Hour

// Worker 定義轉碼消費者，將所有必要的依賴注入進來
// 單一 Worker 一次只處理一個 job，水平擴展靠多個 instance，
// prefetch(1) + 手動 ack 讓佇列對 in-flight 訊息提供軟性互斥
type Worker struct {
	rabbitChannel *amqp.Channel
	minioClient   database.MinIOClientRepo
	publisher     ProgressPublisher
	encoder       Encoder
	queueName     string
	tempDir       string
	// pollBackoff 消費迴圈出錯後的固定退避
	pollBackoff time.Duration
}

// NewWorker 建構 Worker 實例
func NewWorker(
	rabbitChannel *amqp.Channel,
	minioClient database.MinIOClientRepo,
	publisher ProgressPublisher,
	encoder Encoder,
	queueName, tempDir string,
	pollBackoff time.Duration,
) *Worker {
	if pollBackoff <= 0 {
		pollBackoff = time.Second
	}
	return &Worker{
		rabbitChannel: rabbitChannel,
		minioClient:   minioClient,
		publisher:     publisher,
		encoder:       encoder,
		queueName:     queueName,
		tempDir:       tempDir,
		pollBackoff:   pollBackoff,
	}
}

// StartConsumer 開始消費訊息，並處理轉碼工作；只會因 ctx 取消而結束
func (w *Worker) StartConsumer(ctx context.Context) {
	// 一次只拉一個訊息，處理完才拿下一個
	if err := w.rabbitChannel.Qos(1, 0, false); err != nil {
		logger.Log.Errorf("設定 Qos 失敗:", err)
	}

	msgs, err := w.rabbitChannel.Consume(
		w.queueName, // queue name
		"",          // consumer tag，留空由系統分配
		false,       // autoAck 為 false，使用手動確認
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // arguments
	)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("無法開始消費 RabbitMQ 訊息: %v", err))
	}

	logger.Log.Info("Worker 已啟動，等待轉碼工作訊息...")

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Warn("RabbitMQ 消費 channel 已關閉")
				return
			}
			w.handleDelivery(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("Worker 收到停止訊號")
			return
		}
	}
}

// handleDelivery 處理單一訊息；job 層級的錯誤在這裡收斂，不讓它打死消費迴圈
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var job domain.TranscodeJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Log.Errorf("解析轉碼工作訊息失敗:", err)
		// 格式錯誤的訊息重送也不會成功，不重新排入佇列
		if err := d.Nack(false, false); err != nil {
			logger.Log.Errorf("Nack 訊息失敗:", err)
		}
		return
	}

	logger.Log.Info(fmt.Sprintf("收到轉碼工作訊息: ID=%s, InputKey=%s, OutputKey=%s", job.ID, job.InputKey, job.OutputKey))

	if err := w.ProcessJob(ctx, job); err != nil {
		// 編碼失敗與 I/O 失敗都屬於已處理的失敗：暫存檔已清理、
		// 不會發出 Finished 事件。訊息仍然要刪除，
		// 重送只保留給 worker crash 的情境
		logger.Log.Errorf(fmt.Sprintf("轉碼工作失敗 ID=%s:", job.ID), err)
		time.Sleep(w.pollBackoff)
	}

	if err := d.Ack(false); err != nil {
		logger.Log.Errorf("確認訊息失敗:", err)
	} else {
		logger.Log.Info(fmt.Sprintf("訊息處理完成並確認, ID: %s", job.ID))
	}
}

// ProcessJob 負責執行轉碼工作：
// 1. 從 MinIO 下載原始影片檔到私有暫存目錄（串流寫入）
// 2. 執行 ffmpeg，codec 與 filter 鏈合併為單一 -vf 表達式
// 3. 進度 callback 發布 Pending 事件（percent 保證單調不減）
// 4. 成功時上傳輸出檔、簽發下載連結、發布一次 Finished 事件
// 5. 清理暫存檔案
func (w *Worker) ProcessJob(ctx context.Context, job domain.TranscodeJob) error {
	// 暫存目錄 per job 私有，不與其他 job 共用
	workDir, err := os.MkdirTemp(w.tempDir, "transcode_")
	if err != nil {
		return fmt.Errorf("建立暫存目錄失敗: %w", err)
	}
	defer func() {
		// 成功或失敗都清掉暫存檔
		if err := os.RemoveAll(workDir); err != nil {
			logger.Log.Warn(fmt.Sprintf("清理暫存目錄失敗: %v", err))
		}
	}()

	inputPath := filepath.Join(workDir, filepath.Base(job.InputKey))
	outputPath := filepath.Join(workDir, filepath.Base(job.OutputKey))

	// 下載失敗（包含 input key 不存在）不發任何事件，
	// 呼叫端仍會 ack，避免永久缺檔的訊息無限重送
	if err := w.minioClient.DownloadFile(ctx, job.InputKey, inputPath); err != nil {
		return fmt.Errorf("下載原始影片失敗: %w", err)
	}

	spec := EncodeSpec{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Codec:        job.Codec,
		VideoFilters: job.VideoFilters,
	}

	// percent 單調不減在這裡保證，encoder 偶發的回退值直接略過
	lastPercent := -1.0
	onProgress := func(percent float64) {
		if percent <= lastPercent {
			return
		}
		lastPercent = percent
		if err := w.publisher.PublishPending(ctx, job.SocketID, percent); err != nil {
			logger.Log.Errorf("發布進度事件失敗:", err)
		}
	}

	// 編碼失敗：不發 Finished，client 端的訂閱會就此安靜
	if err := w.encoder.Transcode(ctx, spec, onProgress); err != nil {
		return fmt.Errorf("編碼失敗: %w", err)
	}

	contentType := contentTypeByKey(job.OutputKey)
	if err := w.minioClient.UploadFile(ctx, job.OutputKey, outputPath, contentType); err != nil {
		return fmt.Errorf("上傳轉碼結果失敗: %w", err)
	}

	// 簽發時間一定晚於上傳完成，client 拿到的 URL 立即可用
	presignedURL, err := w.minioClient.PresignGetURL(ctx, job.OutputKey, presignExpiry)
	if err != nil {
		return fmt.Errorf("生成下載連結失敗: %w", err)
	}

	if err := w.publisher.PublishFinished(ctx, job.SocketID, job.OutputKey, presignedURL); err != nil {
		return fmt.Errorf("發布完成事件失敗: %w", err)
	}

	logger.Log.Info(fmt.Sprintf("轉碼完成, ID: %s, OutputKey: %s", job.ID, job.OutputKey))
	return nil
}

// contentTypeByKey 由輸出 key 的副檔名決定 content type
func contentTypeByKey(key string) string {
	ext := filepath.Ext(key)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
