package app

import (
	"context"
	"fmt"

	"video_editing_platform/internal/transcode/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter 對 kafka.Writer 的抽象，方便測試替換
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ProgressPublisher 發布進度事件到 progress topic
type ProgressPublisher interface {
	PublishPending(ctx context.Context, socketID string, percent float64) error
	PublishFinished(ctx context.Context, socketID, key, presignedURL string) error
}

type kafkaProgressPublisher struct {
	writer KafkaWriter
}

// NewProgressPublisher create kafka ProgressPublisher
func NewProgressPublisher(writer KafkaWriter) ProgressPublisher {
	return &kafkaProgressPublisher{writer: writer}
}

// PublishPending 發布進行中事件
func (p *kafkaProgressPublisher) PublishPending(ctx context.Context, socketID string, percent float64) error {
	return p.publish(ctx, domain.ProgressEvent{
		SocketID: socketID,
		Percent:  percent,
		Status:   domain.StatusPending,
	})
}

// PublishFinished 發布完成事件，percent 固定 100 並攜帶下載連結
func (p *kafkaProgressPublisher) PublishFinished(ctx context.Context, socketID, key, presignedURL string) error {
	return p.publish(ctx, domain.ProgressEvent{
		SocketID:     socketID,
		Percent:      100,
		Status:       domain.StatusFinished,
		PresignedURL: presignedURL,
		Key:          key,
	})
}

func (p *kafkaProgressPublisher) publish(ctx context.Context, ev domain.ProgressEvent) error {
	// 雙層信封：外層 Message 欄位包住事件 JSON 字串
	value, err := domain.WrapEvent(ev)
	if err != nil {
		return fmt.Errorf("進度事件序列化失敗: %w", err)
	}

	// 以 socketId 作為 key，同一個連線的事件落在同一個 partition 保持順序
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.SocketID),
		Value: value,
	})
}
