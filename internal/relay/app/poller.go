package app

import (
	"context"
	"errors"
	"io"
	"time"

	"video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaReader 對 kafka.Reader 的抽象，方便測試替換
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Poller 持續拉取進度事件並分派給對應的連線
type Poller struct {
	reader   KafkaReader
	registry *ClientRegistry
	// backoff 拉取失敗後的固定退避
	backoff time.Duration
}

// NewPoller create Poller
func NewPoller(reader KafkaReader, registry *ClientRegistry, backoff time.Duration) *Poller {
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Poller{
		reader:   reader,
		registry: registry,
		backoff:  backoff,
	}
}

// Run 進度事件消費迴圈，只會因 ctx 取消而結束。
// 投遞是 best-effort：送出或丟棄之後都 commit，relay 本身不重試，
// 只有 commit 失敗時由佇列自己的重送機制補位
func (p *Poller) Run(ctx context.Context) {
	logger.Log.Info("Progress poller 已啟動，等待進度訊息...")

	for {
		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				logger.Log.Info("Progress poller 收到停止訊號")
				return
			}
			logger.Log.Errorf("拉取進度訊息失敗:", err)
			select {
			case <-time.After(p.backoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		p.handleMessage(ctx, msg)
	}
}

// handleMessage 解析信封、分派事件、commit offset
func (p *Poller) handleMessage(ctx context.Context, msg kafka.Message) {
	ev, inner, err := domain.OpenEnvelope(msg.Value)
	if err != nil {
		// 看不懂的訊息照樣 commit，不讓壞訊息卡住整個 topic
		logger.Log.Errorf("解析進度事件失敗:", err)
	} else {
		// 內層事件 JSON 原樣轉送，不在 relay 重新序列化
		p.registry.Dispatch(ev.SocketID, inner)
	}

	if err := p.reader.CommitMessages(ctx, msg); err != nil {
		logger.Log.Errorf("Commit 進度訊息失敗:", err)
	}
}
