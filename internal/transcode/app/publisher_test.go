package app

import (
	"context"
	"testing"

	"video_editing_platform/internal/transcode/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockKafkaWriter struct {
	mock.Mock
	written []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	m.written = append(m.written, msgs...)
	return args.Error(0)
}

func TestPublishPending(t *testing.T) {
	writer := new(mockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

	pub := NewProgressPublisher(writer)
	assert.NoError(t, pub.PublishPending(context.Background(), "sock-1", 42.5))

	assert.Len(t, writer.written, 1)
	msg := writer.written[0]
	// key = socketId，同一條連線的事件保持順序
	assert.Equal(t, []byte("sock-1"), msg.Key)

	ev, _, err := domain.OpenEnvelope(msg.Value)
	assert.NoError(t, err)
	assert.Equal(t, "sock-1", ev.SocketID)
	assert.Equal(t, 42.5, ev.Percent)
	assert.Equal(t, domain.StatusPending, ev.Status)
	assert.Empty(t, ev.PresignedURL)
}

func TestPublishFinished(t *testing.T) {
	writer := new(mockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

	pub := NewProgressPublisher(writer)
	assert.NoError(t, pub.PublishFinished(context.Background(), "sock-1", "out.mp4", "http://minio/out.mp4?sig=x"))

	assert.Len(t, writer.written, 1)
	ev, _, err := domain.OpenEnvelope(writer.written[0].Value)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, ev.Status)
	assert.Equal(t, 100.0, ev.Percent)
	assert.Equal(t, "out.mp4", ev.Key)
	assert.Equal(t, "http://minio/out.mp4?sig=x", ev.PresignedURL)
}
