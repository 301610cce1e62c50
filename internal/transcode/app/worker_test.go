package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// === 以下為假的 mock，用來隔離 MinIO / Kafka / ffmpeg ===
type mockMinIO struct {
	mock.Mock
}

func (m *mockMinIO) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	args := m.Called(ctx, objectName, filePath, contentType)
	return args.Error(0)
}
func (m *mockMinIO) DownloadFile(ctx context.Context, objectName, destPath string) error {
	args := m.Called(ctx, objectName, destPath)
	return args.Error(0)
}
func (m *mockMinIO) RemoveObject(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}
func (m *mockMinIO) PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}
func (m *mockMinIO) PresignPutURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPending(ctx context.Context, socketID string, percent float64) error {
	args := m.Called(ctx, socketID, percent)
	return args.Error(0)
}
func (m *mockPublisher) PublishFinished(ctx context.Context, socketID, key, presignedURL string) error {
	args := m.Called(ctx, socketID, key, presignedURL)
	return args.Error(0)
}

type mockEncoder struct {
	mock.Mock
	// progressValues 在 Transcode 期間依序回報的百分比
	progressValues []float64
}

func (m *mockEncoder) Transcode(ctx context.Context, spec EncodeSpec, onProgress func(percent float64)) error {
	args := m.Called(ctx, spec)
	for _, p := range m.progressValues {
		onProgress(p)
	}
	return args.Error(0)
}

func newTestWorker(minIO *mockMinIO, pub *mockPublisher, enc *mockEncoder, tempDir string) *Worker {
	return NewWorker(nil, minIO, pub, enc, domain.QueueName, tempDir, time.Millisecond)
}

func TestProcessJobSuccess(t *testing.T) {
	logger.SetNewNop()

	job := domain.TranscodeJob{
		ID:        "task-1",
		SocketID:  "sock-1",
		InputKey:  "in.mp4",
		OutputKey: "out.mp4",
		Codec:     "libx264",
		VideoFilters: []string{
			"scale=1280:720",
		},
	}

	minIO := new(mockMinIO)
	pub := new(mockPublisher)
	// 50 之後回報 40，單調不減的保證要把它濾掉
	enc := &mockEncoder{progressValues: []float64{10, 50, 40, 100}}

	minIO.On("DownloadFile", mock.Anything, "in.mp4", mock.Anything).Return(nil)
	minIO.On("UploadFile", mock.Anything, "out.mp4", mock.Anything, "video/mp4").Return(nil)
	minIO.On("PresignGetURL", mock.Anything, "out.mp4", time.Hour).Return("http://minio/out.mp4?sig=x", nil)

	enc.On("Transcode", mock.Anything, mock.MatchedBy(func(spec EncodeSpec) bool {
		return spec.Codec == "libx264" && len(spec.VideoFilters) == 1
	})).Return(nil)

	pub.On("PublishPending", mock.Anything, "sock-1", 10.0).Return(nil).Once()
	pub.On("PublishPending", mock.Anything, "sock-1", 50.0).Return(nil).Once()
	pub.On("PublishPending", mock.Anything, "sock-1", 100.0).Return(nil).Once()
	pub.On("PublishFinished", mock.Anything, "sock-1", "out.mp4", "http://minio/out.mp4?sig=x").Return(nil).Once()

	tempDir := t.TempDir()
	w := newTestWorker(minIO, pub, enc, tempDir)

	err := w.ProcessJob(context.Background(), job)
	assert.NoError(t, err)

	// 回退的 40 不發布，Finished 只發一次
	pub.AssertNumberOfCalls(t, "PublishPending", 3)
	pub.AssertNumberOfCalls(t, "PublishFinished", 1)
	minIO.AssertExpectations(t)
	pub.AssertExpectations(t)

	// 暫存目錄已清空
	entries, err := os.ReadDir(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessJobEncoderFailure(t *testing.T) {
	logger.SetNewNop()

	job := domain.TranscodeJob{ID: "task-2", SocketID: "sock-2", InputKey: "in.mp4", OutputKey: "out.mp4"}

	minIO := new(mockMinIO)
	pub := new(mockPublisher)
	enc := new(mockEncoder)

	minIO.On("DownloadFile", mock.Anything, "in.mp4", mock.Anything).Return(nil)
	enc.On("Transcode", mock.Anything, mock.Anything).Return(errors.New("encode failed"))

	tempDir := t.TempDir()
	w := newTestWorker(minIO, pub, enc, tempDir)

	err := w.ProcessJob(context.Background(), job)
	assert.Error(t, err)

	// 編碼失敗不上傳也不發 Finished
	minIO.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishFinished", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// 失敗也要清掉暫存檔
	entries, err := os.ReadDir(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessJobMissingInput(t *testing.T) {
	logger.SetNewNop()

	job := domain.TranscodeJob{ID: "task-3", SocketID: "sock-3", InputKey: "missing.mp4", OutputKey: "out.mp4"}

	minIO := new(mockMinIO)
	pub := new(mockPublisher)
	enc := new(mockEncoder)

	minIO.On("DownloadFile", mock.Anything, "missing.mp4", mock.Anything).Return(errors.New("object not found"))

	w := newTestWorker(minIO, pub, enc, t.TempDir())

	err := w.ProcessJob(context.Background(), job)
	assert.Error(t, err)

	// 下載失敗完全不產生事件，也不會執行編碼
	enc.AssertNotCalled(t, "Transcode", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishPending", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishFinished", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContentTypeByKey(t *testing.T) {
	assert.Equal(t, "video/mp4", contentTypeByKey("abc-123.mp4"))
	assert.Equal(t, "video/webm", contentTypeByKey("abc.webm"))
	assert.Equal(t, "application/octet-stream", contentTypeByKey("noext"))
}
