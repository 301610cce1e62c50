package app

import (
	"encoding/json"
	"strings"
	"testing"

	transcode "video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/logger"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRabbitRepo struct {
	mock.Mock
	published []amqp.Publishing
}

func (m *mockRabbitRepo) GetRabbit() *amqp.Channel {
	return nil
}

func (m *mockRabbitRepo) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	m.published = append(m.published, msg)
	return args.Error(0)
}

func TestSubmitJobPublishesToQueue(t *testing.T) {
	logger.SetNewNop()

	rabbit := new(mockRabbitRepo)
	rabbit.On("Publish", "", transcode.QueueName, false, false, mock.Anything).Return(nil)

	uc := NewSubmitUseCase(rabbit)
	opts := transcode.ProcessOptions{
		Format:         "mp4",
		Resolution:     "1280x720",
		SharpenEnabled: true,
		LumaSizeX:      7,
		LumaSizeY:      7,
		LumaAmount:     2.5,
		Codec:          "libx264",
	}

	taskID, err := uc.SubmitJob("uploads/in.mp4", "sock-1", opts)
	assert.NoError(t, err)
	assert.NotEmpty(t, taskID)
	// taskId 格式為 uuid-毫秒時間戳
	assert.Equal(t, 6, len(strings.Split(taskID, "-")), "uuid has 5 segments plus timestamp")

	assert.Len(t, rabbit.published, 1)
	pub := rabbit.published[0]
	assert.Equal(t, "application/json", pub.ContentType)

	var job transcode.TranscodeJob
	assert.NoError(t, json.Unmarshal(pub.Body, &job))
	assert.Equal(t, taskID, job.ID)
	assert.Equal(t, "uploads/in.mp4", job.InputKey)
	assert.Equal(t, "sock-1", job.SocketID)
	assert.Equal(t, "libx264", job.Codec)
	assert.True(t, strings.HasSuffix(job.OutputKey, ".mp4"))
	// 先銳化後縮放
	assert.Equal(t, []string{
		"unsharp=luma_msize_x=7:luma_msize_y=7:luma_amount=2.5",
		"scale=1280:720",
	}, job.VideoFilters)
}

func TestSubmitJobRejectsInvalidOptions(t *testing.T) {
	logger.SetNewNop()

	rabbit := new(mockRabbitRepo)
	uc := NewSubmitUseCase(rabbit)

	// format 缺漏
	_, err := uc.SubmitJob("uploads/in.mp4", "sock-1", transcode.ProcessOptions{})
	assert.Error(t, err)

	// inputKey / socketId 缺漏
	_, err = uc.SubmitJob("", "sock-1", transcode.ProcessOptions{Format: "mp4"})
	assert.Error(t, err)
	_, err = uc.SubmitJob("uploads/in.mp4", "", transcode.ProcessOptions{Format: "mp4"})
	assert.Error(t, err)

	// 不合法的請求完全不入列
	rabbit.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitJobGeneratesDistinctOutputKeys(t *testing.T) {
	logger.SetNewNop()

	rabbit := new(mockRabbitRepo)
	rabbit.On("Publish", "", transcode.QueueName, false, false, mock.Anything).Return(nil)

	uc := NewSubmitUseCase(rabbit)
	opts := transcode.ProcessOptions{Format: "mp4"}

	id1, err := uc.SubmitJob("uploads/in.mp4", "sock-1", opts)
	assert.NoError(t, err)
	id2, err := uc.SubmitJob("uploads/in.mp4", "sock-1", opts)
	assert.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	var job1, job2 transcode.TranscodeJob
	assert.NoError(t, json.Unmarshal(rabbit.published[0].Body, &job1))
	assert.NoError(t, json.Unmarshal(rabbit.published[1].Body, &job2))
	assert.NotEqual(t, job1.OutputKey, job2.OutputKey)
}
