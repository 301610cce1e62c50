package app

import (
	"encoding/json"
	"fmt"
	"time"

	transcode "video_editing_platform/internal/transcode/domain"
	"video_editing_platform/pkg/database"
	errprocess "video_editing_platform/pkg/err"
	"video_editing_platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// SubmitUseCase 這裡封裝轉碼任務的提交，只做驗證與入列，不做任何轉碼
type SubmitUseCase interface {
	SubmitJob(inputKey, socketID string, opts transcode.ProcessOptions) (string, error)
}

type submitUseCase struct {
	RabbitRepo database.RabbitRepo
	QueueName  string
}

// NewSubmitUseCase create a new SubmitUseCase
func NewSubmitUseCase(rabbit database.RabbitRepo) SubmitUseCase {
	return &submitUseCase{
		RabbitRepo: rabbit,
		QueueName:  transcode.QueueName,
	}
}

// SubmitJob 驗證選項後組出 TranscodeJob 入列，立即回傳 taskID。
// outputKey 在這裡生成一次，之後不再變動，重送只會覆寫同一個 object
func (s *submitUseCase) SubmitJob(inputKey, socketID string, opts transcode.ProcessOptions) (string, error) {
	if inputKey == "" {
		return "", errprocess.Set("inputKey required")
	}
	if socketID == "" {
		return "", errprocess.Set("socketId required")
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	stamp := time.Now().UnixMilli()
	taskID := fmt.Sprintf("%s-%d", uuid.NewString(), stamp)
	outputKey := fmt.Sprintf("%s-%d.%s", uuid.NewString(), stamp, opts.Format)

	job := transcode.TranscodeJob{
		InputKey:     inputKey,
		OutputKey:    outputKey,
		Codec:        opts.Codec,
		VideoFilters: opts.VideoFilters(),
		ID:           taskID,
		SocketID:     socketID,
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", errprocess.Set(fmt.Sprintf("taskID[%s] 序列化任務失敗 : %v", taskID, err))
	}

	if err := s.RabbitRepo.Publish("", s.QueueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		return "", errprocess.Set(fmt.Sprintf("taskID[%s] 任務入列失敗 : %v", taskID, err))
	}

	logger.Log.Info(fmt.Sprintf("taskID[%s] 轉碼任務已入列 input[%s] output[%s]", taskID, inputKey, outputKey))
	return taskID, nil
}
