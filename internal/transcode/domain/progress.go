package domain

import "encoding/json"

// ProgressStatus definition progress event status
type ProgressStatus string

const (
	// StatusPending 轉碼進行中
	StatusPending ProgressStatus = "Pending"
	// StatusFinished 轉碼完成（終態），一個 job 至多發出一次
	StatusFinished ProgressStatus = "Finished"
)

// ProgressEvent 由 worker 發布、relay 轉送給 client 的進度事件
type ProgressEvent struct {
	SocketID string         `json:"socketId"`
	Percent  float64        `json:"percent"`
	Status   ProgressStatus `json:"status"`
	// PresignedURL 只在 Finished 事件攜帶，簽發時間晚於上傳完成
	PresignedURL string `json:"presignedUrl,omitempty"`
	// Key 只在 Finished 事件攜帶，輸出檔的 object key
	Key string `json:"key,omitempty"`
}

// ProgressEnvelope 外層傳輸信封，Message 內容為事件本身的 JSON 字串
type ProgressEnvelope struct {
	Message string `json:"Message"`
}

// WrapEvent 將事件序列化並包進外層信封
func WrapEvent(ev ProgressEvent) ([]byte, error) {
	inner, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ProgressEnvelope{Message: string(inner)})
}

// OpenEnvelope 解析外層信封並還原內層事件，同時回傳內層原始 JSON
func OpenEnvelope(data []byte) (ProgressEvent, []byte, error) {
	var envelope ProgressEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ProgressEvent{}, nil, err
	}
	var ev ProgressEvent
	if err := json.Unmarshal([]byte(envelope.Message), &ev); err != nil {
		return ProgressEvent{}, nil, err
	}
	return ev, []byte(envelope.Message), nil
}
