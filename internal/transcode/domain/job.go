package domain

const (
	// QueueName definition transcode job queue name
	QueueName = "transcode"

	// ProgressTopic definition progress event topic name
	ProgressTopic = "transcode-progress"
)

// TranscodeJob 定義轉碼工作訊息
// 一旦入列即視為不可變，重送時 worker 會以同一個 OutputKey 重新處理，
// 重複上傳收斂到同一個 object（last-writer-wins）
type TranscodeJob struct {
	// InputKey 原始檔在 MinIO 上的 object key
	InputKey string `json:"inputKey"`
	// OutputKey 轉碼結果的 object key，提交時生成一次，之後不再變動
	OutputKey string `json:"outputKey"`
	// Codec 輸出編碼器名稱，空字串表示沿用預設
	Codec string `json:"codec"`
	// VideoFilters 依序套用的 filter 表達式，例如 unsharp、scale
	VideoFilters []string `json:"videoFilters"`
	// ID 任務識別碼，用於關聯 job → progress → client
	ID string `json:"id"`
	// SocketID 發起請求的 client 連線識別碼
	SocketID string `json:"socketId"`
}
