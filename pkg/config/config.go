package config

import "time"

// APIGateway definition api_gateway YAML structure
type APIGateway struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
	RabbitMQ   RabbitMQConfig `mapstructure:"rabbitmq"`

	// PresignExpiry 上傳與下載 presigned URL 的有效時間
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	// CacheTTL 讀取端點快取時間
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// TranscodeWorker definition transcode_worker YAML structure
type TranscodeWorker struct {
	MinIO    MinIOConfig    `mapstructure:"minio"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	FFmpeg   FFmpegConfig   `mapstructure:"ffmpeg"`

	// PollBackoff 消費迴圈發生錯誤後的固定退避時間
	PollBackoff time.Duration `mapstructure:"poll_backoff"`
}

// ProgressRelay definition progress_relay YAML structure
type ProgressRelay struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	Kafka KafkaConfig `mapstructure:"kafka"`

	// PollBackoff 拉取進度訊息失敗後的退避時間
	PollBackoff time.Duration `mapstructure:"poll_backoff"`
}

// FFmpegConfig definition encoder binary setting
type FFmpegConfig struct {
	BinPath   string `mapstructure:"bin_path"`
	ProbePath string `mapstructure:"probe_path"`
	TempDir   string `mapstructure:"temp_dir"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP       string `mapstructure:"ip"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`

	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`

	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
