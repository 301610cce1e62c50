package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriterWithRetry 嘗試建立 Kafka Writer 並發送測試訊息以確認連線
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var writer *kafka.Writer
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  k.Brokers,
			Topic:    k.Topic,
			Balancer: &kafka.LeastBytes{},
		})

		// 發送一個測試訊息（例如 "ping"），確認連線是否成功
		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			log.Printf("Kafka Writer 建立成功 (嘗試 %d 次)", attempt)
			return writer, nil
		}

		log.Printf("Kafka Writer 建立失敗 (嘗試 %d/%d): %v", attempt, k.RetryCount, err)
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("無法建立 Kafka Writer，經過 %d 次嘗試: %v", k.RetryCount, err)
}

// NewKafkaReaderWithRetry 先確認 broker 可連線後建立 Kafka Reader
// MaxWait 即長輪詢等待時間，QueueCapacity 限制單次預取的訊息數
func NewKafkaReaderWithRetry(k KafkaConnection, maxWait time.Duration, queueCapacity int) (*kafka.Reader, error) {
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		var conn *kafka.Conn
		conn, err = kafka.Dial("tcp", k.Brokers[0])
		if err == nil {
			conn.Close()
			log.Printf("Kafka Reader 建立成功 (嘗試 %d 次)", attempt)
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:       k.Brokers,
				GroupID:       k.GroupID,
				Topic:         k.Topic,
				MaxWait:       maxWait,
				QueueCapacity: queueCapacity,
				MinBytes:      1,
				MaxBytes:      10e6,
			}), nil
		}

		log.Printf("Kafka Reader 建立失敗 (嘗試 %d/%d): %v", attempt, k.RetryCount, err)
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("無法建立 Kafka Reader，經過 %d 次嘗試: %v", k.RetryCount, err)
}
