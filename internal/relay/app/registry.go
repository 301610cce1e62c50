package app

import (
	"fmt"
	"sync"

	"video_editing_platform/pkg/logger"
)

// clientBuffer 每條連線的事件緩衝量，寫滿直接丟棄而不是阻塞
const clientBuffer = 16

// ClientRegistry 持有 socketId → 連線 channel 的對應，
// 同一個 id 同時只有一條連線，後到的連線覆蓋先前的
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
}

// NewClientRegistry create ClientRegistry
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]chan []byte),
	}
}

// Subscribe 註冊一條連線，回傳接收事件的 channel；
// 若同 id 已有連線，舊的 channel 會被關閉（舊連線隨之結束）
func (r *ClientRegistry) Subscribe(id string) <-chan []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.clients[id]; ok {
		close(old)
	}

	ch := make(chan []byte, clientBuffer)
	r.clients[id] = ch
	return ch
}

// Unsubscribe 移除連線並釋放 slot，重複呼叫無害
// ch 用來確認呼叫者仍持有目前的 slot，避免誤關覆蓋後的新連線
func (r *ClientRegistry) Unsubscribe(id string, ch <-chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[id]
	if !ok || (<-chan []byte)(current) != ch {
		return
	}
	close(current)
	delete(r.clients, id)
}

// Dispatch 將事件內容送給指定連線；連線不存在或緩衝已滿都直接丟棄，
// 絕不阻塞呼叫端（polling loop 不能被慢 client 拖住）。
// 整段持有讀鎖：close 只會發生在寫鎖之下，送出期間 channel 不可能被關閉
func (r *ClientRegistry) Dispatch(id string, payload []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.clients[id]
	if !ok {
		logger.Log.Info(fmt.Sprintf("client[%s] 不在線上，事件丟棄", id))
		return false
	}

	select {
	case ch <- payload:
		return true
	default:
		logger.Log.Warn(fmt.Sprintf("client[%s] 緩衝已滿，事件丟棄", id))
		return false
	}
}

// Count 目前持有的連線數
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
