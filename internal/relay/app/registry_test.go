package app

import (
	"sync"
	"testing"

	"video_editing_platform/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeAndDispatch(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	ch := r.Subscribe("sock-1")
	assert.Equal(t, 1, r.Count())

	assert.True(t, r.Dispatch("sock-1", []byte(`{"percent":50}`)))
	assert.Equal(t, []byte(`{"percent":50}`), <-ch)
}

func TestDispatchAbsentClient(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	// 沒有訂閱者，事件直接丟棄且不阻塞
	assert.False(t, r.Dispatch("nobody", []byte("x")))
}

func TestDispatchFullBufferDoesNotBlock(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	r.Subscribe("sock-1")

	// 塞滿緩衝後仍然立即回傳
	for i := 0; i < clientBuffer; i++ {
		assert.True(t, r.Dispatch("sock-1", []byte("x")))
	}
	assert.False(t, r.Dispatch("sock-1", []byte("overflow")))
}

func TestSubscribeOverwritesPrevious(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	first := r.Subscribe("sock-1")
	second := r.Subscribe("sock-1")

	// 舊 channel 被關閉，舊連線隨之結束
	_, ok := <-first
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())

	// 事件送到新連線
	assert.True(t, r.Dispatch("sock-1", []byte("new")))
	assert.Equal(t, []byte("new"), <-second)
}

func TestDispatchDuringResubscribeDoesNotPanic(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	r.Subscribe("sock-1")

	// 重連覆蓋會關閉舊 channel，與同時進行的 Dispatch 不能互相打架
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					r.Dispatch("sock-1", []byte("x"))
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		ch := r.Subscribe("sock-1")
		// 排空避免緩衝永遠是滿的
		for len(ch) > 0 {
			<-ch
		}
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 1, r.Count())
}

func TestUnsubscribeOnlyReleasesOwnSlot(t *testing.T) {
	logger.SetNewNop()

	r := NewClientRegistry()
	first := r.Subscribe("sock-1")
	second := r.Subscribe("sock-1")

	// 舊連線的清理不能關掉新連線的 slot
	r.Unsubscribe("sock-1", first)
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.Dispatch("sock-1", []byte("still alive")))
	assert.Equal(t, []byte("still alive"), <-second)

	r.Unsubscribe("sock-1", second)
	assert.Equal(t, 0, r.Count())

	// 重複呼叫無害
	r.Unsubscribe("sock-1", second)
	assert.Equal(t, 0, r.Count())
}
