package app

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"video_editing_platform/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp/fasthttputil"
)

// startRelayServer 以 in-memory listener 起一個 relay server，不佔用真實 port
func startRelayServer(registry *ClientRegistry) (*http.Client, func()) {
	srv := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(srv, NewSSEHandler(registry))

	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = srv.Listener(ln)
	}()

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return ln.Dial()
			},
		},
	}
	return client, func() { _ = srv.Shutdown() }
}

func waitForCount(r *ClientRegistry, want int) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.Count() == want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return r.Count() == want
}

func TestProgressStreamDeliversFrames(t *testing.T) {
	logger.SetNewNop()

	registry := NewClientRegistry()
	client, shutdown := startRelayServer(registry)
	defer shutdown()

	resp, err := client.Get("http://relay/progress/sock-1")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.True(t, waitForCount(registry, 1), "connection should hold a slot")

	assert.True(t, registry.Dispatch("sock-1", []byte(`{"percent":50,"status":"Pending"}`)))

	// 每個事件一個 data frame，內容原樣轉送
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "data: {\"percent\":50,\"status\":\"Pending\"}\n", line)
	blank, err := reader.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "\n", blank)
}

func TestProgressStreamReleasesSlotOnDisconnect(t *testing.T) {
	logger.SetNewNop()

	registry := NewClientRegistry()
	client, shutdown := startRelayServer(registry)
	defer shutdown()

	resp, err := client.Get("http://relay/progress/sock-1")
	assert.NoError(t, err)
	assert.True(t, waitForCount(registry, 1))

	// client 斷線後，下一次寫入失敗時釋放 slot
	resp.Body.Close()

	deadline := time.Now().Add(3 * time.Second)
	for registry.Count() != 0 && time.Now().Before(deadline) {
		registry.Dispatch("sock-1", []byte("x"))
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, registry.Count())
}

func TestProgressStreamEndsWhenOverwritten(t *testing.T) {
	logger.SetNewNop()

	registry := NewClientRegistry()
	client, shutdown := startRelayServer(registry)
	defer shutdown()

	resp, err := client.Get("http://relay/progress/sock-1")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, waitForCount(registry, 1))

	// 同 id 重新訂閱，舊連線的 stream 結束
	registry.Subscribe("sock-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = bufio.NewReader(resp.Body).ReadString('\n')
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("old stream should end after resubscribe")
	}
	// 新連線的 slot 還在
	assert.Equal(t, 1, registry.Count())
}
