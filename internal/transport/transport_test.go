package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestTransport builds a WebSocketTransport around an httptest server so
// tests never bind a fixed port.
func newTestTransport(t *testing.T) (*WebSocketTransport, string) {
	t.Helper()

	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}
	go wst.fanOut()

	srv := httptest.NewServer(http.HandlerFunc(wst.handleWebSocket))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { wst.Close() })

	return wst, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, url := newTestTransport(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// The server registers the client on upgrade; sends raced against the
	// registration would be legitimately dropped, so poll until delivery.
	payload := map[string]any{"type": "frame", "position": 0.25}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var got map[string]any
	done := make(chan error, 1)
	go func() { done <- conn.ReadJSON(&got) }()

	deadline := time.After(2 * time.Second)
	for {
		if err := wst.Send(payload); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if got["type"] != "frame" || got["position"] != 0.25 {
				t.Errorf("received %v, want %v", got, payload)
			}
			return
		case <-deadline:
			t.Fatal("no frame delivered within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst := &WebSocketTransport{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 4),
	}
	// No fanOut running: the queue fills and further sends must drop, not
	// stall the caller.
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := wst.Send(i); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("100 sends took %v, queue overflow is blocking", elapsed)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestWebSocketCloseDisconnectsClients(t *testing.T) {
	wst, url := newTestTransport(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := wst.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client read succeeded after transport close")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(map[string]any{"type": "frame"}); err != nil {
		t.Errorf("Send failed: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
