package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wirebus/wirebus/pkg/api/events"
	"github.com/wirebus/wirebus/pkg/logger"
)

func wsTestLogger() logger.Logger {
	return logger.New(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
}

func TestWebSocketHandler_StreamsEvents(t *testing.T) {
	broadcaster := events.NewBroadcaster(events.Config{})
	defer broadcaster.Close()

	h := NewWebSocketHandler(wsTestLogger(), broadcaster, WebSocketConfig{})
	defer h.Close()

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The subscriber channel registers during the upgrade, give it a beat.
	waitForConnections(t, h.manager, 1)

	broadcaster.Broadcast(events.Event{
		Type:    "bus.EMITTED",
		Payload: map[string]any{"signal": "orderPlaced"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event events.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Type != "bus.EMITTED" {
		t.Errorf("type = %q, want bus.EMITTED", event.Type)
	}
}

func TestWebSocketHandler_SubscriptionFilter(t *testing.T) {
	broadcaster := events.NewBroadcaster(events.Config{})
	defer broadcaster.Close()

	h := NewWebSocketHandler(wsTestLogger(), broadcaster, WebSocketConfig{})
	defer h.Close()

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForConnections(t, h.manager, 1)

	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "signal": "wanted"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Give the read pump time to apply the subscription.
	time.Sleep(100 * time.Millisecond)

	broadcaster.Broadcast(events.Event{Type: "bus.EMITTED", Payload: map[string]any{"signal": "ignored"}})
	broadcaster.Broadcast(events.Event{Type: "bus.EMITTED", Payload: map[string]any{"signal": "wanted"}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event events.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload := event.Payload.(map[string]any)
	if payload["signal"] != "wanted" {
		t.Errorf("signal = %v, want wanted", payload["signal"])
	}
}

func TestWebSocketHandler_RejectsPlainHTTP(t *testing.T) {
	broadcaster := events.NewBroadcaster(events.Config{})
	defer broadcaster.Close()

	h := NewWebSocketHandler(wsTestLogger(), broadcaster, WebSocketConfig{})
	defer h.Close()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/events", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestConnectionManager_Limit(t *testing.T) {
	m := NewConnectionManager(1)

	first := &wsClient{subscriptions: make(map[string]struct{})}
	if err := m.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.CanAccept() {
		t.Error("expected manager to be at capacity")
	}
	if err := m.Register(&wsClient{subscriptions: make(map[string]struct{})}); err == nil {
		t.Error("expected error registering past the limit")
	}

	m.Unregister(first)
	if !m.CanAccept() {
		t.Error("expected capacity after unregister")
	}
}

func waitForConnections(t *testing.T, m *ConnectionManager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d connections, have %d", want, m.Count())
}
