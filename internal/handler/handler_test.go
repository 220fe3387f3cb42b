package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iphonefly/realtime-api/internal/config"
	"github.com/iphonefly/realtime-api/internal/store"
)

// testEnv wires a handler onto in-memory stores behind a live httptest server
type testEnv struct {
	handler  *Handler
	server   *httptest.Server
	iphones  *store.MemoryIphoneStore
	messages *store.MemoryMessageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	iphones := store.NewMemoryIphoneStore()
	messages := store.NewMemoryMessageStore()
	cfg := config.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		HistoryLimit:   50,
	}

	h := New(iphones, messages, cfg)
	srv := httptest.NewServer(h.SetupRouter())
	t.Cleanup(srv.Close)

	return &testEnv{handler: h, server: srv, iphones: iphones, messages: messages}
}

// dial opens a WebSocket connection against the test server
func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	before := e.handler.Hub.Count()

	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Broadcasts only reach connections the hub has registered
	deadline := time.Now().Add(2 * time.Second)
	for e.handler.Hub.Count() <= before {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for hub registration")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal %s payload: %v", event, err)
		}
		data = raw
	}
	if err := conn.WriteJSON(wsEvent{Event: event, Data: data}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// readEvent blocks for the next frame on the connection
func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Timed out waiting for event: %v", err)
	}

	var evt wsEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		t.Fatalf("Failed to decode frame %s: %v", raw, err)
	}
	return evt
}

// expectEvent reads the next frame and asserts its event name
func expectEvent(t *testing.T, conn *websocket.Conn, want string) wsEvent {
	t.Helper()

	evt := readEvent(t, conn)
	if evt.Event != want {
		t.Fatalf("Expected %s event, got %s (%s)", want, evt.Event, evt.Data)
	}
	return evt
}

// expectSilence asserts that no frame arrives within a short window. The
// connection is unusable afterwards, so call it last on a connection.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	if _, raw, err := conn.ReadMessage(); err == nil {
		t.Fatalf("Expected no event, received: %s", raw)
	}
}

func decodeInto(t *testing.T, data json.RawMessage, out any) {
	t.Helper()

	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("Failed to decode payload %s: %v", data, err)
	}
}
