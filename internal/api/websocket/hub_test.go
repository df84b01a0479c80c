package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn, func()) {
	t.Helper()

	hub := NewHub(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, zap.NewNop().Sugar()))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("dialing: %v", err)
	}

	return hub, conn, func() {
		conn.Close()
		srv.Close()
		cancel()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := hub.ClientCount(); got != want {
		t.Fatalf("client count = %d, want %d", got, want)
	}
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub, conn, cleanup := dialTestHub(t)
	defer cleanup()

	waitForClients(t, hub, 1)

	hub.Broadcast("bet_update", map[string]string{"id": "bet1", "result": "win"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg.Event != "bet_update" {
		t.Errorf("event = %q, want bet_update", msg.Event)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload type %T", msg.Payload)
	}
	if payload["id"] != "bet1" {
		t.Errorf("payload id = %v, want bet1", payload["id"])
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, conn, cleanup := dialTestHub(t)
	defer cleanup()

	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
