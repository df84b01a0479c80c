package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Handler upgrades HTTP requests and attaches the connection to the hub.
// It mounts on the REST server at /ws.
type Handler struct {
	hub *Hub
	log *zap.SugaredLogger
}

// NewHandler creates the upgrade handler
func NewHandler(hub *Hub, log *zap.SugaredLogger) *Handler {
	return &Handler{hub: hub, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("⚠️ websocket upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn, h.log)
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()
}
