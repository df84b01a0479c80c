package websocket

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/metrics"
)

// Message is the envelope pushed to every connected client.
type Message struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	log *zap.SugaredLogger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("✓ WebSocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues an event for all clients without blocking the caller
func (h *Hub) Broadcast(event string, payload interface{}) {
	msg := Message{Event: event, Payload: payload, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("⚠️ broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	metrics.WebSocketClients.Set(float64(len(h.clients)))
	h.log.Infof("client %s connected (total: %d)", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.WebSocketClients.Set(float64(len(h.clients)))
		h.log.Infof("client %s disconnected (total: %d)", c.ID, len(h.clients))
	}
}

func (h *Hub) broadcastMessage(msg Message) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.trySend(msg) {
			// Buffer full means the client stopped draining; cut it loose
			h.log.Warnf("⚠️ client %s buffer full, disconnecting", c.ID)
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.Infof("shutting down hub (%d active clients)", len(h.clients))
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WebSocketClients.Set(0)
}
