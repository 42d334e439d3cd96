package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

const (
	liveWriteTimeout  = 10 * time.Second
	liveSendQueueSize = 8
)

type liveClient struct {
	id   string
	conn *websocket.Conn
	send chan universe.UniverseEvent
}

// LiveHub pushes universe batch events to connected dashboard clients.
// It implements universe.Notifier.
type LiveHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[string]*liveClient
}

func NewLiveHub(log *logger.Logger) *LiveHub {
	return &LiveHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard origin is enforced upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[string]*liveClient),
	}
}

// PublishUniverseEvent fans the event out to every connected client.
// Slow clients are dropped rather than blocking the batch.
func (h *LiveHub) PublishUniverseEvent(event universe.UniverseEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.logger.WithField("client_id", client.id).Warn("Live client send queue full, closing")
			go h.remove(client.id)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *LiveHub) remove(id string) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if ok {
		close(client.send)
		client.conn.Close()
		h.logger.WithField("client_id", id).Debug("Live client disconnected")
	}
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects.
// GET /v1/live
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &liveClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan universe.UniverseEvent, liveSendQueueSize),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.WithField("client_id", client.id).Debug("Live client connected")

	go h.writeLoop(client)
	h.readLoop(client)
}

func (h *LiveHub) writeLoop(client *liveClient) {
	for event := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := client.conn.WriteJSON(event); err != nil {
			h.remove(client.id)
			return
		}
	}
}

// readLoop drains incoming frames so pings and close messages are handled.
func (h *LiveHub) readLoop(client *liveClient) {
	defer h.remove(client.id)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
