package server

import (
	"net/http"
	"sync"
	"time"

	"masta/logger"

	"github.com/gorilla/websocket"
)

// PlayEvent is broadcast to activity subscribers when a user plays a
// track.
type PlayEvent struct {
	Username   string    `json:"username"`
	TrackID    int64     `json:"trackId"`
	TrackTitle string    `json:"trackTitle"`
	ArtistName string    `json:"artistName"`
	PlayedAt   time.Time `json:"playedAt"`
}

// ActivityHub fans play events out to connected websocket clients.
type ActivityHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewActivityHub creates an empty hub.
func NewActivityHub() *ActivityHub {
	return &ActivityHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and keeps it registered until the
// peer goes away.
func (h *ActivityHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	logger.Debug("activity client connected", logger.Int("clients", count))

	// Reads are discarded; the socket is push-only. The read loop exists
	// to detect disconnects.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the event to every connected client. Clients that
// fail to receive are dropped.
func (h *ActivityHub) Broadcast(event PlayEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *ActivityHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Close disconnects all clients.
func (h *ActivityHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
