// Package broadcast fans completed analysis records out to live websocket
// listeners (the frontend marquee).
package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"FishMoney/internal/domain/models"
	xlogger "FishMoney/pkg/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub tracks connected websocket clients. Publishing is best-effort: a client
// that cannot be written to within writeWait is dropped.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *xlogger.Logger
}

func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{}), logger: logger}
}

// Add registers a connection.
func (h *Hub) Add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Remove unregisters and closes a connection.
func (h *Hub) Remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.Close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Publish sends the record to every connected client.
func (h *Hub) Publish(record *models.AnalysisRecord) {
	if record == nil {
		return
	}
	b, err := json.Marshal(record)
	if err != nil {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			if h.logger != nil {
				h.logger.Debug("dropping live client", xlogger.Error(err))
			}
			h.Remove(c)
		}
	}
}
