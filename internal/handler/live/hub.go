package live

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub fans session events out to every websocket subscribed to that
// session. Writes are serialized per connection.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]bool)}
}

func (h *Hub) register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[sessionID] == nil {
		h.conns[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.conns[sessionID][conn] = true
}

func (h *Hub) unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.conns[sessionID]; subs != nil {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.conns, sessionID)
		}
	}
}

// Publish sends the payload to every subscriber of the session. A failed
// write drops that connection; the read loop notices and cleans up.
func (h *Hub) Publish(sessionID string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns[sessionID] {
		if err := conn.WriteJSON(payload); err != nil {
			log.Debug().Err(err).Str("session", sessionID).Msg("dropping live subscriber")
			conn.Close()
			delete(h.conns[sessionID], conn)
		}
	}
}
