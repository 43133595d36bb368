// Package live pushes session events (turn advances, card completions,
// analysis progress) to connected clients over websockets.
package live

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/pkg/utils"
)

// Handler upgrades live-feed connections and subscribes them to their
// session's events.
type Handler struct {
	hub      *Hub
	gameSvc  *gameservice.Service
	upgrader websocket.Upgrader
}

// New creates the live handler over a shared hub.
func New(hub *Hub, gameSvc *gameservice.Service) *Handler {
	return &Handler{
		hub:     hub,
		gameSvc: gameSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/live/{sessionID}", h.handleLive)
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.gameSvc.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Initial snapshot so clients do not have to race a REST call. Written
	// before registering: once the hub knows the connection it may write to
	// it from Publish, and the connection allows only one writer at a time.
	if err := conn.WriteJSON(map[string]any{"type": "snapshot", "session": session}); err != nil {
		return
	}

	h.hub.register(sessionID, conn)
	defer h.hub.unregister(sessionID, conn)

	// The feed is one-way; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
