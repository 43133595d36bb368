package stream

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	analysisservice "github.com/duetlabs/duet/backend/internal/service/analysis"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/pkg/utils"
)

// Handler streams analysis progress over Server-Sent Events: one event per
// analyzed (or failed) card, then the synthesis report.
type Handler struct {
	analysisSvc *analysisservice.Service
	gameSvc     *gameservice.Service
}

// New creates a stream handler.
func New(analysisSvc *analysisservice.Service, gameSvc *gameservice.Service) *Handler {
	return &Handler{analysisSvc: analysisSvc, gameSvc: gameSvc}
}

// RegisterRoutes registers the SSE route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/analysis/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.gameSvc.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	var seed *int64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid seed")
			return
		}
		seed = &parsed
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", map[string]string{"sessionId": sessionID})

	// Progress callbacks arrive from concurrent card workers; pump them
	// through a channel so a single goroutine owns the response writer.
	events := make(chan analysisservice.Progress, 16)
	ctx := r.Context()

	var report *analysisservice.SessionReport
	var runErr error
	go func() {
		defer close(events)
		report, runErr = h.analysisSvc.AnalyzeSession(ctx, session, seed, func(p analysisservice.Progress) {
			select {
			case events <- p:
			case <-ctx.Done():
			}
		})
	}()

	for p := range events {
		utils.SendSSEEvent(w, flusher, p.Stage, p)
	}

	if runErr != nil {
		log.Error().Err(runErr).Str("session", sessionID).Msg("analysis stream failed")
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": runErr.Error()})
		return
	}
	utils.SendSSEEvent(w, flusher, "report", report)
}
