package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	analysismodel "github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/question"
	analysisservice "github.com/duetlabs/duet/backend/internal/service/analysis"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/internal/service/llm"
	"github.com/duetlabs/duet/backend/internal/service/prompt"
	"github.com/duetlabs/duet/backend/pkg/utils"
)

// Handler exposes the compatibility pipeline over HTTP. It keeps the latest
// session report in memory for the presentation layer; durable storage is a
// consumer concern.
type Handler struct {
	analysisSvc *analysisservice.Service
	gameSvc     *gameservice.Service

	mu      sync.RWMutex
	reports map[string]*analysisservice.SessionReport
}

// New creates the analysis handler.
func New(analysisSvc *analysisservice.Service, gameSvc *gameservice.Service) *Handler {
	return &Handler{
		analysisSvc: analysisSvc,
		gameSvc:     gameSvc,
		reports:     make(map[string]*analysisservice.SessionReport),
	}
}

// RegisterRoutes registers the analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analysis", h.handleAnalyze)
	r.Route("/sessions/{sessionID}/analysis", func(r chi.Router) {
		r.Get("/", h.handleGetReport)
		r.Post("/cards/{cardIndex}", h.handleAnalyzeCard)
		r.Post("/synthesis", h.handleSynthesis)
	})
}

type analyzeRequest struct {
	Type            analysismodel.Type         `json:"type"`
	Question        string                     `json:"question,omitempty"`
	Response        string                     `json:"response,omitempty"`
	ResponseA       string                     `json:"responseA,omitempty"`
	ResponseB       string                     `json:"responseB,omitempty"`
	Category        *question.Category         `json:"category,omitempty"`
	Context         *analysismodel.UserContext `json:"context,omitempty"`
	FocusAreas      []string                   `json:"focusAreas,omitempty"`
	DetailLevel     prompt.DetailLevel         `json:"detailLevel,omitempty"`
	CulturalContext string                     `json:"culturalContext,omitempty"`
	Seed            *int64                     `json:"seed,omitempty"`
}

// handleAnalyze runs a one-shot individual, comparative, session or
// category analysis.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch payload.Type {
	case analysismodel.TypeIndividual, analysismodel.TypeComparative,
		analysismodel.TypeSession, analysismodel.TypeCategory:
	default:
		utils.RespondError(w, http.StatusBadRequest, "unsupported analysis type")
		return
	}
	if payload.Category != nil && !payload.Category.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	result, err := h.analysisSvc.Analyze(r.Context(), prompt.Request{
		Type:            payload.Type,
		Question:        payload.Question,
		Response:        payload.Response,
		ResponseA:       payload.ResponseA,
		ResponseB:       payload.ResponseB,
		Category:        payload.Category,
		Context:         payload.Context,
		FocusAreas:      payload.FocusAreas,
		DetailLevel:     payload.DetailLevel,
		CulturalContext: payload.CulturalContext,
		Seed:            payload.Seed,
	})
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleAnalyzeCard runs stage 1 for one completed card of a session.
func (h *Handler) handleAnalyzeCard(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	cardIndex, err := strconv.Atoi(chi.URLParam(r, "cardIndex"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid card index")
		return
	}

	session, err := h.gameSvc.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if cardIndex < 0 || cardIndex >= len(session.Cards) {
		utils.RespondError(w, http.StatusBadRequest, "card index out of range")
		return
	}

	summary, err := h.analysisSvc.AnalyzeCard(r.Context(), session.Cards[cardIndex])
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, summary)
}

// handleSynthesis runs the full two-stage pipeline for a session and caches
// the report.
func (h *Handler) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Seed *int64 `json:"seed,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.gameSvc.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	report, err := h.analysisSvc.AnalyzeSession(r.Context(), session, payload.Seed, nil)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	h.mu.Lock()
	h.reports[sessionID] = report
	h.mu.Unlock()

	utils.RespondJSON(w, http.StatusOK, report)
}

// handleGetReport returns the most recent report for a session.
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	h.mu.RLock()
	report, ok := h.reports[sessionID]
	h.mu.RUnlock()

	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no analysis report for session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

// respondAnalysisError distinguishes caller mistakes (409/400) from model
// and service faults (502).
func respondAnalysisError(w http.ResponseWriter, err error) {
	var svcErr *llm.ServiceError
	switch {
	case errors.Is(err, analysisservice.ErrCardIncomplete),
		errors.Is(err, analysisservice.ErrNoCompletedCards),
		errors.Is(err, analysisservice.ErrAllCardsFailed):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &svcErr):
		utils.RespondError(w, http.StatusBadGateway, "analysis service unavailable")
	case errors.Is(err, analysisservice.ErrInvalidResponse),
		errors.Is(err, analysisservice.ErrInsufficientData):
		utils.RespondError(w, http.StatusBadGateway, "analysis unavailable: model returned an unusable response")
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
