package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	gamemodel "github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/model/question"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/pkg/utils"
)

// Handler exposes the session lifecycle and turn operations over HTTP.
type Handler struct {
	gameSvc *gameservice.Service
	deck    question.Deck
}

// New creates the game handler.
func New(gameSvc *gameservice.Service, deck question.Deck) *Handler {
	return &Handler{gameSvc: gameSvc, deck: deck}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions", h.handleListSessions)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Post("/mode", h.handleSetMode)
		r.Post("/start", h.handleStart)
		r.Post("/next-turn", h.handleNextTurn)
		r.Post("/category", h.handleSetCategory)
		r.Post("/answered", h.handleMarkAnswered)
		r.Post("/complete", h.handleComplete)
		r.Post("/reset", h.handleReset)
		r.Put("/players/{playerIndex}", h.handleUpdatePlayer)
		r.Post("/cards", h.handlePresentCard)
		r.Post("/cards/{cardIndex}/answers", h.handleRecordAnswer)
		r.Delete("/cards/{cardIndex}/answers/{slot}", h.handleRemoveAnswer)
	})
}

type playerPayload struct {
	Name     string                `json:"name"`
	Pronouns *gamemodel.PronounSet `json:"pronouns,omitempty"`
	Metadata map[string]string     `json:"metadata,omitempty"`
}

func (p playerPayload) toPlayer(number int) gamemodel.Player {
	player := gamemodel.Player{
		Name:     p.Name,
		Number:   number,
		Metadata: p.Metadata,
	}
	if p.Pronouns != nil {
		player.Pronouns = *p.Pronouns
	}
	return player
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Players []playerPayload            `json:"players"`
		Mode    gamemodel.ConversationMode `json:"mode,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Players) != gamemodel.PlayerCount {
		utils.RespondError(w, http.StatusBadRequest, "exactly two players are required")
		return
	}

	var players [gamemodel.PlayerCount]gamemodel.Player
	for i, p := range payload.Players {
		players[i] = p.toPlayer(i + 1)
	}

	session, err := h.gameSvc.CreateSession(r.Context(), players, payload.Mode)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.gameSvc.List(r.Context()))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mode gamemodel.ConversationMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.gameSvc.SetMode(r.Context(), chi.URLParam(r, "sessionID"), payload.Mode)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.StartGame(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.NextTurn(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Category question.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !payload.Category.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	session, err := h.gameSvc.SetQuestionCategory(r.Context(), chi.URLParam(r, "sessionID"), payload.Category)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleMarkAnswered(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.MarkAnswered(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.CompleteGame(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := h.gameSvc.ResetGame(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "playerIndex"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid player index")
		return
	}

	var payload playerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.gameSvc.UpdatePlayer(r.Context(), chi.URLParam(r, "sessionID"), index, payload.toPlayer(index+1))
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handlePresentCard(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		QuestionID string            `json:"questionId,omitempty"`
		Question   string            `json:"question,omitempty"`
		Category   question.Category `json:"category,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var q question.Question
	switch {
	case payload.QuestionID != "":
		found, ok := h.deck.FindByID(payload.QuestionID)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "question not found")
			return
		}
		q = found
	case payload.Question != "" && payload.Category.Valid():
		q = question.Question{Text: payload.Question, Category: payload.Category}
	default:
		utils.RespondError(w, http.StatusBadRequest, "questionId or question+category required")
		return
	}

	session, index, err := h.gameSvc.PresentCard(r.Context(), chi.URLParam(r, "sessionID"), q)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"cardIndex": index, "session": session})
}

func (h *Handler) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	cardIndex, err := strconv.Atoi(chi.URLParam(r, "cardIndex"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid card index")
		return
	}

	var payload struct {
		Slot         int               `json:"slot"`
		Text         string            `json:"text"`
		DurationMS   int64             `json:"durationMs,omitempty"`
		AudioQuality float64           `json:"audioQuality,omitempty"`
		Metadata     map[string]string `json:"metadata,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer := gamemodel.PlayerAnswer{
		Text:         payload.Text,
		Duration:     time.Duration(payload.DurationMS) * time.Millisecond,
		AudioQuality: payload.AudioQuality,
		Metadata:     payload.Metadata,
	}

	session, err := h.gameSvc.RecordAnswer(r.Context(), chi.URLParam(r, "sessionID"), cardIndex, payload.Slot, answer)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleRemoveAnswer(w http.ResponseWriter, r *http.Request) {
	cardIndex, err := strconv.Atoi(chi.URLParam(r, "cardIndex"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid card index")
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid answer slot")
		return
	}

	session, err := h.gameSvc.RemoveAnswer(r.Context(), chi.URLParam(r, "sessionID"), cardIndex, slot)
	if err != nil {
		respondGameError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// respondGameError maps state errors onto HTTP statuses: unknown session is
// 404, phase violations conflict with current state (409), everything else
// is caller input (400).
func respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gameservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gameservice.ErrInvalidPhaseTransition),
		errors.Is(err, gameservice.ErrTurnAlreadyAnswered):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	}
}
