package question

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duetlabs/duet/backend/internal/model/question"
	"github.com/duetlabs/duet/backend/pkg/utils"
)

// Handler serves the question deck.
type Handler struct {
	deck question.Deck
}

// New creates a question handler.
func New(deck question.Deck) *Handler {
	return &Handler{deck: deck}
}

// RegisterRoutes registers the deck routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/questions", h.handleListQuestions)
	r.Get("/questions/categories", h.handleListCategories)
}

// handleListQuestions lists the deck, optionally filtered by category.
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat := question.Category(raw)
		if !cat.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		utils.RespondJSON(w, http.StatusOK, h.deck.ByCategory(cat))
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.deck.List())
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := question.Categories()
	out := make([]map[string]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, map[string]string{"id": string(c), "displayName": c.DisplayName()})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}
