// Package game manages the in-memory session registry and the per-session
// turn coordinator.
package game

import (
	"context"
	"sync"

	"github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

// Event is a change notification fanned out to the live feed.
type Event struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
}

// EventSink receives session events; wiring one is optional.
type EventSink func(Event)

// Service is the in-memory session registry. Each session's state lives in
// its coordinator; the registry map itself is guarded separately.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Coordinator
	sink     EventSink
}

// NewService bootstraps the in-memory game service.
func NewService(sink EventSink) *Service {
	return &Service{
		sessions: make(map[string]*Coordinator),
		sink:     sink,
	}
}

func (s *Service) emit(sessionID, eventType string, payload any) {
	if s.sink != nil {
		s.sink(Event{SessionID: sessionID, Type: eventType, Payload: payload})
	}
}

// CreateSession provisions a session in Setup with two validated players.
// Mode may be empty here and selected later via SetMode.
func (s *Service) CreateSession(_ context.Context, players [game.PlayerCount]game.Player, mode game.ConversationMode) (game.GameSession, error) {
	for i := range players {
		players[i] = players[i].Normalized()
		players[i].Number = i + 1
		if err := players[i].Validate(); err != nil {
			return game.GameSession{}, err
		}
	}
	if mode != "" && !mode.Valid() {
		return game.GameSession{}, ErrInvalidMode
	}

	coord := newCoordinator(players, mode)
	assignPlayerIDs(coord)

	s.mu.Lock()
	s.sessions[coord.id] = coord
	s.mu.Unlock()

	snapshot := coord.Snapshot()
	s.emit(snapshot.ID, "session_created", snapshot)
	return snapshot, nil
}

func assignPlayerIDs(c *Coordinator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.players {
		if c.players[i].ID == "" {
			c.players[i].ID = newPlayerID()
		}
	}
}

// List returns a snapshot of every live session.
func (s *Service) List(_ context.Context) []game.GameSession {
	s.mu.RLock()
	coords := make([]*Coordinator, 0, len(s.sessions))
	for _, coord := range s.sessions {
		coords = append(coords, coord)
	}
	s.mu.RUnlock()

	out := make([]game.GameSession, 0, len(coords))
	for _, coord := range coords {
		out = append(out, coord.Snapshot())
	}
	return out
}

// Get returns a read-only snapshot of the session.
func (s *Service) Get(_ context.Context, sessionID string) (game.GameSession, error) {
	coord, err := s.coordinator(sessionID)
	if err != nil {
		return game.GameSession{}, err
	}
	return coord.Snapshot(), nil
}

func (s *Service) coordinator(sessionID string) (*Coordinator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coord, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return coord, nil
}

// SetMode selects the conversation mode during setup.
func (s *Service) SetMode(_ context.Context, sessionID string, mode game.ConversationMode) (game.GameSession, error) {
	return s.mutate(sessionID, "mode_selected", func(c *Coordinator) error {
		return c.SetMode(mode)
	})
}

// StartGame transitions the session into Playing.
func (s *Service) StartGame(_ context.Context, sessionID string) (game.GameSession, error) {
	return s.mutate(sessionID, "game_started", func(c *Coordinator) error {
		return c.StartGame()
	})
}

// NextTurn advances to the next player's turn.
func (s *Service) NextTurn(_ context.Context, sessionID string) (game.GameSession, error) {
	return s.mutate(sessionID, "turn_advanced", func(c *Coordinator) error {
		return c.NextTurn()
	})
}

// SetQuestionCategory sets the pending category for the active turn.
func (s *Service) SetQuestionCategory(_ context.Context, sessionID string, cat question.Category) (game.GameSession, error) {
	return s.mutate(sessionID, "category_selected", func(c *Coordinator) error {
		return c.SetQuestionCategory(cat)
	})
}

// MarkAnswered flags the active turn as answered.
func (s *Service) MarkAnswered(_ context.Context, sessionID string) (game.GameSession, error) {
	return s.mutate(sessionID, "turn_answered", func(c *Coordinator) error {
		return c.MarkAnswered()
	})
}

// CompleteGame transitions the session into Complete.
func (s *Service) CompleteGame(_ context.Context, sessionID string) (game.GameSession, error) {
	return s.mutate(sessionID, "game_completed", func(c *Coordinator) error {
		return c.CompleteGame()
	})
}

// ResetGame returns the session to Setup unconditionally.
func (s *Service) ResetGame(_ context.Context, sessionID string) (game.GameSession, error) {
	return s.mutate(sessionID, "game_reset", func(c *Coordinator) error {
		c.ResetGame()
		return nil
	})
}

// UpdatePlayer replaces one player's mutable attributes.
func (s *Service) UpdatePlayer(_ context.Context, sessionID string, index int, player game.Player) (game.GameSession, error) {
	return s.mutate(sessionID, "player_updated", func(c *Coordinator) error {
		return c.UpdatePlayer(index, player)
	})
}

// PresentCard appends a question card to the session roster.
func (s *Service) PresentCard(_ context.Context, sessionID string, q question.Question) (game.GameSession, int, error) {
	coord, err := s.coordinator(sessionID)
	if err != nil {
		return game.GameSession{}, 0, err
	}
	index, err := coord.PresentCard(q)
	if err != nil {
		return game.GameSession{}, 0, err
	}
	snapshot := coord.Snapshot()
	s.emit(sessionID, "card_presented", map[string]any{"cardIndex": index, "question": q})
	return snapshot, index, nil
}

// RecordAnswer stores a transcribed answer on a card.
func (s *Service) RecordAnswer(_ context.Context, sessionID string, cardIndex, slot int, answer game.PlayerAnswer) (game.GameSession, error) {
	snapshot, err := s.mutate(sessionID, "answer_recorded", func(c *Coordinator) error {
		return c.RecordAnswer(cardIndex, slot, answer)
	})
	if err != nil {
		return game.GameSession{}, err
	}
	if cardIndex < len(snapshot.Cards) && snapshot.Cards[cardIndex].IsComplete() {
		s.emit(sessionID, "card_completed", map[string]any{"cardIndex": cardIndex})
	}
	return snapshot, nil
}

// RemoveAnswer clears an answer from a card.
func (s *Service) RemoveAnswer(_ context.Context, sessionID string, cardIndex, slot int) (game.GameSession, error) {
	return s.mutate(sessionID, "answer_removed", func(c *Coordinator) error {
		return c.RemoveAnswer(cardIndex, slot)
	})
}

func (s *Service) mutate(sessionID, eventType string, op func(*Coordinator) error) (game.GameSession, error) {
	coord, err := s.coordinator(sessionID)
	if err != nil {
		return game.GameSession{}, err
	}
	if err := op(coord); err != nil {
		return game.GameSession{}, err
	}
	snapshot := coord.Snapshot()
	s.emit(sessionID, eventType, snapshot)
	return snapshot, nil
}
