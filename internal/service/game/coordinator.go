package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

// Coordinator owns one session's mutable state and is its only writer.
// Every mutation happens under the coordinator's lock, so concurrent HTTP
// callers are serialized per session; the outside world only ever sees
// snapshots.
type Coordinator struct {
	mu sync.Mutex

	id           string
	players      [game.PlayerCount]game.Player
	phase        game.GamePhase
	mode         game.ConversationMode
	turn         game.TurnState
	turnCounter  int
	roundCounter int
	cards        []game.CardAnswers
	createdAt    time.Time
	lastActivity time.Time
	metadata     map[string]string
}

func newPlayerID() string {
	return uuid.NewString()
}

func newCoordinator(players [game.PlayerCount]game.Player, mode game.ConversationMode) *Coordinator {
	now := time.Now().UTC()
	return &Coordinator{
		id:           uuid.NewString(),
		players:      players,
		phase:        game.PhaseSetup,
		mode:         mode,
		createdAt:    now,
		lastActivity: now,
		metadata:     make(map[string]string),
	}
}

// Snapshot returns a read-only copy of the session.
func (c *Coordinator) Snapshot() game.GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() game.GameSession {
	cards := make([]game.CardAnswers, len(c.cards))
	for i, card := range c.cards {
		copied := card
		for slot, ans := range card.Answers {
			if ans != nil {
				dup := *ans
				copied.Answers[slot] = &dup
			}
		}
		if card.CompletedAt != nil {
			ts := *card.CompletedAt
			copied.CompletedAt = &ts
		}
		cards[i] = copied
	}

	turn := c.turn
	if c.turn.Category != nil {
		cat := *c.turn.Category
		turn.Category = &cat
	}

	meta := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		meta[k] = v
	}

	return game.GameSession{
		ID:             c.id,
		Players:        c.players,
		Phase:          c.phase,
		Mode:           c.mode,
		Turn:           turn,
		TurnCounter:    c.turnCounter,
		RoundCounter:   c.roundCounter,
		Cards:          cards,
		CreatedAt:      c.createdAt,
		LastActivityAt: c.lastActivity,
		Metadata:       meta,
	}
}

func (c *Coordinator) touch() {
	c.lastActivity = time.Now().UTC()
}

// SetMode selects the conversation mode during setup.
func (c *Coordinator) SetMode(mode game.ConversationMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhaseSetup {
		return fmt.Errorf("%w: mode can only change during setup", ErrInvalidPhaseTransition)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	c.mode = mode
	c.touch()
	return nil
}

// StartGame moves Setup -> Playing. It requires a selected mode and two
// valid players, and resets the turn state and both counters.
func (c *Coordinator) StartGame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhaseSetup {
		return fmt.Errorf("%w: start requires setup phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	if c.mode == "" {
		return ErrMissingConfiguration
	}
	for _, p := range c.players {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	c.phase = game.PhasePlaying
	c.turn = game.TurnState{CurrentPlayerIndex: 0, StartedAt: time.Now().UTC()}
	c.turnCounter = 0
	c.roundCounter = 0
	c.touch()
	return nil
}

// NextTurn advances to the next player, incrementing the turn counter and
// rolling the round counter whenever the player index wraps back to 0.
// Per-turn fields (start time, pending category, answered flag) reset.
//
// Invariant preserved: roundCounter == turnCounter / PlayerCount.
func (c *Coordinator) NextTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return fmt.Errorf("%w: next turn requires playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}

	c.turnCounter++
	next := (c.turn.CurrentPlayerIndex + 1) % game.PlayerCount
	if next == 0 {
		c.roundCounter++
	}
	c.turn = game.TurnState{CurrentPlayerIndex: next, StartedAt: time.Now().UTC()}
	c.touch()
	return nil
}

// SetQuestionCategory records the pending category for the active turn.
func (c *Coordinator) SetQuestionCategory(cat question.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return fmt.Errorf("%w: category requires playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	c.turn.Category = &cat
	c.touch()
	return nil
}

// MarkAnswered flags the active turn as answered, exactly once per turn.
func (c *Coordinator) MarkAnswered() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return fmt.Errorf("%w: answering requires playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	if c.turn.Answered {
		return ErrTurnAlreadyAnswered
	}
	c.turn.Answered = true
	c.touch()
	return nil
}

// CompleteGame moves Playing -> Complete. Calling it twice fails.
func (c *Coordinator) CompleteGame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return fmt.Errorf("%w: complete requires playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	c.phase = game.PhaseComplete
	c.touch()
	return nil
}

// ResetGame unconditionally returns the session to Setup, clearing mode,
// turn state, counters and the card roster. Administrative; no failure mode.
func (c *Coordinator) ResetGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = game.PhaseSetup
	c.mode = ""
	c.turn = game.TurnState{}
	c.turnCounter = 0
	c.roundCounter = 0
	c.cards = nil
	c.touch()
}

// UpdatePlayer replaces the player at index 0 or 1 after validation.
func (c *Coordinator) UpdatePlayer(index int, player game.Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= game.PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidPlayerIndex, index)
	}
	player = player.Normalized()
	// Identity is immutable; the caller cannot pick ID or Number, so set
	// both before validation rather than rejecting their absence.
	player.ID = c.players[index].ID
	player.Number = index + 1
	if err := player.Validate(); err != nil {
		return err
	}
	c.players[index] = player
	c.touch()
	return nil
}

// PresentCard appends a new question card to the roster and returns its
// index.
func (c *Coordinator) PresentCard(q question.Question) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return 0, fmt.Errorf("%w: cards require playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	c.cards = append(c.cards, game.CardAnswers{
		Question:    q.Text,
		Category:    q.Category,
		PresentedAt: time.Now().UTC(),
	})
	c.touch()
	return len(c.cards) - 1, nil
}

// RecordAnswer stores a player's transcribed answer on a card.
func (c *Coordinator) RecordAnswer(cardIndex, slot int, answer game.PlayerAnswer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != game.PhasePlaying {
		return fmt.Errorf("%w: answers require playing phase, currently %s", ErrInvalidPhaseTransition, c.phase)
	}
	if cardIndex < 0 || cardIndex >= len(c.cards) {
		return fmt.Errorf("%w: %d", ErrInvalidCardIndex, cardIndex)
	}
	if slot < 0 || slot >= game.PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidPlayerIndex, slot)
	}
	if err := answer.Validate(); err != nil {
		return err
	}

	answer.ID = uuid.NewString()
	answer.PlayerID = c.players[slot].ID
	answer.CreatedAt = time.Now().UTC()
	if err := c.cards[cardIndex].SetAnswer(slot, answer); err != nil {
		return err
	}
	c.touch()
	return nil
}

// RemoveAnswer clears a player's answer from a card, reopening it.
func (c *Coordinator) RemoveAnswer(cardIndex, slot int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cardIndex < 0 || cardIndex >= len(c.cards) {
		return fmt.Errorf("%w: %d", ErrInvalidCardIndex, cardIndex)
	}
	if slot < 0 || slot >= game.PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidPlayerIndex, slot)
	}
	if err := c.cards[cardIndex].RemoveAnswer(slot); err != nil {
		return err
	}
	c.touch()
	return nil
}
