package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duetlabs/duet/backend/internal/model/question"
)

var (
	ErrInvalidAnswerSlot = errors.New("answer slot out of range")
	ErrInvalidQuality    = errors.New("audio quality must be within [0,1]")
)

// PlayerAnswer is one transcribed answer as delivered by the answer source.
// Text and identity are fixed at creation; duration and metadata are
// bookkeeping the transcription layer may fill in later.
type PlayerAnswer struct {
	ID           string            `json:"id"`
	PlayerID     string            `json:"playerId"`
	Text         string            `json:"text"`
	Duration     time.Duration     `json:"duration"`
	AudioQuality float64           `json:"audioQuality"` // [0,1]
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Validate checks the transcription payload.
func (a PlayerAnswer) Validate() error {
	if strings.TrimSpace(a.Text) == "" {
		return fmt.Errorf("answer text is required")
	}
	if a.AudioQuality < 0 || a.AudioQuality > 1 {
		return ErrInvalidQuality
	}
	return nil
}

// CardAnswers pairs one question card with up to one answer per player.
//
// Invariant: IsComplete() == (CompletedAt != nil) == both answers present.
// CompletedAt is set exactly once, when the second answer arrives, and is
// cleared again if an answer is removed.
type CardAnswers struct {
	Question    string                     `json:"question"`
	Category    question.Category          `json:"category"`
	Answers     [PlayerCount]*PlayerAnswer `json:"answers"`
	PresentedAt time.Time                  `json:"presentedAt"`
	CompletedAt *time.Time                 `json:"completedAt,omitempty"`
}

// SetAnswer stores an answer in the given player slot (0 or 1) and marks the
// card complete once both slots are filled.
func (c *CardAnswers) SetAnswer(slot int, answer PlayerAnswer) error {
	if slot < 0 || slot >= PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidAnswerSlot, slot)
	}
	answer.Text = strings.TrimSpace(answer.Text)
	c.Answers[slot] = &answer
	if c.CompletedAt == nil && c.bothAnswered() {
		now := time.Now().UTC()
		c.CompletedAt = &now
	}
	return nil
}

// RemoveAnswer clears the answer in the given slot along with the completion
// timestamp.
func (c *CardAnswers) RemoveAnswer(slot int) error {
	if slot < 0 || slot >= PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidAnswerSlot, slot)
	}
	c.Answers[slot] = nil
	c.CompletedAt = nil
	return nil
}

// IsComplete reports whether both players have answered this card.
func (c *CardAnswers) IsComplete() bool {
	return c.CompletedAt != nil
}

func (c *CardAnswers) bothAnswered() bool {
	for _, a := range c.Answers {
		if a == nil {
			return false
		}
	}
	return true
}
