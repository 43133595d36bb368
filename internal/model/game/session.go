package game

import (
	"time"

	"github.com/duetlabs/duet/backend/internal/model/question"
)

// GamePhase is the coarse lifecycle of a session.
type GamePhase string

const (
	PhaseSetup    GamePhase = "setup"
	PhasePlaying  GamePhase = "playing"
	PhaseComplete GamePhase = "complete"
)

// ConversationMode selects the flavor of deck and analysis framing. It must
// be chosen before the game can start.
type ConversationMode string

const (
	ModeFirstDate ConversationMode = "first-date"
	ModeCouple    ConversationMode = "couple"
	ModeDeepDive  ConversationMode = "deep-dive"
)

// Valid reports whether m is a known conversation mode.
func (m ConversationMode) Valid() bool {
	switch m {
	case ModeFirstDate, ModeCouple, ModeDeepDive:
		return true
	}
	return false
}

// TurnState describes the active turn. Category stays nil until the current
// player picks one; Answered flips exactly once per turn.
type TurnState struct {
	CurrentPlayerIndex int                `json:"currentPlayerIndex"`
	StartedAt          time.Time          `json:"startedAt"`
	Category           *question.Category `json:"category,omitempty"`
	Answered           bool               `json:"answered"`
}

// GameSession is the read-only snapshot of one two-player session as exposed
// to handlers and the presentation layer. All mutation happens inside the
// game service's coordinator; callers only ever see copies.
//
// Invariant: RoundCounter == TurnCounter / PlayerCount.
type GameSession struct {
	ID             string              `json:"id"`
	Players        [PlayerCount]Player `json:"players"`
	Phase          GamePhase           `json:"phase"`
	Mode           ConversationMode    `json:"mode,omitempty"`
	Turn           TurnState           `json:"turn"`
	TurnCounter    int                 `json:"turnCounter"`
	RoundCounter   int                 `json:"roundCounter"`
	Cards          []CardAnswers       `json:"cards"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastActivityAt time.Time           `json:"lastActivityAt"`
	Metadata       map[string]string   `json:"metadata,omitempty"`
}
