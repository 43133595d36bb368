package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPlayerData marks player payloads that fail validation.
var ErrInvalidPlayerData = errors.New("invalid player data")

const (
	// PlayerCount is fixed for the whole system: every session seats
	// exactly two players.
	PlayerCount = 2

	minNameLength = 2
	maxNameLength = 50
)

// Display names allow letters (any script), whitespace, apostrophes and
// hyphens only.
var namePattern = regexp.MustCompile(`^[\p{L}\s'’-]+$`)

// PronounSet carries the grammatical variants used when a prompt talks about
// a player in the third person.
type PronounSet struct {
	Subject    string `json:"subject"`    // she / he / they
	Object     string `json:"object"`     // her / him / them
	Possessive string `json:"possessive"` // her / his / their
}

// Enumerated pronoun variants offered at setup. Custom sets are accepted as
// long as all three fields are present.
var (
	PronounsSheHer   = PronounSet{Subject: "she", Object: "her", Possessive: "her"}
	PronounsHeHim    = PronounSet{Subject: "he", Object: "him", Possessive: "his"}
	PronounsTheyThem = PronounSet{Subject: "they", Object: "them", Possessive: "their"}
)

// Player is one of the two participants of a session. Identity is fixed at
// creation; name, pronouns and metadata may be replaced through the
// coordinator's UpdatePlayer operation.
type Player struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Pronouns PronounSet        `json:"pronouns"`
	Number   int               `json:"number"` // 1 or 2
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks the player payload against the setup rules: trimmed name
// of 2-50 characters from the allowed set, and a player number of 1 or 2.
func (p Player) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlayerData)
	}
	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidPlayerData, minNameLength, maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: name contains unsupported characters", ErrInvalidPlayerData)
	}
	if p.Number != 1 && p.Number != 2 {
		return fmt.Errorf("%w: player number must be 1 or 2", ErrInvalidPlayerData)
	}
	return nil
}

// Normalized returns a copy with the display name trimmed and pronouns
// defaulted to they/them when unset.
func (p Player) Normalized() Player {
	p.Name = strings.TrimSpace(p.Name)
	if p.Pronouns == (PronounSet{}) {
		p.Pronouns = PronounsTheyThem
	}
	return p
}
