package game

import (
	"errors"
	"strings"
	"testing"
)

func TestPlayerValidate(t *testing.T) {
	cases := []struct {
		name    string
		player  Player
		wantErr bool
	}{
		{"valid", Player{Name: "Alex", Number: 1}, false},
		{"valid with apostrophe", Player{Name: "O'Brien", Number: 2}, false},
		{"valid with hyphen", Player{Name: "Jean-Luc", Number: 1}, false},
		{"valid non-latin", Player{Name: "李雷", Number: 2}, false},
		{"empty", Player{Name: "   ", Number: 1}, true},
		{"too short", Player{Name: "A", Number: 1}, true},
		{"too long", Player{Name: strings.Repeat("a", 51), Number: 1}, true},
		{"digits", Player{Name: "Alex99", Number: 1}, true},
		{"bad number", Player{Name: "Alex", Number: 3}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.player.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidPlayerData) {
				t.Fatalf("expected ErrInvalidPlayerData, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlayerNormalizedDefaultsPronouns(t *testing.T) {
	p := Player{Name: "  Sam  "}.Normalized()
	if p.Name != "Sam" {
		t.Fatalf("name not trimmed: %q", p.Name)
	}
	if p.Pronouns != PronounsTheyThem {
		t.Fatalf("unset pronouns must default to they/them, got %+v", p.Pronouns)
	}

	q := Player{Name: "Sam", Pronouns: PronounsHeHim}.Normalized()
	if q.Pronouns != PronounsHeHim {
		t.Fatalf("explicit pronouns must survive normalization, got %+v", q.Pronouns)
	}
}
