package analysis

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	analysismodel "github.com/duetlabs/duet/backend/internal/model/analysis"
)

var ErrSlotOutOfRange = errors.New("card slot out of range")

// Aggregator collects one stage-1 summary per answered card, keyed by card
// order. Insertion is safe under concurrent card analyses; a re-analysis of
// the same card replaces its slot. A card whose analysis failed is marked
// unavailable so it counts toward completeness without feeding the digest.
type Aggregator struct {
	mu    sync.Mutex
	slots []slot
}

type slot struct {
	summary     *analysismodel.CardSummary
	unavailable bool
}

// NewAggregator sizes the roster for the number of cards expected in the
// session.
func NewAggregator(expectedCards int) *Aggregator {
	if expectedCards < 0 {
		expectedCards = 0
	}
	return &Aggregator{slots: make([]slot, expectedCards)}
}

// Put stores the summary for the given card slot, replacing any prior
// summary or unavailable mark for that slot.
func (a *Aggregator) Put(index int, summary analysismodel.CardSummary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	a.slots[index] = slot{summary: &summary}
	return nil
}

// MarkUnavailable records that the card's analysis failed. The slot counts
// toward completeness but is excluded from the digest.
func (a *Aggregator) MarkUnavailable(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	a.slots[index] = slot{unavailable: true}
	return nil
}

// Count returns the number of successfully summarized cards.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, s := range a.slots {
		if s.summary != nil {
			n++
		}
	}
	return n
}

// Complete reports whether every expected card has been decided, either
// summarized or marked unavailable. Synthesis must not start before this.
func (a *Aggregator) Complete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.slots {
		if s.summary == nil && !s.unavailable {
			return false
		}
	}
	return true
}

// Summaries returns the successful summaries in card order.
func (a *Aggregator) Summaries() []analysismodel.CardSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]analysismodel.CardSummary, 0, len(a.slots))
	for _, s := range a.slots {
		if s.summary != nil {
			out = append(out, *s.summary)
		}
	}
	return out
}

// Unavailable returns the card indices whose analysis failed.
func (a *Aggregator) Unavailable() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, 0)
	for i, s := range a.slots {
		if s.unavailable {
			out = append(out, i)
		}
	}
	return out
}

// Digest renders the bounded synthesis input: one "Card {n}: {compact}"
// line per summarized card, numbered by original card order and joined with
// blank lines. Its size is card count times a small constant.
func (a *Aggregator) Digest() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	lines := make([]string, 0, len(a.slots))
	for i, s := range a.slots {
		if s.summary == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("Card %d: %s", i+1, s.summary.CompactRepresentation()))
	}
	return strings.Join(lines, "\n\n")
}
