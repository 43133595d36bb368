package analysis

import (
	"fmt"
	"time"

	"github.com/duetlabs/duet/backend/internal/analysis/textbudget"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

// Field budgets for the lossy card projection. Sized so that a full session
// of summaries still fits one synthesis prompt.
const (
	MaxAnswerSummaryLength = 50
	MaxInsightLength       = 100
	compactInsightLength   = 40
)

// CardSummary is the stage-1 output for one answered card: a deliberately
// lossy, size-bounded projection of a full analysis result.
type CardSummary struct {
	Question          string            `json:"question"`
	Category          question.Category `json:"category"`
	Answer1Summary    string            `json:"answer1Summary"` // <= 50 runes
	Answer2Summary    string            `json:"answer2Summary"` // <= 50 runes
	Insight           string            `json:"insight"`        // <= 100 runes
	CardScore         int               `json:"cardScore"`      // [0,100]
	Player1Score      int               `json:"player1Score"`   // [0,100]
	Player2Score      int               `json:"player2Score"`   // [0,100]
	Tone              Tone              `json:"tone"`
	DominantDimension Dimension         `json:"dominantDimension"`
	Aligned           bool              `json:"aligned"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// CompactRepresentation renders the summary as the short fragment embedded
// in the synthesis digest: "Q{score}: {insight}", insight capped at 40
// runes. Keeping this bounded is what makes the stage-2 prompt scale with
// card count instead of raw answer length.
func (s CardSummary) CompactRepresentation() string {
	return fmt.Sprintf("Q%d: %s", s.CardScore, textbudget.Optimize(s.Insight, compactInsightLength))
}
