package analysis

import (
	"errors"
	"strings"
	"testing"

	analysismodel "github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

func TestParseResultClampsScores(t *testing.T) {
	p := NewParser()

	content := `Here is my analysis:
{"score": 137, "summary": "Strong pair", "tone": "warm", "dimensions": {"emotionalOpenness": -5, "clarity": 80, "empathy": 250, "vulnerability": 60, "communicationStyle": 70}}`

	result, err := p.ParseResult(content)
	if err != nil {
		t.Fatalf("ParseResult err: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("score not clamped: %d", result.Score)
	}
	if result.Dimensions.EmotionalOpenness != 0 {
		t.Fatalf("negative dimension not clamped: %d", result.Dimensions.EmotionalOpenness)
	}
	if result.Dimensions.Empathy != 100 {
		t.Fatalf("oversized dimension not clamped: %d", result.Dimensions.Empathy)
	}
	if result.Tone != analysismodel.ToneWarm {
		t.Fatalf("tone not parsed: %q", result.Tone)
	}
}

func TestParseResultDerivesScoreFromDimensions(t *testing.T) {
	p := NewParser()

	content := `{"summary": "ok", "dimensions": {"emotionalOpenness": 60, "clarity": 70, "empathy": 80, "vulnerability": 50, "communicationStyle": 90}}`
	result, err := p.ParseResult(content)
	if err != nil {
		t.Fatalf("ParseResult err: %v", err)
	}
	if result.Score != 70 {
		t.Fatalf("expected rounded mean 70, got %d", result.Score)
	}
}

func TestParseResultFillsMissingDimensionsFromScore(t *testing.T) {
	p := NewParser()

	result, err := p.ParseResult(`{"score": 55, "summary": "thin"}`)
	if err != nil {
		t.Fatalf("ParseResult err: %v", err)
	}
	if result.Dimensions.Clarity != 55 || result.Dimensions.Empathy != 55 {
		t.Fatalf("dimensions should fall back to overall score: %+v", result.Dimensions)
	}
}

func TestParseResultRejectsProseOnly(t *testing.T) {
	p := NewParser()

	_, err := p.ParseResult("I cannot produce the requested structure.")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestParseResultRejectsScorelessObject(t *testing.T) {
	p := NewParser()

	_, err := p.ParseResult(`{"summary": "nice couple"}`)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestParseResultExtractsFencedJSON(t *testing.T) {
	p := NewParser()

	content := "```json\n{\"score\": 72, \"summary\": \"solid\"}\n```"
	result, err := p.ParseResult(content)
	if err != nil {
		t.Fatalf("ParseResult err: %v", err)
	}
	if result.Score != 72 {
		t.Fatalf("unexpected score: %d", result.Score)
	}
}

func TestParseCardSummary(t *testing.T) {
	p := NewParser()

	content := `{"answer1Summary": "Wants a quiet shared morning", "answer2Summary": "Wants travel first", "insight": "Aligned on closeness, split on pace", "cardScore": 68, "player1Score": 72, "player2Score": 64, "tone": "reflective", "dominantDimension": "vulnerability", "aligned": true}`
	summary, err := p.ParseCardSummary(content, "Where do you see yourselves in ten years?", question.CategoryFuture)
	if err != nil {
		t.Fatalf("ParseCardSummary err: %v", err)
	}
	if summary.CardScore != 68 || summary.Player1Score != 72 || summary.Player2Score != 64 {
		t.Fatalf("unexpected scores: %+v", summary)
	}
	if !summary.Aligned {
		t.Fatal("aligned flag lost")
	}
	if summary.Tone != analysismodel.ToneReflective {
		t.Fatalf("unexpected tone: %q", summary.Tone)
	}
	if summary.DominantDimension != analysismodel.DimensionVulnerability {
		t.Fatalf("unexpected dimension: %q", summary.DominantDimension)
	}
}

func TestParseCardSummaryClampsScores(t *testing.T) {
	p := NewParser()

	content := `{"cardScore": 137, "player1Score": -5, "player2Score": 250}`
	summary, err := p.ParseCardSummary(content, "Q", question.CategoryMemories)
	if err != nil {
		t.Fatalf("ParseCardSummary err: %v", err)
	}
	if summary.CardScore != 100 {
		t.Fatalf("137 must clamp to 100, got %d", summary.CardScore)
	}
	if summary.Player1Score != 0 {
		t.Fatalf("-5 must clamp to 0, got %d", summary.Player1Score)
	}
	if summary.Player2Score != 100 {
		t.Fatalf("250 must clamp to 100, got %d", summary.Player2Score)
	}
}

func TestParseCardSummaryRequiresCardScore(t *testing.T) {
	p := NewParser()

	_, err := p.ParseCardSummary(`{"insight": "no score here"}`, "Q", question.CategoryValues)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestParseCardSummaryReTruncatesOversizedText(t *testing.T) {
	p := NewParser()

	long := strings.Repeat("insightful words ", 20)
	content := `{"insight": "` + long + `", "cardScore": 50}`
	summary, err := p.ParseCardSummary(content, "Q", question.CategoryGrowth)
	if err != nil {
		t.Fatalf("ParseCardSummary err: %v", err)
	}
	if n := len([]rune(summary.Insight)); n > analysismodel.MaxInsightLength {
		t.Fatalf("insight has %d runes, budget is %d", n, analysismodel.MaxInsightLength)
	}
}

func TestParseCardSummaryDefaultsPlayerScores(t *testing.T) {
	p := NewParser()

	summary, err := p.ParseCardSummary(`{"cardScore": 40}`, "Q", question.CategoryIntimacy)
	if err != nil {
		t.Fatalf("ParseCardSummary err: %v", err)
	}
	if summary.Player1Score != 40 || summary.Player2Score != 40 {
		t.Fatalf("player scores should default to card score: %+v", summary)
	}
	if summary.Aligned {
		t.Fatal("aligned should default false below 50")
	}
	if summary.Tone != "" {
		t.Fatalf("absent tone should stay empty for the heuristic fallback, got %q", summary.Tone)
	}
}
