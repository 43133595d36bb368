package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duetlabs/duet/backend/internal/analysis/textbudget"
	analysismodel "github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

var (
	// ErrInvalidResponse marks model output that cannot be decoded as the
	// expected structure. This is a contract failure, never retried blindly.
	ErrInvalidResponse = errors.New("invalid model response")

	// ErrInsufficientData marks decodable output missing a required
	// numeric field. A score is never silently defaulted.
	ErrInsufficientData = errors.New("model response missing required fields")
)

// Parser decodes model output into typed results. Out-of-range numeric
// values are clamped per field; only structurally broken or score-less
// output is rejected.
type Parser struct{}

// NewParser returns a ready parser.
func NewParser() *Parser {
	return &Parser{}
}

type dimensionsPayload struct {
	EmotionalOpenness  *int `json:"emotionalOpenness"`
	Clarity            *int `json:"clarity"`
	Empathy            *int `json:"empathy"`
	Vulnerability      *int `json:"vulnerability"`
	CommunicationStyle *int `json:"communicationStyle"`
}

type insightPayload struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
	Dimension   string `json:"dimension"`
}

type resultPayload struct {
	Score      *int               `json:"score"`
	Summary    string             `json:"summary"`
	Tone       string             `json:"tone"`
	Dimensions *dimensionsPayload `json:"dimensions"`
	Insights   []insightPayload   `json:"insights"`
}

type cardPayload struct {
	Answer1Summary    string `json:"answer1Summary"`
	Answer2Summary    string `json:"answer2Summary"`
	Insight           string `json:"insight"`
	CardScore         *int   `json:"cardScore"`
	Player1Score      *int   `json:"player1Score"`
	Player2Score      *int   `json:"player2Score"`
	Tone              string `json:"tone"`
	DominantDimension string `json:"dominantDimension"`
	Aligned           *bool  `json:"aligned"`
}

// ParseResult decodes a full analysis response (individual, comparative,
// session, category or synthesis). A missing overall score is derived as
// the rounded mean of the dimensions; a missing dimension falls back to the
// overall score. Either way every stored value is clamped to [0,100].
func (p *Parser) ParseResult(content string) (analysismodel.Result, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return analysismodel.Result{}, err
	}

	var payload resultPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return analysismodel.Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if payload.Score == nil && payload.Dimensions == nil {
		return analysismodel.Result{}, fmt.Errorf("%w: no score and no dimensions", ErrInsufficientData)
	}

	var baseScore int
	if payload.Score != nil {
		baseScore = analysismodel.ClampScore(*payload.Score)
	} else {
		baseScore = clampedDimensions(payload.Dimensions, 0).AverageScore()
	}

	dims := clampedDimensions(payload.Dimensions, baseScore)

	result := analysismodel.Result{
		Score:      baseScore,
		Summary:    strings.TrimSpace(payload.Summary),
		Tone:       parseTone(payload.Tone),
		Dimensions: dims,
		Insights:   parseInsights(payload.Insights),
		CreatedAt:  time.Now().UTC(),
	}
	return result, nil
}

// ParseCardSummary decodes a stage-1 card response into the bounded summary
// record. Text fields are re-truncated to their budgets even when the model
// ignored them; scores are clamped to [0,100].
func (p *Parser) ParseCardSummary(content, questionText string, category question.Category) (analysismodel.CardSummary, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return analysismodel.CardSummary{}, err
	}

	var payload cardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return analysismodel.CardSummary{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if payload.CardScore == nil {
		return analysismodel.CardSummary{}, fmt.Errorf("%w: cardScore absent", ErrInsufficientData)
	}

	cardScore := analysismodel.ClampScore(*payload.CardScore)
	summary := analysismodel.CardSummary{
		Question:          questionText,
		Category:          category,
		Answer1Summary:    textbudget.Optimize(strings.TrimSpace(payload.Answer1Summary), analysismodel.MaxAnswerSummaryLength),
		Answer2Summary:    textbudget.Optimize(strings.TrimSpace(payload.Answer2Summary), analysismodel.MaxAnswerSummaryLength),
		Insight:           textbudget.Optimize(strings.TrimSpace(payload.Insight), analysismodel.MaxInsightLength),
		CardScore:         cardScore,
		Player1Score:      clampOrDefault(payload.Player1Score, cardScore),
		Player2Score:      clampOrDefault(payload.Player2Score, cardScore),
		Tone:              parseTone(payload.Tone),
		DominantDimension: parseDimension(payload.DominantDimension),
		CreatedAt:         time.Now().UTC(),
	}
	if payload.Aligned != nil {
		summary.Aligned = *payload.Aligned
	} else {
		summary.Aligned = cardScore >= 50
	}
	return summary, nil
}

// extractJSON pulls the outermost JSON object out of the model text, which
// routinely arrives wrapped in prose or code fences.
func extractJSON(content string) ([]byte, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: missing json object", ErrInvalidResponse)
	}
	return []byte(trimmed[start : end+1]), nil
}

// clampedDimensions fills each dimension from the payload, clamped, using
// fallback for any the model omitted.
func clampedDimensions(payload *dimensionsPayload, fallback int) analysismodel.Dimensions {
	pick := func(v *int) int {
		if v == nil {
			return fallback
		}
		return analysismodel.ClampScore(*v)
	}
	if payload == nil {
		payload = &dimensionsPayload{}
	}
	return analysismodel.Dimensions{
		EmotionalOpenness:  pick(payload.EmotionalOpenness),
		Clarity:            pick(payload.Clarity),
		Empathy:            pick(payload.Empathy),
		Vulnerability:      pick(payload.Vulnerability),
		CommunicationStyle: pick(payload.CommunicationStyle),
	}
}

func clampOrDefault(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return analysismodel.ClampScore(*v)
}

func parseTone(raw string) analysismodel.Tone {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "warm":
		return analysismodel.ToneWarm
	case "playful":
		return analysismodel.TonePlayful
	case "reflective":
		return analysismodel.ToneReflective
	case "guarded":
		return analysismodel.ToneGuarded
	case "tense":
		return analysismodel.ToneTense
	case "neutral":
		return analysismodel.ToneNeutral
	default:
		return ""
	}
}

func parseDimension(raw string) analysismodel.Dimension {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "emotional_openness":
		return analysismodel.DimensionEmotionalOpenness
	case "clarity":
		return analysismodel.DimensionClarity
	case "empathy":
		return analysismodel.DimensionEmpathy
	case "vulnerability":
		return analysismodel.DimensionVulnerability
	case "communication_style":
		return analysismodel.DimensionCommunicationStyle
	default:
		return analysismodel.DimensionCommunicationStyle
	}
}

func parseInsights(payloads []insightPayload) []analysismodel.Insight {
	out := make([]analysismodel.Insight, 0, len(payloads))
	for _, p := range payloads {
		title := strings.TrimSpace(p.Title)
		description := strings.TrimSpace(p.Description)
		if title == "" && description == "" {
			continue
		}
		insight := analysismodel.Insight{
			ID:          uuid.NewString(),
			Type:        parseInsightType(p.Type),
			Title:       title,
			Description: description,
			Confidence:  parseConfidence(p.Confidence),
		}
		if dim := strings.TrimSpace(p.Dimension); dim != "" {
			d := parseDimension(dim)
			insight.Dimension = &d
		}
		out = append(out, insight)
	}
	return out
}

func parseInsightType(raw string) analysismodel.InsightType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strength":
		return analysismodel.InsightStrength
	case "growth_area":
		return analysismodel.InsightGrowthArea
	case "suggestion":
		return analysismodel.InsightSuggestion
	default:
		return analysismodel.InsightPattern
	}
}

func parseConfidence(raw string) analysismodel.ConfidenceLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return analysismodel.ConfidenceLow
	case "high":
		return analysismodel.ConfidenceHigh
	default:
		return analysismodel.ConfidenceMedium
	}
}
