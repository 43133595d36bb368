// Package analysis defines the typed records produced by the compatibility
// pipeline: full per-request results, the lossy per-card summaries that feed
// synthesis, and the metadata attached to every model exchange.
package analysis

import (
	"math"
	"time"

	"github.com/duetlabs/duet/backend/internal/model/question"
)

// Type selects the prompt template and response schema for a request.
type Type string

const (
	TypeIndividual  Type = "individual"
	TypeComparative Type = "comparative"
	TypeSession     Type = "session"
	TypeCategory    Type = "category"
	TypeCard        Type = "card"
	TypeSynthesis   Type = "synthesis"
)

// Types lists every analysis type; the template engine validates coverage
// against this at startup.
func Types() []Type {
	return []Type{TypeIndividual, TypeComparative, TypeSession, TypeCategory, TypeCard, TypeSynthesis}
}

// Label returns the wording used for the type inside prompts.
func (t Type) Label() string {
	switch t {
	case TypeIndividual:
		return "individual reflection"
	case TypeComparative:
		return "comparative"
	case TypeSession:
		return "whole session"
	case TypeCategory:
		return "category focused"
	case TypeCard:
		return "single card"
	case TypeSynthesis:
		return "session synthesis"
	default:
		return string(t)
	}
}

// Tone is the model's read of the emotional register of an answer pair.
type Tone string

const (
	ToneWarm       Tone = "warm"
	TonePlayful    Tone = "playful"
	ToneReflective Tone = "reflective"
	ToneGuarded    Tone = "guarded"
	ToneTense      Tone = "tense"
	ToneNeutral    Tone = "neutral"
)

// Dimension labels the five compatibility sub-scores.
type Dimension string

const (
	DimensionEmotionalOpenness  Dimension = "emotional_openness"
	DimensionClarity            Dimension = "clarity"
	DimensionEmpathy            Dimension = "empathy"
	DimensionVulnerability      Dimension = "vulnerability"
	DimensionCommunicationStyle Dimension = "communication_style"
)

// Dimensions holds the five sub-scores, each within [0,100].
type Dimensions struct {
	EmotionalOpenness  int `json:"emotionalOpenness"`
	Clarity            int `json:"clarity"`
	Empathy            int `json:"empathy"`
	Vulnerability      int `json:"vulnerability"`
	CommunicationStyle int `json:"communicationStyle"`
}

// AverageScore is the rounded mean of the five dimensions.
func (d Dimensions) AverageScore() int {
	sum := d.EmotionalOpenness + d.Clarity + d.Empathy + d.Vulnerability + d.CommunicationStyle
	return int(math.Round(float64(sum) / 5.0))
}

// ConfidenceLevel grades how certain the model claims an insight is.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// InsightType categorizes an insight for the presentation layer.
type InsightType string

const (
	InsightStrength   InsightType = "strength"
	InsightGrowthArea InsightType = "growth_area"
	InsightPattern    InsightType = "pattern"
	InsightSuggestion InsightType = "suggestion"
)

// Insight is one natural-language observation attached to a result.
type Insight struct {
	ID          string          `json:"id"`
	Type        InsightType     `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Confidence  ConfidenceLevel `json:"confidence"`
	Dimension   *Dimension      `json:"dimension,omitempty"`
}

// Metadata records the exchange that produced a result: the exact prompt,
// the raw model text, timing, and the explicitly configured model version.
type Metadata struct {
	Prompt       string             `json:"prompt"`
	RawResponse  string             `json:"rawResponse"`
	Duration     time.Duration      `json:"duration"`
	ModelVersion string             `json:"modelVersion"`
	Type         Type               `json:"type"`
	Category     *question.Category `json:"category,omitempty"`
	InputLength  int                `json:"inputLength"`
	Seed         *int64             `json:"seed,omitempty"`
}

// Result is the full output of an individual, comparative or synthesis
// analysis. Score is the model's overall reading when it provides one and
// the rounded dimension mean otherwise; every stored value is within
// [0,100].
type Result struct {
	Score      int        `json:"score"` // [0,100]
	Summary    string     `json:"summary"`
	Tone       Tone       `json:"tone"`
	Dimensions Dimensions `json:"dimensions"`
	Insights   []Insight  `json:"insights"`
	Metadata   Metadata   `json:"metadata"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// UserContext is optional background supplied by the caller and folded into
// prompts as free text.
type UserContext struct {
	Age               *int   `json:"age,omitempty"`
	RelationshipStage string `json:"relationshipStage,omitempty"`
	PriorAnalyses     int    `json:"priorAnalyses,omitempty"`
}

// ClampScore forces a score into [0,100]. Out-of-range values from the model
// are clamped per field, never cause for dropping the whole result.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
