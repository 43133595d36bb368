package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/duetlabs/duet/backend/internal/analysis/textbudget"
	"github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

// Field budgets for prompt-embedded text. The card prompt is the
// per-request cost control: with a 100-rune question and two 200-rune
// answers the rendered card prompt stays under CardPromptCeiling.
const (
	MaxQuestionLength  = 100
	MaxAnswerLength    = 200
	CardPromptCeiling  = 1000
	defaultCulturalCtx = "No specific cultural framing; use a generally neutral, contemporary reading."
	noUserContext      = "No additional context was provided."
)

// DetailLevel selects how deep the model is asked to go.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDeep     DetailLevel = "deep"
)

// Label returns the prompt wording for the detail level.
func (d DetailLevel) Label() string {
	switch d {
	case DetailBrief:
		return "brief, top-level observations only"
	case DetailDeep:
		return "deep, with supporting evidence from the text"
	default:
		return "standard depth"
	}
}

// Request is the domain-side description of a full (non-card) analysis.
type Request struct {
	Type            analysis.Type
	Question        string
	Response        string // individual / session / category
	ResponseA       string // comparative
	ResponseB       string // comparative
	Category        *question.Category
	Context         *analysis.UserContext
	FocusAreas      []string
	DetailLevel     DetailLevel
	CulturalContext string
	Seed            *int64
}

// Builder turns domain requests into finished prompt strings. All three
// request shapes (full, card, synthesis) funnel through the engine's
// substitution and cleanup.
type Builder struct {
	engine *Engine
}

// NewBuilder wraps the given engine.
func NewBuilder(engine *Engine) *Builder {
	return &Builder{engine: engine}
}

// Build renders an individual, comparative, session or category prompt.
func (b *Builder) Build(req Request) (string, error) {
	tmpl, err := b.engine.Template(req.Type)
	if err != nil {
		return "", err
	}
	return b.engine.Render(tmpl, b.variables(req)), nil
}

// BuildCard renders the compact stage-1 prompt for one answered card. The
// question is capped at 100 runes and each answer at 200, keeping the whole
// prompt under CardPromptCeiling.
func (b *Builder) BuildCard(questionText string, category question.Category, answer1, answer2 string) (string, error) {
	tmpl, err := b.engine.Template(analysis.TypeCard)
	if err != nil {
		return "", err
	}

	vars := map[string]string{
		"question":                 textbudget.Optimize(strings.TrimSpace(questionText), MaxQuestionLength),
		"category":                 category.DisplayName(),
		"answer1":                  textbudget.Optimize(strings.TrimSpace(answer1), MaxAnswerLength),
		"answer2":                  textbudget.Optimize(strings.TrimSpace(answer2), MaxAnswerLength),
		"card_format_instructions": cardFormatInstructions,
	}
	return b.engine.Render(tmpl, vars), nil
}

// BuildSynthesis renders the stage-2 prompt around the aggregator's digest.
// Each analyzed card contributes one bounded "Card {n}: {compact}" line to
// the digest, so prompt size scales with card count, not raw answer length.
func (b *Builder) BuildSynthesis(digest string, cardCount int, seed *int64) (string, error) {
	tmpl, err := b.engine.Template(analysis.TypeSynthesis)
	if err != nil {
		return "", err
	}

	vars := map[string]string{
		"card_digest":         digest,
		"card_count":          strconv.Itoa(cardCount),
		"seed_instruction":    seedInstruction(seed),
		"format_instructions": formatInstructions,
	}
	return b.engine.Render(tmpl, vars), nil
}

// variables derives the full substitution map for a request. Missing
// optional inputs produce their documented fixed renderings; keys for the
// other request shapes are simply absent and scrubbed by Render.
func (b *Builder) variables(req Request) map[string]string {
	vars := map[string]string{
		"question":            strings.TrimSpace(req.Question),
		"response":            strings.TrimSpace(req.Response),
		"response_a":          strings.TrimSpace(req.ResponseA),
		"response_b":          strings.TrimSpace(req.ResponseB),
		"response_length":     strconv.Itoa(len([]rune(strings.TrimSpace(req.Response)))),
		"analysis_type":       req.Type.Label(),
		"user_context":        renderUserContext(req.Context),
		"focus_areas":         renderFocusAreas(req.FocusAreas),
		"detail_level":        req.DetailLevel.Label(),
		"cultural_context":    renderCulturalContext(req.CulturalContext),
		"format_instructions": formatInstructions,
		"seed_instruction":    seedInstruction(req.Seed),
	}

	if req.Category != nil {
		vars["category"] = req.Category.DisplayName()
		vars["category_guidance"] = guidanceFor(*req.Category)
	} else {
		vars["category"] = "general"
		vars["category_guidance"] = defaultCategoryGuidance
	}

	return vars
}

func renderUserContext(ctx *analysis.UserContext) string {
	if ctx == nil {
		return noUserContext
	}

	parts := make([]string, 0, 3)
	if ctx.Age != nil {
		parts = append(parts, fmt.Sprintf("age %d", *ctx.Age))
	}
	if stage := strings.TrimSpace(ctx.RelationshipStage); stage != "" {
		parts = append(parts, "relationship stage: "+stage)
	}
	if ctx.PriorAnalyses > 0 {
		parts = append(parts, fmt.Sprintf("%d prior analyses", ctx.PriorAnalyses))
	}
	if len(parts) == 0 {
		return noUserContext
	}
	return strings.Join(parts, ", ")
}

func renderFocusAreas(areas []string) string {
	cleaned := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return "overall compatibility"
	}
	return strings.Join(cleaned, ", ")
}

func renderCulturalContext(ctx string) string {
	if ctx = strings.TrimSpace(ctx); ctx != "" {
		return ctx
	}
	return defaultCulturalCtx
}

func seedInstruction(seed *int64) string {
	if seed == nil {
		return ""
	}
	return fmt.Sprintf("Use deterministic seed %d for any sampling decisions.", *seed)
}
