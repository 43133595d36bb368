package prompt

import (
	"github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/question"
)

// formatInstructions is the fixed response-contract block appended to every
// full-result prompt. The parser depends on this shape.
const formatInstructions = `Respond with only a JSON object, no prose around it, using exactly these fields:
{"score": 0-100, "summary": "...", "tone": "warm|playful|reflective|guarded|tense|neutral", "dimensions": {"emotionalOpenness": 0-100, "clarity": 0-100, "empathy": 0-100, "vulnerability": 0-100, "communicationStyle": 0-100}, "insights": [{"type": "strength|growth_area|pattern|suggestion", "title": "...", "description": "...", "confidence": "low|medium|high", "dimension": "emotional_openness|clarity|empathy|vulnerability|communication_style"}]}`

// cardFormatInstructions is the compact contract for stage-1 card analysis.
// It is deliberately terse: the rendered card prompt must stay under the
// builder's CardPromptCeiling even with every field at its budget.
const cardFormatInstructions = `Reply with only JSON: {"answer1Summary":"max 50 chars","answer2Summary":"max 50 chars","insight":"max 100 chars","cardScore":0-100,"player1Score":0-100,"player2Score":0-100,"tone":"warm|playful|reflective|guarded|tense|neutral","dominantDimension":"emotional_openness|clarity|empathy|vulnerability|communication_style","aligned":true|false}`

func defaultTemplates() map[analysis.Type]string {
	return map[analysis.Type]string{
		analysis.TypeIndividual: `You are a relationship-communication analyst reviewing one transcribed answer from a {{analysis_type}} conversation exercise.

Question ({{category}}): {{question}}

Answer ({{response_length}} characters):
{{response}}

About the speaker: {{user_context}}
Cultural framing: {{cultural_context}}
Focus on: {{focus_areas}}
Depth of analysis: {{detail_level}}
{{seed_instruction}}

Assess how openly, clearly and vulnerably the speaker communicates.
{{format_instructions}}`,

		analysis.TypeComparative: `You are a relationship-compatibility analyst comparing how two partners answered the same question.

Question ({{category}}): {{question}}

Partner 1 answered:
{{response_a}}

Partner 2 answered:
{{response_b}}

About the couple: {{user_context}}
Cultural framing: {{cultural_context}}
Focus on: {{focus_areas}}
Depth of analysis: {{detail_level}}
{{seed_instruction}}

Weigh where the answers align, where they diverge, and what that suggests about how this pair communicates.
{{format_instructions}}`,

		analysis.TypeSession: `You are a relationship-compatibility analyst reviewing a full conversation session between two partners.

Transcript:
{{response}}

About the couple: {{user_context}}
Cultural framing: {{cultural_context}}
Focus on: {{focus_areas}}
Depth of analysis: {{detail_level}}
{{seed_instruction}}

Assess the session as a whole rather than any single exchange.
{{format_instructions}}`,

		analysis.TypeCategory: `You are a relationship-compatibility analyst focusing on the "{{category}}" theme.

{{category_guidance}}

Question: {{question}}

Answer ({{response_length}} characters):
{{response}}

About the speaker: {{user_context}}
Cultural framing: {{cultural_context}}
Depth of analysis: {{detail_level}}
{{seed_instruction}}

{{format_instructions}}`,

		analysis.TypeCard: `Analyze one answered card from a two-player compatibility conversation.

Question ({{category}}): {{question}}
Player 1: {{answer1}}
Player 2: {{answer2}}

{{card_format_instructions}}`,

		analysis.TypeSynthesis: `You are producing the final compatibility reading for a completed session. Below are compact per-card readings, one per answered card. Cards marked unavailable were skipped.

{{card_digest}}

Cards analyzed: {{card_count}}
{{seed_instruction}}

Synthesize an overall compatibility assessment from these readings. Do not invent detail beyond them.
{{format_instructions}}`,
	}
}

// categoryGuidance carries one fixed guidance paragraph per question
// category for the category-focused stage.
var categoryGuidance = map[question.Category]string{
	question.CategoryValues:    "Pay attention to stated principles and whether the speaker distinguishes inherited beliefs from chosen ones.",
	question.CategoryMemories:  "Pay attention to how vividly shared history is recalled and whether the partner appears as an active figure in it.",
	question.CategoryFuture:    "Pay attention to whether imagined futures include the partner concretely or stay abstract and solitary.",
	question.CategoryDailyLife: "Pay attention to the practical texture of the answer: routines, needs stated plainly, and expectations of the partner.",
	question.CategoryGrowth:    "Pay attention to ownership of change: does the speaker credit the relationship, themselves, or circumstance.",
	question.CategoryIntimacy:  "Pay attention to comfort with closeness and the language used around being seen, touched, or withdrawn from.",
}

const defaultCategoryGuidance = "Pay attention to how directly the answer engages the question and what it reveals about the speaker's way of relating."

// guidanceFor returns the category guidance paragraph, with a generic
// fallback for categories without a dedicated one.
func guidanceFor(c question.Category) string {
	if g, ok := categoryGuidance[c]; ok {
		return g
	}
	return defaultCategoryGuidance
}
