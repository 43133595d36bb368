// Package tone provides a keyword heuristic for reading the emotional
// register of an answer pair. It backs up the model: when a parsed result
// omits tone, the pipeline falls back to this instead of guessing a score.
package tone

import "strings"

// Label mirrors the tone vocabulary of the analysis model layer.
type Label string

const (
	Neutral    Label = "neutral"
	Warm       Label = "warm"
	Playful    Label = "playful"
	Reflective Label = "reflective"
	Guarded    Label = "guarded"
	Tense      Label = "tense"
)

// Decision carries the detected tone and its raw keyword score.
type Decision struct {
	Tone  Label
	Score int
}

var keywordBuckets = map[Label][]string{
	Warm: {
		"love", "grateful", "thankful", "safe", "home", "warm", "cherish",
		"adore", "comfort", "close", "together", "us", "holding", "gentle",
	},
	Playful: {
		"laugh", "laughed", "funny", "joke", "silly", "tease", "haha", "lol",
		"giggle", "ridiculous", "game", "playful", "dance",
	},
	Reflective: {
		"realize", "realized", "learned", "looking back", "i think", "wonder",
		"maybe", "grew", "changed", "understand", "used to", "over time",
	},
	Guarded: {
		"rather not", "not sure i want", "private", "hard to say", "complicated",
		"don't know", "dont know", "it depends", "fine", "whatever", "i guess",
	},
	Tense: {
		"angry", "frustrated", "annoyed", "argue", "fight", "hurt", "tired of",
		"always", "never listens", "fed up", "resent", "blame",
	},
}

// exclamation marks push playful/warm readings the way emphatic speech does.
var punctuationBoost = map[Label]int{
	Playful: 2,
	Warm:    1,
}

// Analyze scores both answers of a card and returns the dominant tone.
// Empty or unmatched text yields Neutral with a zero score.
func Analyze(answer1, answer2 string) Decision {
	first := scoreText(answer1)
	second := scoreText(answer2)

	best := first
	if second.Score > best.Score {
		best = second
	}
	if best.Score == 0 {
		return Decision{Tone: Neutral}
	}
	return best
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Tone: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		scores[Playful] += exclamations * punctuationBoost[Playful]
		scores[Warm] += punctuationBoost[Warm]
	}

	best := Neutral
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			best = label
		}
	}

	if bestScore == 0 {
		return Decision{Tone: Neutral}
	}
	return Decision{Tone: best, Score: bestScore}
}
