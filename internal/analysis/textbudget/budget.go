// Package textbudget trims free text into fixed character budgets while
// preferring sentence and word boundaries over mid-word cuts. Every
// size-bounded field in an analysis prompt goes through Optimize.
package textbudget

import "strings"

const ellipsis = "..."

// Optimize returns text unchanged when it fits within maxLength runes.
// Otherwise it keeps as many whole sentences as fit, falls back to whole
// words, and as a last resort hard-truncates, always appending "...".
// The returned string never exceeds maxLength runes.
func Optimize(text string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if runeLen(text) <= maxLength {
		return text
	}

	// A budget too small to hold any content still signals the cut: the
	// result is the ellipsis itself, capped to maxLength.
	budget := maxLength - len(ellipsis)
	if budget <= 0 {
		return hardTruncate(ellipsis, maxLength)
	}

	if kept := accumulate(strings.Split(text, ". "), ". ", budget); kept != "" {
		return kept + ellipsis
	}

	if kept := accumulate(strings.Fields(text), " ", budget); kept != "" {
		return kept + ellipsis
	}

	// A single token exceeds the whole budget.
	return hardTruncate(text, budget) + ellipsis
}

// accumulate greedily joins parts with sep while the result stays within
// budget runes. Returns "" when not even the first part fits.
func accumulate(parts []string, sep string, budget int) string {
	var builder strings.Builder
	length := 0
	for _, part := range parts {
		if part == "" {
			continue
		}
		partLen := runeLen(part)
		candidate := length + partLen
		if length > 0 {
			candidate += runeLen(sep)
		}
		if candidate > budget {
			break
		}
		if length > 0 {
			builder.WriteString(sep)
		}
		builder.WriteString(part)
		length = candidate
	}
	return builder.String()
}

func hardTruncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func runeLen(s string) int {
	return len([]rune(s))
}
