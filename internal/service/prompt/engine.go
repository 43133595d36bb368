// Package prompt owns everything between a domain request and the final
// prompt string handed to the model: the per-stage templates, variable
// substitution, placeholder cleanup, and the size budgets that keep every
// prompt inside its context budget.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/duetlabs/duet/backend/internal/model/analysis"
)

// ErrTemplateMissing indicates a stage without a registered template. This
// is a configuration error, caught by NewEngine before any request runs.
var ErrTemplateMissing = fmt.Errorf("prompt template missing")

// Placeholders are {{identifier}}, case-sensitive, ASCII identifiers only.
var placeholderPattern = regexp.MustCompile(`\{\{[A-Za-z_][A-Za-z0-9_]*\}\}`)

// Engine holds one template per analysis stage and performs substitution and
// cleanup. Stages form a closed enumeration; the constructor refuses to
// start with any stage uncovered.
type Engine struct {
	templates map[analysis.Type]string
}

// NewEngine builds an engine over the built-in templates and validates that
// every analysis stage has one.
func NewEngine() (*Engine, error) {
	e := &Engine{templates: defaultTemplates()}
	for _, t := range analysis.Types() {
		if strings.TrimSpace(e.templates[t]) == "" {
			return nil, fmt.Errorf("%w: stage %q", ErrTemplateMissing, t)
		}
	}
	return e, nil
}

// Template returns the template text for the given stage.
func (e *Engine) Template(t analysis.Type) (string, error) {
	tmpl, ok := e.templates[t]
	if !ok || strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("%w: stage %q", ErrTemplateMissing, t)
	}
	return tmpl, nil
}

// Render substitutes every {{key}} present in vars, blanks any placeholder
// that remains unresolved, and normalizes whitespace: lines left empty are
// merged into blank runs, and every blank run collapses to a single blank
// line. The result never contains a dangling placeholder or a blank-line
// run longer than one.
func (e *Engine) Render(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	// Unresolved placeholders are blanked and dropped, uniformly on every
	// build path.
	out = placeholderPattern.ReplaceAllString(out, "")

	return collapseBlankLines(out)
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
