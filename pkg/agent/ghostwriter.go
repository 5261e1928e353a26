package agent

import (
	"context"
	"strings"
)

// RuleSource lists the accumulated style rules.
type RuleSource interface {
	Rules() []string
}

// Ghostwriter prepends the persisted rule set to every input before
// handing it to the underlying draft stage, so past review feedback
// steers each new draft.
type Ghostwriter struct {
	stage Stage
	rules RuleSource
}

var _ Stage = (*Ghostwriter)(nil)

// NewGhostwriter wraps stage with rule injection from rules.
func NewGhostwriter(stage Stage, rules RuleSource) *Ghostwriter {
	return &Ghostwriter{stage: stage, rules: rules}
}

func (g *Ghostwriter) Run(ctx context.Context, input string) (string, error) {
	if rules := g.rules.Rules(); len(rules) > 0 {
		var b strings.Builder
		b.WriteString(input)
		b.WriteString("\n\nCRITICAL FEEDBACK FROM PAST POSTS (DO NOT IGNORE):")
		for _, r := range rules {
			b.WriteString("\n- ")
			b.WriteString(r)
		}
		input = b.String()
	}
	return g.stage.Run(ctx, input)
}
