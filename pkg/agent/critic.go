package agent

import (
	"context"

	"github.com/growthloopio/growthloop/pkg/logging"
)

// RuleSink receives durable style rules extracted from review feedback.
type RuleSink interface {
	AddRule(text string) error
}

// Critic runs a review stage and distills any embedded directives in
// its feedback into persisted rules. The full feedback text is returned
// unchanged so callers can log or display it.
type Critic struct {
	stage  Stage
	rules  RuleSink
	logger logging.Logger
}

var _ Stage = (*Critic)(nil)

// NewCritic wraps stage with rule extraction into rules.
func NewCritic(stage Stage, rules RuleSink, logger logging.Logger) *Critic {
	return &Critic{stage: stage, rules: rules, logger: logger}
}

func (c *Critic) Run(ctx context.Context, input string) (string, error) {
	feedback, err := c.stage.Run(ctx, input)
	if err != nil {
		return "", err
	}

	for _, rule := range ExtractRules(feedback) {
		if err := c.rules.AddRule(rule); err != nil {
			c.logger.Errorf("critic: failed to persist rule %q: %v", rule, err)
		}
	}
	return feedback, nil
}
