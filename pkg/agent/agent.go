// Package agent wraps single text-generation calls in named stages with
// a bounded retry policy, and composes stages with memory-backed rule
// extraction and injection.
package agent

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/growthloopio/growthloop/pkg/ai"
	"github.com/growthloopio/growthloop/pkg/logging"
)

// Stage maps an input string to an output string, or fails.
type Stage interface {
	Run(ctx context.Context, input string) (string, error)
}

// RetryPolicy bounds retries on rate-limited generation calls.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryPolicy matches the backoff schedule the pipeline runs
// with in production: 3 attempts, 5s/10s waits plus up to 1s jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		MaxJitter:   time.Second,
	}
}

// Agent is a single generation stage: a fixed system prompt plus one
// call to the text-generation client per input. It holds no mutable
// state; logging is its only side effect.
type Agent struct {
	name         string
	role         string
	systemPrompt string
	client       ai.Client
	policy       RetryPolicy
	logger       logging.Logger
	sleep        func(ctx context.Context, d time.Duration) error
	jitter       func(max time.Duration) time.Duration
	retryNotify  func()
}

var _ Stage = (*Agent)(nil)

// Option customizes an Agent.
type Option func(*Agent)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Agent) { a.policy = p }
}

// WithSleep replaces the inter-retry sleep, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Agent) { a.sleep = fn }
}

// WithJitter replaces the jitter source, for tests.
func WithJitter(fn func(max time.Duration) time.Duration) Option {
	return func(a *Agent) { a.jitter = fn }
}

// WithRetryNotify registers a callback invoked once per rate-limit
// retry, before the backoff wait.
func WithRetryNotify(fn func()) Option {
	return func(a *Agent) { a.retryNotify = fn }
}

// New creates a named generation stage around client.
func New(name, role, systemPrompt string, client ai.Client, logger logging.Logger, opts ...Option) *Agent {
	a := &Agent{
		name:         name,
		role:         role,
		systemPrompt: systemPrompt,
		client:       client,
		policy:       DefaultRetryPolicy(),
		logger:       logger,
		sleep:        sleepCtx,
		jitter:       randJitter,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.policy.MaxAttempts < 1 {
		a.policy.MaxAttempts = 1
	}
	return a
}

// Name returns the stage's display name.
func (a *Agent) Name() string { return a.name }

// Run executes one generation call with bounded retries on rate-limit
// errors. When the client has no credential configured, Run returns a
// deterministic placeholder echoing the input, keeping the pipeline
// runnable end to end without credentials.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	if !a.client.Configured() {
		a.logger.Warnf("%s: no API credential configured, returning placeholder output", a.name)
		return fmt.Sprintf("[%s Output based on '%s']", a.name, input), nil
	}

	a.logger.Infof("%s (%s) working", a.name, a.role)
	prompt := a.systemPrompt + "\n\nTask Input: " + input

	var lastErr error
	for attempt := 0; attempt < a.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			a.logger.Infof("%s: retry attempt %d/%d", a.name, attempt+1, a.policy.MaxAttempts)
		}

		out, err := a.client.Generate(ctx, prompt)
		if err == nil {
			a.logger.Debugf("%s: output %s", a.name, truncate(out, 100))
			return out, nil
		}
		lastErr = err

		// Only rate limits are transient. Anything else fails the
		// stage immediately.
		if !ai.IsRateLimited(err) {
			break
		}
		if attempt == a.policy.MaxAttempts-1 {
			break
		}

		if a.retryNotify != nil {
			a.retryNotify()
		}
		wait := a.policy.BaseDelay*(1<<attempt) + a.jitter(a.policy.MaxJitter)
		a.logger.Warnf("%s: rate limit hit, waiting %s before retry", a.name, wait)
		if err := a.sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return "", fmt.Errorf("%s: %w", a.name, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
