// Package pipeline sequences the content generation run: research,
// strategy, drafting, review, image work, publishing, and history
// bookkeeping, with an explicit fatal/non-fatal policy per phase.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/growthloopio/growthloop/pkg/agent"
	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/memory"
	"github.com/growthloopio/growthloop/pkg/observability/prometheus"
	"github.com/growthloopio/growthloop/pkg/vibes"
)

// Researcher produces a trend brief for a topic.
type Researcher interface {
	Run(ctx context.Context, topic string) (string, error)
}

// Publisher pushes a finished post to the social network.
type Publisher interface {
	Publish(ctx context.Context, text string, image []byte) (string, error)
	Configured() bool
}

// ImageGenerator renders a synthetic image from a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// PhotoSourcer finds a real photograph for a topic.
type PhotoSourcer interface {
	SourcePhoto(ctx context.Context, topic string) ([]byte, error)
}

// StageFactory builds the per-run generation stages for a vibe. The
// production factory wires real agents; tests substitute canned stages.
type StageFactory interface {
	Strategist(v vibes.Vibe, insight string) agent.Stage
	Ghostwriter(v vibes.Vibe) agent.Stage
	ArtDirector(v vibes.Vibe) agent.Stage
	Critic() agent.Stage
	Networker() agent.Stage
}

// RunOptions control a single pipeline run.
type RunOptions struct {
	// Topic overrides random topic selection.
	Topic string
	// ForcedVibe overrides random vibe selection by name.
	ForcedVibe string
	// DryRun generates everything but skips the publish call.
	DryRun bool
}

// RunResult is the outcome of one run. Degraded lists the non-fatal
// phases that failed; a run with degradations still publishes.
type RunResult struct {
	RunID     string
	Vibe      string
	Topic     string
	PostURN   string
	Published bool
	ImageMode string
	Degraded  []string
}

// Orchestrator runs the pipeline. Construct with New; all collaborators
// are injected, no ambient state.
type Orchestrator struct {
	mem      *memory.Memory
	research Researcher
	stages   StageFactory
	images   ImageGenerator
	photos   PhotoSourcer
	pub      Publisher
	metrics  *prometheus.Metrics
	logger   logging.Logger
	rng      *rand.Rand
	topics   []string
	organic  float64
}

// Option adjusts orchestrator behavior beyond the required collaborators.
type Option func(*Orchestrator)

// WithOrganicChance sets the probability of sourcing a real photograph
// for organic-eligible vibes. Values outside [0, 1] keep the default.
func WithOrganicChance(p float64) Option {
	return func(o *Orchestrator) {
		if p >= 0 && p <= 1 {
			o.organic = p
		}
	}
}

// New builds an orchestrator. photos may be nil when no image search
// capability is configured; organic sourcing then always falls back to
// synthetic generation.
func New(mem *memory.Memory, research Researcher, stages StageFactory, images ImageGenerator, photos PhotoSourcer, pub Publisher, metrics *prometheus.Metrics, rng *rand.Rand, topics []string, logger logging.Logger, opts ...Option) *Orchestrator {
	if metrics == nil {
		metrics = prometheus.NewMetrics()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	o := &Orchestrator{
		mem:      mem,
		research: research,
		stages:   stages,
		images:   images,
		photos:   photos,
		pub:      pub,
		metrics:  metrics,
		logger:   logger,
		rng:      rng,
		topics:   topics,
		organic:  0.5,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fallbackTopics keeps topic selection working with an empty config.
var fallbackTopics = []string{
	"The rise of Multi-Agent Systems",
	"The future of coding is Agentic",
	"LLMs as Operating Systems",
}

// Run executes one full pipeline pass. Fatal phase failures abort with
// an error and no history write; non-fatal failures degrade the result
// and are listed in RunResult.Degraded.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.NewString(),
		ImageMode: "none",
	}

	vibe, err := vibes.Select(opts.ForcedVibe, o.rng)
	if err != nil {
		return nil, err
	}
	result.Vibe = vibe.Name
	result.Topic = o.selectTopic(opts.Topic)

	insight := o.mem.PerformanceInsight()
	o.logger.Infof("run %s: vibe %q, topic %q", result.RunID, vibe.Name, result.Topic)
	o.logger.Infof("run %s: performance insight: %s", result.RunID, insight)

	// Research (fatal).
	var brief string
	err = o.phase(ctx, result, "research", true, func(ctx context.Context) error {
		var err error
		brief, err = o.research.Run(ctx, result.Topic)
		return err
	})
	if err != nil {
		o.metrics.RunsTotal.WithLabelValues("aborted").Inc()
		return nil, err
	}

	// Comment pack (non-fatal side artifact).
	_ = o.phase(ctx, result, "comment_pack", false, func(ctx context.Context) error {
		pack, err := o.stages.Networker().Run(ctx, brief)
		if err != nil {
			return err
		}
		return o.mem.SaveCommentPack(pack)
	})

	// Strategy (fatal).
	var strategy string
	err = o.phase(ctx, result, "strategy", true, func(ctx context.Context) error {
		var err error
		strategy, err = o.stages.Strategist(vibe, insight).Run(ctx, brief)
		return err
	})
	if err != nil {
		o.metrics.RunsTotal.WithLabelValues("aborted").Inc()
		return nil, err
	}

	// Draft text (fatal).
	var draft string
	err = o.phase(ctx, result, "draft_text", true, func(ctx context.Context) error {
		var err error
		draft, err = o.stages.Ghostwriter(vibe).Run(ctx, strategy)
		return err
	})
	if err != nil {
		o.metrics.RunsTotal.WithLabelValues("aborted").Inc()
		return nil, err
	}

	// Visual concept (non-fatal, text-only publish on failure).
	var visual string
	_ = o.phase(ctx, result, "draft_visual", false, func(ctx context.Context) error {
		var err error
		visual, err = o.stages.ArtDirector(vibe).Run(ctx, strategy)
		return err
	})

	// Image sourcing/generation (non-fatal).
	var image []byte
	if visual != "" {
		_ = o.phase(ctx, result, "image", false, func(ctx context.Context) error {
			var err error
			image, result.ImageMode, err = o.produceImage(ctx, vibe, result.Topic, visual)
			return err
		})
	}

	// Review (non-fatal, rule accumulation is its only lasting effect).
	_ = o.phase(ctx, result, "review", false, func(ctx context.Context) error {
		pkg := fmt.Sprintf("%s\n\n(Visual Concept: %s)", draft, visual)
		feedback, err := o.stages.Critic().Run(ctx, pkg)
		if err != nil {
			return err
		}
		o.logger.Infof("run %s: review feedback: %s", result.RunID, feedback)
		return nil
	})

	if opts.DryRun {
		o.logger.Infof("run %s: dry run, skipping publish", result.RunID)
		o.metrics.RunsTotal.WithLabelValues("dry_run").Inc()
		return result, nil
	}

	// Publish. An unconfigured connector or a failure here ends the run
	// without a history write but is not a process-level error.
	if !o.pub.Configured() {
		o.logger.Warnf("run %s: publisher not configured, skipping publish", result.RunID)
		o.metrics.RunsTotal.WithLabelValues("aborted").Inc()
		return result, nil
	}
	urn, err := o.pub.Publish(ctx, draft, image)
	if err != nil {
		o.logger.Errorf("run %s: publish failed: %v", result.RunID, err)
		o.metrics.RecordStageFailure("publish", true)
		o.metrics.RecordPublish(false, result.ImageMode)
		o.metrics.RunsTotal.WithLabelValues("aborted").Inc()
		return result, nil
	}
	result.PostURN = urn
	result.Published = true
	o.metrics.RecordPublish(true, result.ImageMode)

	// Record history.
	if err := o.mem.AddPostRecord(result.Topic, vibe.Name, urn); err != nil {
		o.logger.Errorf("run %s: failed to record post history: %v", result.RunID, err)
	}

	if len(result.Degraded) > 0 {
		o.metrics.RunsTotal.WithLabelValues("degraded").Inc()
	} else {
		o.metrics.RunsTotal.WithLabelValues("published").Inc()
	}
	o.logger.Infof("run %s: published %s", result.RunID, urn)
	return result, nil
}

// phase runs fn with timing, metrics, and the fatal/non-fatal policy.
// Non-fatal failures are logged, appended to result.Degraded, and
// swallowed.
func (o *Orchestrator) phase(ctx context.Context, result *RunResult, name string, fatal bool, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	o.metrics.ObserveStage(name, time.Since(start))
	if err == nil {
		return nil
	}

	o.metrics.RecordStageFailure(name, fatal)
	if fatal {
		o.logger.Errorf("run %s: %s failed, aborting: %v", result.RunID, name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	o.logger.Warnf("run %s: %s failed, continuing degraded: %v", result.RunID, name, err)
	result.Degraded = append(result.Degraded, name)
	return nil
}

// produceImage decides between sourcing a real photograph and
// generating a synthetic image, with synthetic as the fallback.
func (o *Orchestrator) produceImage(ctx context.Context, vibe vibes.Vibe, topic, visual string) ([]byte, string, error) {
	if vibe.OrganicEligible && o.photos != nil && o.rng.Float64() < o.organic {
		if data, err := o.photos.SourcePhoto(ctx, topic); err == nil {
			return data, "organic", nil
		} else {
			o.logger.Warnf("organic photo sourcing failed, falling back to generation: %v", err)
		}
	}

	prompt := agent.CleanVisualPrompt(visual)
	data, err := o.images.Generate(ctx, prompt)
	if err != nil {
		return nil, "none", err
	}
	return data, "generated", nil
}

func (o *Orchestrator) selectTopic(override string) string {
	if override != "" {
		return override
	}
	topics := o.topics
	if len(topics) == 0 {
		topics = fallbackTopics
	}
	return topics[o.rng.Intn(len(topics))]
}
