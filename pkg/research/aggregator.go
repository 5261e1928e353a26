package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/worker"
)

// Synthesizer turns the merged source material into a final brief.
type Synthesizer interface {
	Run(ctx context.Context, input string) (string, error)
}

// SynthesisPrompt is the system prompt for the brief synthesis stage.
const SynthesisPrompt = `You are the Chief Intelligence Officer (CIO) for a LinkedIn Influencer.
Your goal is to aggregate data from multiple sources (HackerNews, NewsAPI, arXiv, Tavily) and synthesize it into a comprehensive "Trend Brief".

Input: A raw topic or search query.
Output: A structured report containing:
1. THE CORE NEWS: What is actually happening? (Cite sources)
2. THE CONTEXT: Why does this matter now?
3. THE CONTROVERSY: What are people arguing about?
4. THE ACADEMIC ANGLE: Is there new research?

Make it dense, factual, and high-signal. No fluff.`

// Aggregator fans fetches out over all sources in parallel, merges the
// results in a fixed canonical order, and synthesizes a brief. A failed
// or timed-out source contributes its placeholder text; aggregation
// itself never fails on source errors.
type Aggregator struct {
	sources      []Source
	pool         *worker.Pool
	synth        Synthesizer
	logger       logging.Logger
	fetchTimeout time.Duration
}

// NewAggregator builds an aggregator over sources, which are merged in
// the given order on every run.
func NewAggregator(sources []Source, pool *worker.Pool, synth Synthesizer, fetchTimeout time.Duration, logger logging.Logger) *Aggregator {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Aggregator{
		sources:      sources,
		pool:         pool,
		synth:        synth,
		logger:       logger,
		fetchTimeout: fetchTimeout,
	}
}

// Run fetches all sources concurrently and returns the synthesized
// trend brief for topic.
func (a *Aggregator) Run(ctx context.Context, topic string) (string, error) {
	merged := a.Gather(ctx, topic)
	return a.synth.Run(ctx, merged)
}

// Gather returns the merged source document without synthesis.
func (a *Aggregator) Gather(ctx context.Context, topic string) string {
	sections := make([]string, len(a.sources))

	chans := make([]<-chan worker.Result, len(a.sources))
	for i, src := range a.sources {
		i, src := i, src
		ch, err := a.pool.Submit(ctx, func(ctx context.Context) (any, error) {
			fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
			defer cancel()
			return src.Fetch(fetchCtx, topic), nil
		})
		if err != nil {
			a.logger.Warnf("research: %s not scheduled: %v", src.Name(), err)
			sections[i] = unavailable(src.Name())
			continue
		}
		chans[i] = ch
	}

	for i, ch := range chans {
		if ch == nil {
			continue
		}
		val, err := worker.Wait(ctx, ch)
		if err != nil {
			a.logger.Warnf("research: %s failed: %v", a.sources[i].Name(), err)
			sections[i] = unavailable(a.sources[i].Name())
			continue
		}
		text, _ := val.(string)
		if text == "" {
			text = unavailable(a.sources[i].Name())
		}
		sections[i] = text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s", topic)
	for i, src := range a.sources {
		fmt.Fprintf(&b, "\n\n%s DATA:\n%s", strings.ToUpper(src.Name()), sections[i])
	}
	return b.String()
}

func unavailable(source string) string {
	return fmt.Sprintf("%s data unavailable.", source)
}
