package research

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/worker"
)

type cannedSource struct {
	name string
	out  string
}

func (s *cannedSource) Name() string { return s.name }

func (s *cannedSource) Fetch(ctx context.Context, query string) string { return s.out }

type echoSynth struct{ input string }

func (e *echoSynth) Run(ctx context.Context, input string) (string, error) {
	e.input = input
	return "brief", nil
}

func newTestAggregator(synth Synthesizer, sources ...Source) (*Aggregator, *worker.Pool) {
	pool := worker.NewPool(4, 8)
	return NewAggregator(sources, pool, synth, time.Second, logging.NewNopLogger()), pool
}

func TestGather_CanonicalOrder(t *testing.T) {
	synth := &echoSynth{}
	agg, pool := newTestAggregator(synth,
		&cannedSource{"HackerNews", "hn stories"},
		&cannedSource{"NewsAPI", "headlines"},
		&cannedSource{"arXiv", "papers"},
		&cannedSource{"Tavily", "search hits"},
	)
	defer pool.Stop()

	merged := agg.Gather(context.Background(), "AI agents")

	wantOrder := []string{"HACKERNEWS DATA:", "NEWSAPI DATA:", "ARXIV DATA:", "TAVILY DATA:"}
	last := -1
	for _, marker := range wantOrder {
		idx := strings.Index(merged, marker)
		if idx < 0 {
			t.Fatalf("merged missing %q:\n%s", marker, merged)
		}
		if idx < last {
			t.Fatalf("section %q out of order:\n%s", marker, merged)
		}
		last = idx
	}
	if !strings.HasPrefix(merged, "Topic: AI agents") {
		t.Fatalf("merged = %q", merged)
	}
}

func TestGather_PartialFailureDegrades(t *testing.T) {
	synth := &echoSynth{}
	agg, pool := newTestAggregator(synth,
		&cannedSource{"HackerNews", "hn stories"},
		&cannedSource{"NewsAPI", "Error fetching NewsAPI data."},
		&cannedSource{"arXiv", "papers"},
		&cannedSource{"Tavily", "Error fetching Tavily data."},
	)
	defer pool.Stop()

	out, err := agg.Run(context.Background(), "AI agents")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "brief" {
		t.Fatalf("out = %q", out)
	}

	merged := synth.input
	if !strings.Contains(merged, "hn stories") || !strings.Contains(merged, "papers") {
		t.Fatalf("healthy sections missing:\n%s", merged)
	}
	if !strings.Contains(merged, "Error fetching NewsAPI data.") || !strings.Contains(merged, "Error fetching Tavily data.") {
		t.Fatalf("placeholders missing:\n%s", merged)
	}
}

func TestGather_EmptySourceGetsPlaceholder(t *testing.T) {
	synth := &echoSynth{}
	agg, pool := newTestAggregator(synth, &cannedSource{"NewsAPI", ""})
	defer pool.Stop()

	merged := agg.Gather(context.Background(), "x")
	if !strings.Contains(merged, "NewsAPI data unavailable.") {
		t.Fatalf("merged = %q", merged)
	}
}

type slowSource struct{ cannedSource }

func (s *slowSource) Fetch(ctx context.Context, query string) string {
	select {
	case <-ctx.Done():
		return s.name + " data unavailable."
	case <-time.After(10 * time.Second):
		return "too late"
	}
}

func TestGather_TimeoutDoesNotBlockForever(t *testing.T) {
	synth := &echoSynth{}
	slow := &slowSource{cannedSource{name: "Tavily"}}
	pool := worker.NewPool(4, 8)
	defer pool.Stop()
	agg := NewAggregator([]Source{slow}, pool, synth, 50*time.Millisecond, logging.NewNopLogger())

	done := make(chan string, 1)
	go func() { done <- agg.Gather(context.Background(), "x") }()

	select {
	case merged := <-done:
		if !strings.Contains(merged, "Tavily data unavailable.") {
			t.Fatalf("merged = %q", merged)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Gather did not honor fetch timeout")
	}
}
