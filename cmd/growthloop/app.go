package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/growthloopio/growthloop/pkg/agent"
	"github.com/growthloopio/growthloop/pkg/ai"
	"github.com/growthloopio/growthloop/pkg/config"
	"github.com/growthloopio/growthloop/pkg/images"
	"github.com/growthloopio/growthloop/pkg/linkedin"
	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/memory"
	"github.com/growthloopio/growthloop/pkg/observability/prometheus"
	"github.com/growthloopio/growthloop/pkg/pipeline"
	"github.com/growthloopio/growthloop/pkg/research"
	"github.com/growthloopio/growthloop/pkg/worker"
)

// app wires the full dependency graph for one CLI invocation.
type app struct {
	cfg          *config.Config
	logger       logging.Logger
	mem          *memory.Memory
	linkedin     *linkedin.Client
	metrics      *prometheus.Metrics
	orchestrator *pipeline.Orchestrator
	pool         *worker.Pool
}

func newApp(configPath string, verbose bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyLegacyEnv(cfg)

	logger := logging.NewLogger(verbose)
	metrics := prometheus.NewMetrics()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	coldStore, err := memory.NewFSColdStore(memory.DefaultFSColdStoreConfig(cfg.ArchiveDir))
	if err != nil {
		return nil, fmt.Errorf("open archive store: %w", err)
	}
	mem := memory.New(cfg.MemoryPath, logger, memory.WithColdStore(coldStore))

	client, err := ai.NewClient(ai.Config{
		Provider: ai.Provider(cfg.AI.Provider),
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("ai client: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pool := worker.NewPool(cfg.Research.Workers, 2*cfg.Research.Workers)

	tavily := research.NewTavily("", cfg.Research.TavilyAPIKey, httpClient, logger)
	sources := []research.Source{
		research.NewHackerNews("", httpClient, logger),
		research.NewNewsAPI("", cfg.Research.NewsAPIKey, httpClient, logger),
		research.NewArxiv("", httpClient, logger),
		tavily,
	}
	synth := agent.New("ResearchManager", "Chief Intelligence Officer",
		research.SynthesisPrompt, client, logger,
		agent.WithRetryPolicy(retryPolicy(cfg)),
		agent.WithRetryNotify(func() { metrics.GenerationRetries.Inc() }))
	aggregator := research.NewAggregator(sources, pool, synth, cfg.Research.FetchTimeout.Std(), logger)

	li := linkedin.NewClient(cfg.LinkedIn.BaseURL, cfg.LinkedIn.AccessToken, cfg.LinkedIn.AuthorURN, httpClient, logger)
	generator := images.NewGenerator("", httpClient, logger)

	var photos pipeline.PhotoSourcer
	if cfg.Research.TavilyAPIKey != "" {
		photos = images.NewSearcher(tavily, httpClient, rng, logger)
	}

	factory := pipeline.NewAgentFactory(client, mem, metrics, logger,
		agent.WithRetryPolicy(retryPolicy(cfg)))

	orch := pipeline.New(mem, aggregator, factory, generator, photos, li,
		metrics, rng, cfg.Pipeline.Topics, logger,
		pipeline.WithOrganicChance(cfg.Pipeline.OrganicChance))

	return &app{
		cfg:          cfg,
		logger:       logger,
		mem:          mem,
		linkedin:     li,
		metrics:      metrics,
		orchestrator: orch,
		pool:         pool,
	}, nil
}

func (a *app) Close() {
	a.pool.Stop()
}

func retryPolicy(cfg *config.Config) agent.RetryPolicy {
	p := agent.DefaultRetryPolicy()
	p.MaxAttempts = cfg.Pipeline.MaxRetries
	if base := cfg.Pipeline.RetryBase.Std(); base > 0 {
		p.BaseDelay = base
	}
	return p
}

// applyLegacyEnv honors the credential variable names earlier
// deployments exported, so existing cron setups keep working.
func applyLegacyEnv(cfg *config.Config) {
	if cfg.LinkedIn.AccessToken == "" {
		cfg.LinkedIn.AccessToken = os.Getenv("LINKEDIN_ACCESS_TOKEN")
	}
	if cfg.LinkedIn.AuthorURN == "" {
		cfg.LinkedIn.AuthorURN = os.Getenv("LINKEDIN_PERSON_URN")
	}
	if cfg.Research.NewsAPIKey == "" {
		cfg.Research.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	}
	if cfg.Research.TavilyAPIKey == "" {
		cfg.Research.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	}
}
