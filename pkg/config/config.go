// Package config loads and validates the application configuration from
// YAML or JSON files, with environment variable overrides under the
// GROWTHLOOP_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// GROWTHLOOP_AI_MODEL overrides Config.AI.Model.
const EnvPrefix = "GROWTHLOOP"

// Config is the full application configuration.
type Config struct {
	MemoryPath string `yaml:"memory_path" json:"memory_path"`
	ArchiveDir string `yaml:"archive_dir" json:"archive_dir"`

	AI       AIConfig       `yaml:"ai" json:"ai"`
	LinkedIn LinkedInConfig `yaml:"linkedin" json:"linkedin"`
	Research ResearchConfig `yaml:"research" json:"research"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// AIConfig configures the text generation backend.
type AIConfig struct {
	Provider string   `yaml:"provider" json:"provider"`
	Model    string   `yaml:"model" json:"model"`
	BaseURL  string   `yaml:"base_url" json:"base_url"`
	APIKey   string   `yaml:"api_key" json:"api_key"`
	Timeout  Duration `yaml:"timeout" json:"timeout"`
}

// LinkedInConfig configures the publishing target.
type LinkedInConfig struct {
	AccessToken string `yaml:"access_token" json:"access_token"`
	AuthorURN   string `yaml:"author_urn" json:"author_urn"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
}

// ResearchConfig configures the research connectors.
type ResearchConfig struct {
	NewsAPIKey   string   `yaml:"newsapi_key" json:"newsapi_key"`
	TavilyAPIKey string   `yaml:"tavily_key" json:"tavily_key"`
	FetchTimeout Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	Workers      int      `yaml:"workers" json:"workers"`
}

// PipelineConfig configures run behavior.
type PipelineConfig struct {
	Topics        []string `yaml:"topics" json:"topics"`
	MaxRetries    int      `yaml:"max_retries" json:"max_retries"`
	RetryBase     Duration `yaml:"retry_base" json:"retry_base"`
	RetentionDays int      `yaml:"retention_days" json:"retention_days"`
	OrganicChance float64  `yaml:"organic_chance" json:"organic_chance"`
	DryRun        bool     `yaml:"dry_run" json:"dry_run"`
}

// MetricsConfig configures the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// Default returns a configuration with working defaults for every field
// the application can run without.
func Default() *Config {
	return &Config{
		MemoryPath: "growthloop_memory.json",
		ArchiveDir: "archive",
		AI: AIConfig{
			Provider: "gemini",
			Timeout:  Duration(90 * time.Second),
		},
		LinkedIn: LinkedInConfig{
			BaseURL: "https://api.linkedin.com",
		},
		Research: ResearchConfig{
			FetchTimeout: Duration(15 * time.Second),
			Workers:      4,
		},
		Pipeline: PipelineConfig{
			Topics: []string{
				"AI agents in production",
				"The economics of LLM inference",
				"Developer productivity myths",
			},
			MaxRetries:    3,
			RetryBase:     Duration(5 * time.Second),
			RetentionDays: 90,
			OrganicChance: 0.5,
		},
		Metrics: MetricsConfig{
			Addr: ":9190",
		},
	}
}

// LoadConfig loads path on top of Default(), applies GROWTHLOOP_* env
// overrides, and validates the result. A missing file is not an error;
// defaults plus environment are used.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		switch err := Load(path, cfg); {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			// Run on defaults plus environment.
		default:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := ApplyEnvOverrides(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	return Validate(c,
		RequiredFields("MemoryPath", "AI.Provider"),
		OneOfValidator("AI.Provider", "openai", "gemini", "custom"),
		RangeValidator("Pipeline.MaxRetries", 1, 10),
		RangeValidator("Pipeline.OrganicChance", 0, 1),
		RangeValidator("Research.Workers", 1, 32),
	)
}
