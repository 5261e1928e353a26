package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growthloop.yaml")
	data := `
memory_path: /tmp/mem.json
ai:
  provider: openai
  model: gpt-4o-mini
  timeout: 30s
pipeline:
  max_retries: 5
  topics:
    - "topic one"
    - "topic two"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryPath != "/tmp/mem.json" {
		t.Fatalf("MemoryPath = %q", cfg.MemoryPath)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.Model != "gpt-4o-mini" {
		t.Fatalf("AI = %+v", cfg.AI)
	}
	if cfg.AI.Timeout.Std() != 30*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Pipeline.MaxRetries != 5 {
		t.Fatalf("MaxRetries = %d", cfg.Pipeline.MaxRetries)
	}
	if len(cfg.Pipeline.Topics) != 2 {
		t.Fatalf("Topics = %v", cfg.Pipeline.Topics)
	}
	// Untouched fields keep defaults.
	if cfg.Research.Workers != 4 {
		t.Fatalf("Research.Workers = %d", cfg.Research.Workers)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growthloop.json")
	data := `{"memory_path": "mem.json", "ai": {"provider": "custom", "base_url": "http://localhost:8080/v1"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.Provider != "custom" || cfg.AI.BaseURL != "http://localhost:8080/v1" {
		t.Fatalf("AI = %+v", cfg.AI)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryPath != Default().MemoryPath {
		t.Fatalf("MemoryPath = %q", cfg.MemoryPath)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GROWTHLOOP_AI_MODEL", "gemini-2.5-pro")
	t.Setenv("GROWTHLOOP_AI_TIMEOUT", "2m")
	t.Setenv("GROWTHLOOP_PIPELINE_DRYRUN", "true")
	t.Setenv("GROWTHLOOP_PIPELINE_TOPICS", "a, b ,c")
	t.Setenv("GROWTHLOOP_RESEARCH_WORKERS", "8")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.Model != "gemini-2.5-pro" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout.Std() != 2*time.Minute {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if !cfg.Pipeline.DryRun {
		t.Fatal("DryRun not overridden")
	}
	if len(cfg.Pipeline.Topics) != 3 || cfg.Pipeline.Topics[1] != "b" {
		t.Fatalf("Topics = %v", cfg.Pipeline.Topics)
	}
	if cfg.Research.Workers != 8 {
		t.Fatalf("Workers = %d", cfg.Research.Workers)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty memory path", func(c *Config) { c.MemoryPath = "" }, "required fields"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "bard" }, "not one of"},
		{"retries out of range", func(c *Config) { c.Pipeline.MaxRetries = 0 }, "out of range"},
		{"organic chance out of range", func(c *Config) { c.Pipeline.OrganicChance = 1.5 }, "out of range"},
		{"workers out of range", func(c *Config) { c.Research.Workers = 100 }, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}
