package ai

import (
	"context"
	"errors"
	"time"
)

// Provider represents a text-generation provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderCustom Provider = "custom"
)

var (
	// ErrRateLimited marks a transient quota/rate-limit failure. Callers
	// may retry after a backoff delay.
	ErrRateLimited = errors.New("generation rate limited")

	// ErrNotConfigured is returned when Generate is called on a client
	// with no API key. Callers should check Configured() up front.
	ErrNotConfigured = errors.New("generation client not configured")

	// ErrNoOutput is returned when the provider answered but produced
	// no usable text.
	ErrNoOutput = errors.New("generation produced no output")
)

// IsRateLimited reports whether err is a transient rate-limit failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Client is the interface for text-generation clients
type Client interface {
	// Generate sends prompt and returns the generated text
	Generate(ctx context.Context, prompt string) (string, error)

	// Configured reports whether a credential is available. An
	// unconfigured client fails every Generate with ErrNotConfigured.
	Configured() bool

	// Provider returns the provider type
	Provider() Provider
}

// Config represents generation client configuration
type Config struct {
	Provider Provider      `json:"provider" yaml:"provider"` // provider type
	APIKey   string        `json:"apiKey" yaml:"api_key"`    // API key (or use env var)
	BaseURL  string        `json:"baseURL" yaml:"base_url"`  // base URL (optional, provider-specific defaults)
	Model    string        `json:"model" yaml:"model"`       // default model
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`   // request timeout (default: 60s)
}

// getProviderEnvVar returns the environment variable name for a provider's API key
func getProviderEnvVar(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "AI_API_KEY"
	}
}

// getProviderBaseURL returns the base URL for a provider
func getProviderBaseURL(provider Provider) string {
	switch provider {
	case ProviderGemini:
		// Gemini's OpenAI-compatible surface.
		return "https://generativelanguage.googleapis.com/v1beta/openai"
	case ProviderCustom:
		return "" // must be provided in config
	default:
		return "" // go-openai default
	}
}

// getProviderDefaultModel returns the default model for a provider
func getProviderDefaultModel(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o-mini"
	}
}
