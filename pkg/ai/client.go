package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// chatClient is the go-openai backed implementation of Client. Any
// OpenAI-compatible endpoint works through BaseURL, which covers the
// Gemini compatibility surface as well.
type chatClient struct {
	provider Provider
	model    string
	apiKey   string
	client   *openai.Client
	timeout  time.Duration
}

// NewClient creates a new generation client. A missing API key is not
// an error: the client is returned unconfigured so the caller can
// degrade to placeholder output instead of crashing mid-pipeline.
func NewClient(config Config) (Client, error) {
	if config.Provider == "" {
		config.Provider = ProviderOpenAI
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(getProviderEnvVar(config.Provider))
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = getProviderBaseURL(config.Provider)
	}
	if config.Provider == ProviderCustom && baseURL == "" {
		return nil, fmt.Errorf("custom provider requires a base URL")
	}

	model := config.Model
	if model == "" {
		model = getProviderDefaultModel(config.Provider)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &chatClient{
		provider: config.Provider,
		model:    model,
		apiKey:   apiKey,
		client:   openai.NewClientWithConfig(cfg),
		timeout:  timeout,
	}, nil
}

// Provider returns the provider type
func (c *chatClient) Provider() Provider {
	return c.provider
}

// Configured reports whether an API key was resolved.
func (c *chatClient) Configured() bool {
	return c.apiKey != ""
}

// Generate sends a single-turn chat completion request and returns the
// response text.
func (c *chatClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyErr(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoOutput
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrNoOutput
	}
	return text, nil
}

// classifyErr maps provider errors onto the package's error taxonomy so
// callers can distinguish retryable rate limiting from terminal errors.
func classifyErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("generation request failed: %w", err)
}

// Compile-time interface assertion.
var _ Client = (*chatClient)(nil)
