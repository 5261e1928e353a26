package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		wantErr        bool
		wantConfigured bool
	}{
		{
			name: "openai config with API key",
			config: Config{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantConfigured: true,
		},
		{
			name: "gemini config with API key",
			config: Config{
				Provider: ProviderGemini,
				APIKey:   "test-key",
			},
			wantConfigured: true,
		},
		{
			name:   "default provider when empty",
			config: Config{APIKey: "test-key"},

			wantConfigured: true,
		},
		{
			name: "custom provider requires base URL",
			config: Config{
				Provider: ProviderCustom,
				APIKey:   "test-key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if client == nil {
				t.Fatal("NewClient() returned nil client")
			}
			if client.Configured() != tt.wantConfigured {
				t.Errorf("Configured() = %v, want %v", client.Configured(), tt.wantConfigured)
			}
		})
	}
}

func TestUnconfiguredClientFailsUpFront(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClient(Config{Provider: ProviderOpenAI})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Configured() {
		t.Fatal("expected unconfigured client")
	}
	if _, err := client.Generate(context.Background(), "hello"); err != ErrNotConfigured {
		t.Fatalf("Generate error = %v, want ErrNotConfigured", err)
	}
}

func TestGenerate_AgainstFakeEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "cmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "  generated text  "}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Provider: ProviderCustom,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := client.Generate(context.Background(), "write a post")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "generated text" {
		t.Errorf("Generate = %q, want trimmed %q", got, "generated text")
	}
}

func TestGenerate_RateLimitClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Resource exhausted", "type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Provider: ProviderCustom,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "write a post")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Errorf("expected rate-limited classification, got %v", err)
	}
}

func TestGenerate_OtherErrorNotRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad request"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Provider: ProviderCustom,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "write a post")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRateLimited(err) {
		t.Errorf("bad request should not classify as rate limited: %v", err)
	}
}
