package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/growthloopio/growthloop/pkg/logging"
)

const tavilyDefaultBaseURL = "https://api.tavily.com"

// Tavily runs a web search. Besides the Source text path it exposes an
// image search used for sourcing organic photographs.
type Tavily struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logging.Logger
}

var _ Source = (*Tavily)(nil)

func NewTavily(baseURL, apiKey string, client *http.Client, logger logging.Logger) *Tavily {
	if baseURL == "" {
		baseURL = tavilyDefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Tavily{baseURL: baseURL, apiKey: apiKey, client: client, logger: logger}
}

func (t *Tavily) Name() string { return "Tavily" }

// SearchResult is one Tavily response: synthesized text plus any image
// URLs when requested.
type SearchResult struct {
	Text   string
	Images []string
}

func (t *Tavily) Fetch(ctx context.Context, query string) string {
	if t.apiKey == "" {
		t.logger.Warn("tavily: no API key configured, skipping")
		return "Tavily skipped (no API key configured)."
	}
	res, err := t.Search(ctx, fmt.Sprintf("latest critical discussions in %s technology", query), false)
	if err != nil {
		t.logger.Warnf("tavily: %v", err)
		return "Error fetching Tavily data."
	}
	if res.Text == "" {
		return "No Tavily results found."
	}
	return res.Text
}

// Search posts a search request. includeImages asks Tavily to return
// image URLs alongside text results.
func (t *Tavily) Search(ctx context.Context, query string, includeImages bool) (SearchResult, error) {
	if t.apiKey == "" {
		return SearchResult{}, fmt.Errorf("tavily: no API key configured")
	}

	payload := map[string]interface{}{
		"api_key":        t.apiKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": true,
		"include_images": includeImages,
		"max_results":    3,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return SearchResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return SearchResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data struct {
		Answer  string   `json:"answer"`
		Images  []string `json:"images"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return SearchResult{}, fmt.Errorf("decode: %w", err)
	}

	var sections []string
	if data.Answer != "" {
		sections = append(sections, "Direct Answer: "+data.Answer)
	}
	for _, r := range data.Results {
		content := r.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		sections = append(sections, fmt.Sprintf("- %s (%s): %s", r.Title, r.URL, content))
	}

	return SearchResult{
		Text:   strings.Join(sections, "\n\n"),
		Images: data.Images,
	}, nil
}
