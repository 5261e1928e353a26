package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/growthloopio/growthloop/pkg/logging"
)

const newsAPIDefaultBaseURL = "https://newsapi.org"

// NewsAPI fetches top technology headlines. Without an API key the
// source degrades to a skip notice instead of failing.
type NewsAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logging.Logger
	limit   int
}

var _ Source = (*NewsAPI)(nil)

func NewNewsAPI(baseURL, apiKey string, client *http.Client, logger logging.Logger) *NewsAPI {
	if baseURL == "" {
		baseURL = newsAPIDefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NewsAPI{baseURL: baseURL, apiKey: apiKey, client: client, logger: logger, limit: 5}
}

func (n *NewsAPI) Name() string { return "NewsAPI" }

func (n *NewsAPI) Fetch(ctx context.Context, query string) string {
	if n.apiKey == "" {
		n.logger.Warn("newsapi: no API key configured, skipping")
		return "NewsAPI skipped (no API key configured)."
	}

	q := url.Values{}
	q.Set("category", "technology")
	q.Set("language", "en")
	q.Set("pageSize", "10")
	q.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v2/top-headlines?"+q.Encode(), nil)
	if err != nil {
		n.logger.Warnf("newsapi: %v", err)
		return "Error fetching NewsAPI data."
	}
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warnf("newsapi: %v", err)
		return "Error fetching NewsAPI data."
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		n.logger.Warnf("newsapi: unexpected status %d", resp.StatusCode)
		return "Error fetching NewsAPI data."
	}

	var body struct {
		Articles []struct {
			Title  string `json:"title"`
			URL    string `json:"url"`
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		n.logger.Warnf("newsapi: decode: %v", err)
		return "Error fetching NewsAPI data."
	}

	var articles []string
	for i, a := range body.Articles {
		if i >= n.limit {
			break
		}
		articles = append(articles, fmt.Sprintf("- Title: %s\n  Source: %s\n  URL: %s", a.Title, a.Source.Name, a.URL))
	}
	if len(articles) == 0 {
		return "No recent tech headlines found."
	}
	return strings.Join(articles, "\n\n")
}
