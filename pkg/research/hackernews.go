package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/growthloopio/growthloop/pkg/logging"
)

const hackerNewsDefaultBaseURL = "https://hacker-news.firebaseio.com"

// aiKeywords filters top stories down to the ones worth briefing on.
var aiKeywords = []string{
	"ai", "llm", "gpt", "agent", "model", "neural", "machine learning",
	"robot", "bot", "intelligence", "deepmind", "openai",
}

// HackerNews scans the top stories for AI-related titles.
type HackerNews struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger

	scanLimit  int
	storyLimit int
}

var _ Source = (*HackerNews)(nil)

// NewHackerNews builds a connector against the public Firebase API.
// baseURL overrides the endpoint for tests; empty means production.
func NewHackerNews(baseURL string, client *http.Client, logger logging.Logger) *HackerNews {
	if baseURL == "" {
		baseURL = hackerNewsDefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HackerNews{
		baseURL:    baseURL,
		client:     client,
		logger:     logger,
		scanLimit:  50,
		storyLimit: 5,
	}
}

func (h *HackerNews) Name() string { return "HackerNews" }

func (h *HackerNews) Fetch(ctx context.Context, query string) string {
	ids, err := h.topStoryIDs(ctx)
	if err != nil {
		h.logger.Warnf("hackernews: %v", err)
		return "Error fetching HackerNews data."
	}
	if len(ids) > h.scanLimit {
		ids = ids[:h.scanLimit]
	}

	var stories []string
	for _, id := range ids {
		if len(stories) >= h.storyLimit {
			break
		}
		item, err := h.item(ctx, id)
		if err != nil {
			h.logger.Debugf("hackernews: item %d: %v", id, err)
			continue
		}
		if !matchesKeywords(item.Title) {
			continue
		}
		stories = append(stories, fmt.Sprintf("- Title: %s\n  URL: %s\n  Score: %d", item.Title, item.URL, item.Score))
	}

	if len(stories) == 0 {
		return "No specific AI stories found in top stories. Using general knowledge."
	}
	return strings.Join(stories, "\n\n")
}

type hnItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

func (h *HackerNews) topStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := h.getJSON(ctx, h.baseURL+"/v0/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) item(ctx context.Context, id int) (*hnItem, error) {
	var item hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("%s/v0/item/%d.json", h.baseURL, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (h *HackerNews) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func matchesKeywords(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range aiKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
