// Package images produces post visuals, either by generating a
// synthetic image from a prompt or by sourcing a real photograph from
// web image search results.
package images

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"

	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/research"
)

const (
	generatorDefaultBaseURL = "https://image.pollinations.ai"

	// Standard LinkedIn landscape dimensions.
	imageWidth  = 1200
	imageHeight = 628

	maxImageBytes = 10 << 20
)

// Generator creates synthetic images from text prompts via a
// prompt-in-URL image service.
type Generator struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

func NewGenerator(baseURL string, client *http.Client, logger logging.Logger) *Generator {
	if baseURL == "" {
		baseURL = generatorDefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Generator{baseURL: baseURL, client: client, logger: logger}
}

// Generate renders prompt into image bytes.
func (g *Generator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, fmt.Errorf("images: empty prompt")
	}

	endpoint := fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&nologo=true",
		g.baseURL, url.PathEscape(prompt), imageWidth, imageHeight)

	data, err := fetchBytes(ctx, g.client, endpoint)
	if err != nil {
		return nil, fmt.Errorf("images: generate: %w", err)
	}
	g.logger.Infof("images: generated %d bytes for prompt %q", len(data), truncate(prompt, 50))
	return data, nil
}

// Searcher finds real photographs for a topic through an image-capable
// web search.
type Searcher struct {
	search *research.Tavily
	client *http.Client
	logger logging.Logger
	rng    *rand.Rand
}

func NewSearcher(search *research.Tavily, client *http.Client, rng *rand.Rand, logger logging.Logger) *Searcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Searcher{search: search, client: client, rng: rng, logger: logger}
}

// SourcePhoto searches for photographs matching topic and downloads a
// random pick from the results.
func (s *Searcher) SourcePhoto(ctx context.Context, topic string) ([]byte, error) {
	res, err := s.search.Search(ctx, topic+" real photo", true)
	if err != nil {
		return nil, fmt.Errorf("images: photo search: %w", err)
	}
	if len(res.Images) == 0 {
		return nil, fmt.Errorf("images: no photos found for %q", topic)
	}

	pick := res.Images[s.rng.Intn(len(res.Images))]
	data, err := fetchBytes(ctx, s.client, pick)
	if err != nil {
		return nil, fmt.Errorf("images: download photo: %w", err)
	}
	s.logger.Infof("images: sourced organic photo from %s", pick)
	return data, nil
}

func fetchBytes(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
