package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/growthloopio/growthloop/pkg/logging"
)

const arxivDefaultBaseURL = "http://export.arxiv.org"

// Arxiv fetches the latest AI/NLP papers from the arXiv Atom feed.
type Arxiv struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
	limit   int
}

var _ Source = (*Arxiv)(nil)

func NewArxiv(baseURL string, client *http.Client, logger logging.Logger) *Arxiv {
	if baseURL == "" {
		baseURL = arxivDefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Arxiv{baseURL: baseURL, client: client, logger: logger, limit: 3}
}

func (a *Arxiv) Name() string { return "arXiv" }

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	ID      string `xml:"id"`
	Summary string `xml:"summary"`
}

func (a *Arxiv) Fetch(ctx context.Context, query string) string {
	url := a.baseURL + "/api/query?search_query=cat:cs.AI+OR+cat:cs.CL&start=0&max_results=5&sortBy=submittedDate&sortOrder=descending"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.logger.Warnf("arxiv: %v", err)
		return "Error fetching arXiv data."
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warnf("arxiv: %v", err)
		return "Error fetching arXiv data."
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Warnf("arxiv: unexpected status %d", resp.StatusCode)
		return "Error fetching arXiv data."
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		a.logger.Warnf("arxiv: decode: %v", err)
		return "Error fetching arXiv data."
	}

	var papers []string
	for i, e := range feed.Entries {
		if i >= a.limit {
			break
		}
		title := collapseWhitespace(e.Title)
		summary := collapseWhitespace(e.Summary)
		if len(summary) > 200 {
			summary = summary[:200] + "..."
		}
		papers = append(papers, fmt.Sprintf("- Title: %s\n  URL: %s\n  Abstract: %s", title, strings.TrimSpace(e.ID), summary))
	}
	if len(papers) == 0 {
		return "No recent arXiv papers found."
	}
	return strings.Join(papers, "\n\n")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
