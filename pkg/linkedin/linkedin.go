// Package linkedin publishes posts through the LinkedIn REST API:
// image upload registration, binary upload, post creation, and
// engagement stats retrieval.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/growthloopio/growthloop/pkg/logging"
)

const (
	defaultBaseURL = "https://api.linkedin.com"

	restliProtocolVersion = "2.0.0"
	apiVersion            = "202411"
)

// Engagement is the like/comment snapshot for one published post.
type Engagement struct {
	Likes    int
	Comments int
}

// Client talks to the LinkedIn REST API for one author.
type Client struct {
	baseURL     string
	accessToken string
	authorURN   string
	httpClient  *http.Client
	logger      logging.Logger
}

// NewClient builds a client. baseURL overrides the API endpoint for
// tests; empty means production.
func NewClient(baseURL, accessToken, authorURN string, httpClient *http.Client, logger logging.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		authorURN:   authorURN,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Configured reports whether credentials are present. Callers check
// this up front rather than discovering the absence via a failed call.
func (c *Client) Configured() bool {
	return c.accessToken != "" && c.authorURN != ""
}

// Publish creates a post with the given commentary and an optional
// image. If the image upload fails the post falls back to text-only.
// Returns the new post's URN.
func (c *Client) Publish(ctx context.Context, text string, image []byte) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("linkedin: credentials not configured")
	}

	var imageURN string
	if len(image) > 0 {
		urn, err := c.uploadImage(ctx, image)
		if err != nil {
			c.logger.Errorf("linkedin: image upload failed, falling back to text-only post: %v", err)
		} else {
			imageURN = urn
		}
	}

	post := map[string]interface{}{
		"author":     c.authorURN,
		"commentary": text,
		"visibility": "PUBLIC",
		"distribution": map[string]interface{}{
			"feedDistribution":               "MAIN_FEED",
			"targetEntities":                 []interface{}{},
			"thirdPartyDistributionChannels": []interface{}{},
		},
		"lifecycleState":            "PUBLISHED",
		"isReshareDisabledByAuthor": false,
	}
	if imageURN != "" {
		post["content"] = map[string]interface{}{
			"media": map[string]interface{}{"id": imageURN},
		}
	}

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/rest/posts", post)
	if err != nil {
		return "", fmt.Errorf("linkedin: publish: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("linkedin: publish: status %d: %s", resp.StatusCode, detail)
	}

	postURN := resp.Header.Get("x-restli-id")
	if postURN == "" {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			postURN = body.ID
		}
	}
	if postURN == "" {
		return "", fmt.Errorf("linkedin: publish succeeded but no post URN returned")
	}

	c.logger.Infof("linkedin: published post %s", postURN)
	return postURN, nil
}

// uploadImage registers an upload, pushes the binary, and returns the
// image URN to embed in the post.
func (c *Client) uploadImage(ctx context.Context, image []byte) (string, error) {
	uploadURL, imageURN, err := c.registerUpload(ctx)
	if err != nil {
		return "", fmt.Errorf("register upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload binary: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload binary: status %d", resp.StatusCode)
	}

	c.logger.Debugf("linkedin: image uploaded as %s", imageURN)
	return imageURN, nil
}

func (c *Client) registerUpload(ctx context.Context) (uploadURL, imageURN string, err error) {
	payload := map[string]interface{}{
		"initializeUploadRequest": map[string]interface{}{
			"owner": c.authorURN,
		},
	}
	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/rest/images?action=initializeUpload", payload)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var body struct {
		Value struct {
			UploadURL string `json:"uploadUrl"`
			Image     string `json:"image"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode: %w", err)
	}
	if body.Value.UploadURL == "" || body.Value.Image == "" {
		return "", "", fmt.Errorf("incomplete initializeUpload response")
	}
	return body.Value.UploadURL, body.Value.Image, nil
}

// Engagement fetches like/comment counts for a post. A 404 (post too
// new or wrong ID format) and a 403 (missing social scope) both yield
// zero stats rather than an error.
func (c *Client) Engagement(ctx context.Context, urn string) (Engagement, error) {
	if c.accessToken == "" {
		return Engagement{}, fmt.Errorf("linkedin: credentials not configured")
	}

	endpoint := c.baseURL + "/rest/socialActions/" + url.PathEscape(urn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Engagement{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Engagement{}, fmt.Errorf("linkedin: stats for %s: %w", urn, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warnf("linkedin: stats not found for %s", urn)
		return Engagement{}, nil
	case resp.StatusCode == http.StatusForbidden:
		c.logger.Warnf("linkedin: permission denied fetching stats for %s (missing social scope)", urn)
		return Engagement{}, nil
	case resp.StatusCode != http.StatusOK:
		return Engagement{}, fmt.Errorf("linkedin: stats for %s: status %d", urn, resp.StatusCode)
	}

	var body struct {
		LikesSummary struct {
			TotalLikes int `json:"totalLikes"`
		} `json:"likesSummary"`
		CommentsSummary struct {
			TotalComments int `json:"totalComments"`
		} `json:"commentsSummary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Engagement{}, fmt.Errorf("linkedin: stats for %s: decode: %w", urn, err)
	}
	return Engagement{
		Likes:    body.LikesSummary.TotalLikes,
		Comments: body.CommentsSummary.TotalComments,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
	req.Header.Set("LinkedIn-Version", apiVersion)
}
