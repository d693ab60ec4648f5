package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-kitchen/internal/config"
)

// Photo is one search result.
type Photo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	URLs        struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
}

type searchResponse struct {
	Total   int     `json:"total"`
	Results []Photo `json:"results"`
}

// APIError is a non-200 answer from the image search API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("image search api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Searcher finds photos for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Photo, error)
}

// unsplashClient is a client for the Unsplash search API.
type unsplashClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

// NewUnsplashClient creates a new Unsplash search client.
func NewUnsplashClient(cfg *config.Config) Searcher {
	return &unsplashClient{
		baseURL:   strings.TrimRight(cfg.UnsplashAPIURL, "/"),
		accessKey: cfg.UnsplashAccessKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Search returns the photos Unsplash ranks for query, best first.
func (c *unsplashClient) Search(ctx context.Context, query string) ([]Photo, error) {
	u, err := url.Parse(c.baseURL + "/search/photos")
	if err != nil {
		return nil, fmt.Errorf("invalid image search URL: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return sr.Results, nil
}
