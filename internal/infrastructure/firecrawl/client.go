package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lumi/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Firecrawl search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

type searchRequest struct {
	Query       string      `json:"query"`
	PageOptions pageOptions `json:"pageOptions"`
}

type pageOptions struct {
	Limit int `json:"limit"`
}

type searchResponse struct {
	Data json.RawMessage `json:"data"`
}

type searchItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// NewClient creates a new Firecrawl client that sends at most
// requestsPerMinute requests; zero or less disables throttling.
func NewClient(apiKey, baseURL string, requestsPerMinute int) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: limiter,
	}
}

// Search runs a web search and returns the raw hits
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.WebSearchHit, error) {
	log.Printf("[FIRECRAWL] Search called with query: %q", query)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(searchRequest{Query: query, PageOptions: pageOptions{Limit: limit}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[FIRECRAWL] Request error: %v", err)
		return nil, fmt.Errorf("%w: firecrawl request failed: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[FIRECRAWL] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := decodeHits(searchResp.Data)
	log.Printf("[FIRECRAWL] Found %d results for query: %q", len(hits), query)
	return hits, nil
}

// decodeHits tolerates a missing or non-array data field and skips malformed items
func decodeHits(data json.RawMessage) []domain.WebSearchHit {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return []domain.WebSearchHit{}
	}

	hits := make([]domain.WebSearchHit, 0, len(items))
	for _, raw := range items {
		var item searchItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		hits = append(hits, domain.WebSearchHit{URL: item.URL, Title: item.Title})
	}
	return hits
}
