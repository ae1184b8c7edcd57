package pollinations

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumi/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxTextResponseSize = 1 << 20
	imageWidth          = 768
	imageHeight         = 1024
)

// Config holds the Pollinations endpoints
type Config struct {
	TextBaseURL  string
	ImageBaseURL string
	ImageModel   string
}

// Client talks to the Pollinations text and image APIs
type Client struct {
	httpClient   *http.Client
	textBaseURL  string
	imageBaseURL string
	imageModel   string
	rateLimiter  *rate.Limiter
}

// NewClient creates a new Pollinations client that sends at most
// requestsPerMinute requests; zero or less disables throttling.
func NewClient(config Config, requestsPerMinute int) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}

	return &Client{
		httpClient: &http.Client{
			// Image renders can take a while on cold models
			Timeout: 90 * time.Second,
		},
		textBaseURL:  strings.TrimRight(config.TextBaseURL, "/"),
		imageBaseURL: strings.TrimRight(config.ImageBaseURL, "/"),
		imageModel:   config.ImageModel,
		rateLimiter:  limiter,
	}
}

// GenerateText sends the prompt as the URL path and returns the plain-text completion
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := c.textBaseURL + "/" + encodeURIComponent(prompt)
	resp, err := c.doRequest(ctx, reqURL, "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[POLLINATIONS] Text API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: text status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	log.Printf("[POLLINATIONS] Text completion received (%d bytes)", len(body))
	return string(body), nil
}

// GenerateImage builds the image URL for the prompt and fetches it once so an
// upstream failure is reported before the URL is handed to the browser.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	imageURL := c.ImageURL(prompt)
	resp, err := c.doRequest(ctx, imageURL, "image/*")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[POLLINATIONS] Image API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: image status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return imageURL, nil
}

// ImageURL returns the render URL for a prompt
func (c *Client) ImageURL(prompt string) string {
	return fmt.Sprintf("%s/prompt/%s?nologo=true&enhance=true&model=%s&width=%d&height=%d",
		c.imageBaseURL, encodeURIComponent(prompt), url.QueryEscape(c.imageModel), imageWidth, imageHeight)
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "Lumi/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[POLLINATIONS] Request error: %v", err)
		return nil, fmt.Errorf("%w: pollinations request failed: %v", domain.ErrUpstreamFailure, err)
	}
	return resp, nil
}

// encodeURIComponent percent-encodes s for use as a single path segment,
// spaces included.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
