package scrape

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lumi/backend/internal/domain"
	"golang.org/x/net/html/charset"
)

const defaultSizeCap = 4 << 20

// StatusError reports a non-success response from a source
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrSourceFetch
}

// Fetcher downloads trend source documents and decodes them to UTF-8
type Fetcher struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

// NewFetcher creates a fetcher with the given request timeout and body size cap
func NewFetcher(timeout time.Duration, sizeCap int64) *Fetcher {
	if sizeCap <= 0 {
		sizeCap = defaultSizeCap
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "Lumi/1.0 (+https://lumi.ai)",
	}
}

// Fetch retrieves rawURL and returns its body as text.
// Non-2xx responses are reported as errors wrapping domain.ErrSourceFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: invalid url %q", domain.ErrSourceFetch, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[SCRAPE] %s returned status %d", rawURL, resp.StatusCode)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrSourceFetch, err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, f.sizeCap))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrSourceFetch, err)
	}

	return decodeUTF8(data, resp.Header.Get("Content-Type")), nil
}

// decodeUTF8 converts data to UTF-8 using the declared or sniffed charset
func decodeUTF8(data []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return string(bytes.ToValidUTF8(data, []byte(" ")))
		}
		return string(data)
	}
	return string(decoded)
}
