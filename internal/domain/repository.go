package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KeyValueStore persists small JSON-serialized preference values under fixed keys
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DocumentFetcher retrieves a trend source document as UTF-8 text
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextGenerator forwards a prompt to a text-generation model
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator forwards a prompt to an image-generation model and returns the image URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// WebSearchHit is a raw result from the web search upstream
type WebSearchHit struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// WebSearcher forwards a query to a web search API
type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]WebSearchHit, error)
}
