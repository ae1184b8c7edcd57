package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/lumi/backend/internal/domain"
)

const (
	productSearchLimit   = 6
	defaultProductTitle  = "View product"
	unknownProductSource = "source"
)

// ProductSearchService looks up shoppable pages for a prompt through the web search API
type ProductSearchService struct {
	searcher domain.WebSearcher
}

// NewProductSearchService creates a product search service. A nil searcher
// means the integration has no credentials and every search is refused.
func NewProductSearchService(searcher domain.WebSearcher) *ProductSearchService {
	return &ProductSearchService{searcher: searcher}
}

// Configured reports whether the web search integration is available
func (s *ProductSearchService) Configured() bool {
	return s.searcher != nil
}

// Search forwards the prompt once and returns at most six results
func (s *ProductSearchService) Search(ctx context.Context, prompt string) (*domain.ProductSearchResponse, error) {
	if !s.Configured() {
		return nil, domain.ErrNotConfigured
	}
	if prompt == "" {
		return nil, domain.NewValidationError(msgPromptRequired)
	}

	hits, err := s.searcher.Search(ctx, prompt+" clothing site:com", productSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("product search: %w", err)
	}

	results := make([]domain.ProductSearchResult, 0, productSearchLimit)
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		title := hit.Title
		if title == "" {
			title = defaultProductTitle
		}
		results = append(results, domain.ProductSearchResult{
			URL:    hit.URL,
			Title:  title,
			Source: DomainLabel(hit.URL),
		})
		if len(results) == productSearchLimit {
			break
		}
	}

	return &domain.ProductSearchResponse{Results: results, Source: SourceFirecrawl}, nil
}

// DomainLabel returns the host of rawURL without a leading "www.", or
// "source" when rawURL is not an absolute URL.
func DomainLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return unknownProductSource
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
