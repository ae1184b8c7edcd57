// Package catalog holds the static data shipped with the service: the product
// library used for ranking, the curated Discover looks, and the fallback trend
// clusters shown when live scraping comes up short.
package catalog

import (
	"embed"
	"fmt"
	"sync"

	"github.com/lumi/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Catalog is the immutable static data set
type Catalog struct {
	products []domain.ProductSuggestion
	looks    []domain.StyleLook
	fallback []domain.TrendCluster
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsing it on first use
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = load()
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without the catalog
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from explicit data, mainly for tests
func New(products []domain.ProductSuggestion, looks []domain.StyleLook, fallback []domain.TrendCluster) *Catalog {
	return &Catalog{products: products, looks: looks, fallback: fallback}
}

func load() (*Catalog, error) {
	c := &Catalog{}
	if err := decode("data/products.yaml", &c.products); err != nil {
		return nil, err
	}
	if err := decode("data/looks.yaml", &c.looks); err != nil {
		return nil, err
	}
	if err := decode("data/fallback_trends.yaml", &c.fallback); err != nil {
		return nil, err
	}
	for _, cluster := range c.fallback {
		if len(cluster.Examples) != 5 {
			return nil, fmt.Errorf("fallback cluster %s has %d examples, want 5", cluster.ID, len(cluster.Examples))
		}
	}
	return c, nil
}

func decode(name string, out interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// Products returns the product library in catalog order
func (c *Catalog) Products() []domain.ProductSuggestion {
	return append([]domain.ProductSuggestion(nil), c.products...)
}

// Looks returns the curated Discover looks
func (c *Catalog) Looks() []domain.StyleLook {
	return append([]domain.StyleLook(nil), c.looks...)
}

// FallbackClusters returns a deep copy of the canned trend clusters
func (c *Catalog) FallbackClusters() []domain.TrendCluster {
	out := make([]domain.TrendCluster, len(c.fallback))
	for i, cluster := range c.fallback {
		cluster.Examples = append([]domain.TrendExample(nil), cluster.Examples...)
		out[i] = cluster
	}
	return out
}

// FallbackExamples returns every fallback example in cluster order
func (c *Catalog) FallbackExamples() []domain.TrendExample {
	var out []domain.TrendExample
	for _, cluster := range c.fallback {
		out = append(out, cluster.Examples...)
	}
	return out
}
