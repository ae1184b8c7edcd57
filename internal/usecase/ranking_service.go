package usecase

import (
	"sort"
	"strings"

	"github.com/lumi/backend/internal/domain"
)

// Ranking weights and limits
const (
	exactMatchWeight   = 3
	partialMatchWeight = 1
	maxSuggestions     = 3
	maxClusterSignals  = 30
)

// RankingService scores the static product catalog against query keywords
type RankingService struct {
	products []domain.ProductSuggestion
	indexed  []indexedProduct
}

// indexedProduct caches the lower-cased match surfaces of a catalog item
type indexedProduct struct {
	words map[string]bool // tags plus title, vibe and reason words
	text  string          // everything searchable, lower-cased
}

// NewRankingService creates a ranking service over a fixed catalog
func NewRankingService(products []domain.ProductSuggestion) *RankingService {
	indexed := make([]indexedProduct, len(products))
	for i, product := range products {
		words := make(map[string]bool)
		for _, tag := range product.Tags {
			words[strings.ToLower(strings.TrimSpace(tag))] = true
		}
		for _, field := range []string{product.Title, product.Vibe, product.Reason} {
			for _, word := range tokenize(field) {
				words[word] = true
			}
		}

		indexed[i] = indexedProduct{
			words: words,
			text: strings.ToLower(strings.Join([]string{
				product.Title, product.Vibe, product.Reason, strings.Join(product.Tags, " "),
			}, " ")),
		}
	}

	return &RankingService{
		products: append([]domain.ProductSuggestion(nil), products...),
		indexed:  indexed,
	}
}

// Rank returns up to three catalog items for the query. When clusters are
// given, the first words of their titles and summaries are added as signals.
// An empty query returns the first three catalog items.
func (s *RankingService) Rank(query string, clusters []domain.TrendCluster) []domain.ProductSuggestion {
	if strings.TrimSpace(query) == "" {
		return s.head(maxSuggestions)
	}

	signals := tokenize(query)
	signals = append(signals, clusterSignals(clusters)...)

	type scored struct {
		index int
		score int
	}
	entries := make([]scored, len(s.products))
	for i := range s.products {
		entries[i] = scored{index: i, score: s.score(i, signals)}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].score != entries[b].score {
			return entries[a].score > entries[b].score
		}
		return strings.ToLower(s.products[entries[a].index].Title) < strings.ToLower(s.products[entries[b].index].Title)
	})

	seen := make(map[string]bool, maxSuggestions)
	results := make([]domain.ProductSuggestion, 0, maxSuggestions)
	add := func(product domain.ProductSuggestion) {
		if len(results) >= maxSuggestions || seen[product.ID] {
			return
		}
		seen[product.ID] = true
		results = append(results, product)
	}

	for _, entry := range entries {
		if entry.score > 0 {
			add(s.products[entry.index])
		}
	}
	// Pad with the next-highest items regardless of score
	for _, entry := range entries {
		add(s.products[entry.index])
	}

	return results
}

// Score reports the keyword score of the catalog item with the given id
func (s *RankingService) Score(productID, query string) int {
	for i, product := range s.products {
		if product.ID == productID {
			return s.score(i, tokenize(query))
		}
	}
	return 0
}

func (s *RankingService) score(index int, signals []string) int {
	item := s.indexed[index]
	counted := make(map[string]bool, len(signals))

	total := 0
	for _, signal := range signals {
		if counted[signal] {
			continue
		}
		counted[signal] = true

		switch {
		case item.words[signal]:
			total += exactMatchWeight
		case strings.Contains(item.text, signal):
			total += partialMatchWeight
		}
	}
	return total
}

func (s *RankingService) head(n int) []domain.ProductSuggestion {
	if n > len(s.products) {
		n = len(s.products)
	}
	return append([]domain.ProductSuggestion(nil), s.products[:n]...)
}

// clusterSignals returns the first words of the concatenated cluster titles and summaries
func clusterSignals(clusters []domain.TrendCluster) []string {
	var signals []string
	for _, cluster := range clusters {
		signals = append(signals, tokenize(cluster.Title+" "+cluster.Summary)...)
		if len(signals) >= maxClusterSignals {
			return signals[:maxClusterSignals]
		}
	}
	return signals
}

// tokenize lower-cases text and splits it on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// Product looks up a catalog item by id
func (s *RankingService) Product(id string) (domain.ProductSuggestion, bool) {
	for _, product := range s.products {
		if product.ID == id {
			return product, true
		}
	}
	return domain.ProductSuggestion{}, false
}
