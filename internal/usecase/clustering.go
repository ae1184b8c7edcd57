package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumi/backend/internal/domain"
)

// Cluster layout
const (
	clusterCount      = 3
	clusterSize       = 5
	clusterTarget     = clusterCount * clusterSize
	minLiveExamples   = 5
	minKeywordLength  = 4
	titleKeywordCount = 2
	summaryKeywords   = 4
)

// Warnings reported alongside a clustering result
const (
	WarningFallback     = "Unable to pull live headlines. Showing curated fallback."
	WarningSupplemented = "Supplemented live scrape with Lumi archive to complete three stories."
	WarningRefreshError = "Unable to refresh trends right now."
)

// clusterStopWords are ignored when counting title keywords
var clusterStopWords = map[string]bool{
	"with": true, "from": true, "that": true, "this": true, "your": true,
	"into": true, "their": true, "about": true, "after": true, "these": true,
	"those": true, "while": true, "where": true, "which": true, "style": true,
	"trend": true, "looks": true, "fashion": true, "season": true,
}

// ClusterResult is the output of one clustering pass
type ClusterResult struct {
	Clusters     []domain.TrendCluster
	Warning      string
	UsedFallback bool
}

// TrendClusterer buckets trend examples into fixed-size capsule clusters
type TrendClusterer struct {
	fallback []domain.TrendCluster
}

// NewTrendClusterer creates a clusterer backed by the given fallback clusters.
// The fallback examples double as the padding pool.
func NewTrendClusterer(fallback []domain.TrendCluster) *TrendClusterer {
	return &TrendClusterer{fallback: fallback}
}

// Fallback returns a copy of the canned cluster set
func (c *TrendClusterer) Fallback() []domain.TrendCluster {
	out := make([]domain.TrendCluster, len(c.fallback))
	for i, cluster := range c.fallback {
		cluster.Examples = append([]domain.TrendExample(nil), cluster.Examples...)
		out[i] = cluster
	}
	return out
}

// Cluster deduplicates examples, pads them from the fallback pool when short,
// and partitions them into three clusters of five in input order.
// The fallback and supplemented thresholds count the examples as scraped,
// before duplicates are dropped.
func (c *TrendClusterer) Cluster(examples []domain.TrendExample) ClusterResult {
	if len(examples) < minLiveExamples {
		return ClusterResult{
			Clusters:     c.Fallback(),
			Warning:      WarningFallback,
			UsedFallback: true,
		}
	}

	var warning string
	if len(examples) < clusterTarget {
		warning = WarningSupplemented
	}

	deduped := UniqueExamples(examples)
	if len(deduped) < clusterTarget {
		deduped = c.pad(deduped)
	}

	clusters := make([]domain.TrendCluster, 0, clusterCount)
	for i := 0; i < clusterCount; i++ {
		start := i * clusterSize
		end := start + clusterSize
		if end > len(deduped) {
			return ClusterResult{
				Clusters:     c.Fallback(),
				Warning:      WarningFallback,
				UsedFallback: true,
			}
		}
		clusters = append(clusters, c.buildCluster(i, deduped[start:end]))
	}

	return ClusterResult{Clusters: clusters, Warning: warning}
}

// pad appends fallback examples whose titles are not already present until the target is met
func (c *TrendClusterer) pad(examples []domain.TrendExample) []domain.TrendExample {
	seen := make(map[string]bool, len(examples))
	for _, example := range examples {
		seen[strings.ToLower(example.Title)] = true
	}

	padded := append([]domain.TrendExample(nil), examples...)
	for _, cluster := range c.fallback {
		for _, example := range cluster.Examples {
			if len(padded) >= clusterTarget {
				return padded
			}
			key := strings.ToLower(example.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			padded = append(padded, example)
		}
	}
	return padded
}

func (c *TrendClusterer) buildCluster(index int, slice []domain.TrendExample) domain.TrendCluster {
	keywords := ExtractKeywords(slice)

	var title string
	if len(keywords) >= titleKeywordCount {
		formatted := make([]string, titleKeywordCount)
		for i, word := range keywords[:titleKeywordCount] {
			formatted[i] = capitalize(word)
		}
		title = strings.Join(formatted, " + ") + " Capsule"
	} else if index < len(c.fallback) {
		title = c.fallback[index].Title
	} else {
		title = fmt.Sprintf("Trend Story %d", index+1)
	}

	var sources []string
	seenSources := make(map[string]bool)
	for _, example := range slice {
		if !seenSources[example.Source] {
			seenSources[example.Source] = true
			sources = append(sources, example.Source)
		}
	}

	top := keywords
	if len(top) > summaryKeywords {
		top = top[:summaryKeywords]
	}
	highlights := strings.Join(top, ", ")
	if highlights == "" {
		highlights = "editor-favorite"
	}

	return domain.TrendCluster{
		ID:    fmt.Sprintf("cluster-%d", index),
		Title: title,
		Summary: fmt.Sprintf(
			"Signals from %s highlight %s textures and silhouettes. Use these five looks to brief your next shoot or shopping trip.",
			strings.Join(sources, " & "), highlights,
		),
		Examples: append([]domain.TrendExample(nil), slice...),
	}
}

// ExtractKeywords counts title words of four or more letters that are not
// stop words and returns them by descending frequency. Ties keep the order
// in which the words were first seen.
func ExtractKeywords(examples []domain.TrendExample) []string {
	counts := make(map[string]int)
	var order []string

	for _, example := range examples {
		words := strings.FieldsFunc(strings.ToLower(example.Title), func(r rune) bool {
			return r < 'a' || r > 'z'
		})
		for _, word := range words {
			if len(word) < minKeywordLength || clusterStopWords[word] {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// UniqueExamples drops examples whose lower-cased title was already seen
func UniqueExamples(examples []domain.TrendExample) []domain.TrendExample {
	seen := make(map[string]bool, len(examples))
	out := make([]domain.TrendExample, 0, len(examples))
	for _, example := range examples {
		key := strings.ToLower(example.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, example)
	}
	return out
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
