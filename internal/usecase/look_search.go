package usecase

import (
	"strings"

	"github.com/lumi/backend/internal/domain"
)

const defaultLookCount = 3

// LookSearch filters the curated Discover looks by keyword
type LookSearch struct {
	looks []domain.StyleLook
}

// NewLookSearch creates a look search over a fixed set of looks
func NewLookSearch(looks []domain.StyleLook) *LookSearch {
	return &LookSearch{looks: append([]domain.StyleLook(nil), looks...)}
}

// Search returns the looks whose title, vibe or any tag contains a query word
// or is contained in one. An empty query returns the first three looks.
func (s *LookSearch) Search(query string) []domain.StyleLook {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		n := defaultLookCount
		if n > len(s.looks) {
			n = len(s.looks)
		}
		return append([]domain.StyleLook(nil), s.looks[:n]...)
	}

	keywords := strings.Fields(query)
	results := []domain.StyleLook{}
	for _, look := range s.looks {
		fields := append([]string{look.Title, look.Vibe}, look.Tags...)
		for _, field := range fields {
			if matchesAnyKeyword(strings.ToLower(field), keywords) {
				results = append(results, look)
				break
			}
		}
	}
	return results
}

func matchesAnyKeyword(field string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(field, word) || strings.Contains(word, field) {
			return true
		}
	}
	return false
}
