package scrape

import (
	"log"

	"github.com/lumi/backend/internal/domain"
	"github.com/mmcdole/gofeed"
)

// FeedHeadlines returns the item titles of an RSS or Atom document, filtered
// like page headings. Documents that do not parse as feeds are scanned for
// headings instead.
func FeedHeadlines(document string) []string {
	feed, err := gofeed.NewParser().ParseString(document)
	if err != nil {
		log.Printf("[SCRAPE] document is not a feed (%v), scanning headings", err)
		return ExtractHeadlines(document)
	}

	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		titles = append(titles, nodeTextFromMarkup(item.Title))
	}
	return FilterHeadlines(titles)
}

// Headlines dispatches on the source kind
func Headlines(kind domain.SourceKind, document string) []string {
	if kind == domain.SourceKindRSS {
		return FeedHeadlines(document)
	}
	return ExtractHeadlines(document)
}
