package scrape

import (
	"testing"

	"github.com/lumi/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Elle Fashion</title>
<link>https://www.elle.com</link>
<item><title>Why everyone is wearing barrel-leg denim right now</title><link>https://www.elle.com/a</link></item>
<item><title>Gold jewelry stacks for the party season ahead</title><link>https://www.elle.com/b</link></item>
<item><title>Short one</title><link>https://www.elle.com/c</link></item>
<item><title>Why everyone is wearing barrel-leg denim right now</title><link>https://www.elle.com/d</link></item>
</channel></rss>`

func TestFeedHeadlines(t *testing.T) {
	headlines := FeedHeadlines(sampleFeed)

	assert.Equal(t, []string{
		"Why everyone is wearing barrel-leg denim right now",
		"Gold jewelry stacks for the party season ahead",
	}, headlines)
}

func TestFeedHeadlines_FallsBackToHeadings(t *testing.T) {
	headlines := FeedHeadlines("<h1>Not a feed but it has a long heading</h1>")

	assert.Equal(t, []string{"Not a feed but it has a long heading"}, headlines)
}

func TestHeadlines_DispatchesOnKind(t *testing.T) {
	assert.Len(t, Headlines(domain.SourceKindRSS, sampleFeed), 2)
	assert.Empty(t, Headlines(domain.SourceKindHTML, sampleFeed))
}
