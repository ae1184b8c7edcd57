package domain

import "time"

// SourceStatus is the lifecycle state of a trend source within one refresh cycle
type SourceStatus string

const (
	SourceStatusIdle    SourceStatus = "idle"
	SourceStatusLoading SourceStatus = "loading"
	SourceStatusOK      SourceStatus = "ok"
	SourceStatusError   SourceStatus = "error"
)

// SourceKind selects how a trend source document is parsed
type SourceKind string

const (
	SourceKindHTML SourceKind = "html" // HTML page or reader-proxy markdown
	SourceKindRSS  SourceKind = "rss"  // RSS or Atom feed
)

// TrendExample is a single headline scraped from a trend source.
// The lower-cased title is the dedupe key.
type TrendExample struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
	Link    string `json:"link"`
}

// TrendCluster is a themed bundle of exactly five examples
type TrendCluster struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Summary  string         `json:"summary"`
	Examples []TrendExample `json:"examples"`
}

// TrendSource is a configured publication to scrape headlines from
type TrendSource struct {
	ID    string     `json:"id" mapstructure:"id"`
	Label string     `json:"label" mapstructure:"label"`
	URL   string     `json:"url" mapstructure:"url"`
	Kind  SourceKind `json:"kind" mapstructure:"kind"`
}

// TrendSourceStatus records the outcome of fetching one source in a refresh cycle
type TrendSourceStatus struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	URL    string         `json:"url"`
	Status SourceStatus   `json:"status"`
	Items  []TrendExample `json:"items"`
	Error  string         `json:"error,omitempty"`
}

// TrendSnapshot is the result of one aggregation pass
type TrendSnapshot struct {
	RefreshID    string              `json:"refreshId"`
	Clusters     []TrendCluster      `json:"clusters"`
	Sources      []TrendSourceStatus `json:"sources"`
	Warning      string              `json:"warning,omitempty"`
	UsedFallback bool                `json:"usedFallback"`
	RefreshedAt  time.Time           `json:"refreshedAt"`
}
