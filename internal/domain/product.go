package domain

// ProductSuggestion is a static catalog item ranked against search queries
type ProductSuggestion struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Retailer string   `json:"retailer" yaml:"retailer"`
	URL      string   `json:"url" yaml:"url"`
	Reason   string   `json:"reason" yaml:"reason"`
	Vibe     string   `json:"vibe" yaml:"vibe"`
	Tags     []string `json:"tags,omitempty" yaml:"tags"`
}

// StyleLook is a curated look shown on the Discover tab
type StyleLook struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Vibe        string   `json:"vibe" yaml:"vibe"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// ProductSearchResult is a single hit from the web search upstream
type ProductSearchResult struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Theme is the persisted UI theme preference
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}
