package domain

// StyleRequest is the body accepted by the style generation endpoint
type StyleRequest struct {
	Prompt string `json:"prompt"`
}

// StyleResponse is returned by the style generation endpoint
type StyleResponse struct {
	Response string   `json:"response"`
	Source   string   `json:"source"`
	Lines    []string `json:"lines,omitempty"`
}

// TryOnRequest is the body accepted by the virtual try-on endpoint
type TryOnRequest struct {
	UserImage   string `json:"userImage"`
	OutfitImage string `json:"outfitImage"`
}

// TryOnResponse is returned by the virtual try-on endpoint
type TryOnResponse struct {
	ImageURL string `json:"imageUrl"`
	Source   string `json:"source"`
}

// ProductSearchRequest is the body accepted by the product search endpoint
type ProductSearchRequest struct {
	Prompt string `json:"prompt"`
}

// ProductSearchResponse is returned by the product search endpoint
type ProductSearchResponse struct {
	Results []ProductSearchResult `json:"results"`
	Source  string                `json:"source"`
}
