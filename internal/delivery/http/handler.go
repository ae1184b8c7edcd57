package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumi/backend/config"
	"github.com/lumi/backend/internal/domain"
	"github.com/lumi/backend/internal/usecase"
)

// maxBodySize bounds request bodies; try-on payloads carry base64 images
const maxBodySize = 25 << 20

const (
	msgInvalidJSON      = "Request body must be valid JSON."
	msgEmptyModelReply  = "No response from the language model."
	msgFirecrawlMissing = "FIRECRAWL_API_KEY is not configured on the server."
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgPrefsUnavailable = "Unable to save preferences right now."
)

var errInvalidJSON = errors.New("invalid JSON body")

// failureMessages are the client-facing messages for one proxy endpoint
type failureMessages struct {
	upstream string // upstream answered with a non-2xx status
	internal string // anything else
}

var (
	styleFailures = failureMessages{
		upstream: "Language model returned an error.",
		internal: "Failed to generate a style response.",
	}
	tryOnFailures = failureMessages{
		upstream: "Image model returned an error.",
		internal: "Failed to generate a virtual try-on image.",
	}
	productFailures = failureMessages{
		upstream: "Product search returned an error.",
		internal: "Failed to search for products.",
	}
)

// Services groups the usecases served over HTTP
type Services struct {
	Trends        *usecase.TrendService
	Ranking       *usecase.RankingService
	Looks         *usecase.LookSearch
	Style         *usecase.StyleService
	TryOn         *usecase.TryOnService
	ProductSearch *usecase.ProductSearchService
	Preferences   *usecase.PreferencesService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	trends        *usecase.TrendService
	ranking       *usecase.RankingService
	looks         *usecase.LookSearch
	style         *usecase.StyleService
	tryOn         *usecase.TryOnService
	productSearch *usecase.ProductSearchService
	preferences   *usecase.PreferencesService
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services) *Handler {
	return &Handler{
		trends:        services.Trends,
		ranking:       services.Ranking,
		looks:         services.Looks,
		style:         services.Style,
		tryOn:         services.TryOn,
		productSearch: services.ProductSearch,
		preferences:   services.Preferences,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lumi-backend",
		"version": config.Version,
	})
}

// GenerateStyle forwards the prompt to the text model and returns the stylist reply
func (h *Handler) GenerateStyle(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	response, err := h.style.Generate(c.Request.Context(), stringField(body, "prompt"))
	if err != nil {
		h.handleProxyError(c, "generate-style", err, styleFailures)
		return
	}

	c.JSON(http.StatusOK, response)
}

// VirtualTryOn asks the image model to composite the outfit onto the user photo
func (h *Handler) VirtualTryOn(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	response, err := h.tryOn.Generate(c.Request.Context(), domain.TryOnRequest{
		UserImage:   stringField(body, "userImage"),
		OutfitImage: stringField(body, "outfitImage"),
	})
	if err != nil {
		h.handleProxyError(c, "virtual-try-on", err, tryOnFailures)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchProducts runs a web search for shoppable items matching the prompt
func (h *Handler) SearchProducts(c *gin.Context) {
	// Checked before the body so a misconfigured server fails the same way for every request
	if !h.productSearch.Configured() {
		respondError(c, http.StatusInternalServerError, msgFirecrawlMissing)
		return
	}

	body, err := readBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	response, err := h.productSearch.Search(c.Request.Context(), stringField(body, "prompt"))
	if err != nil {
		h.handleProxyError(c, "search-products", err, productFailures)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTrends returns the latest trend snapshot, aggregating one if none is cached
func (h *Handler) GetTrends(c *gin.Context) {
	c.JSON(http.StatusOK, h.trends.Latest(c.Request.Context()))
}

// RefreshTrends forces a new aggregation pass
func (h *Handler) RefreshTrends(c *gin.Context) {
	c.JSON(http.StatusOK, h.trends.Refresh(c.Request.Context()))
}

// GetTrendSources lists the configured publications
func (h *Handler) GetTrendSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.trends.Sources()})
}

// GetSuggestions ranks the product catalog against ?q= and the current trend clusters
func (h *Handler) GetSuggestions(c *gin.Context) {
	query := c.Query("q")
	clusters := h.trends.Clusters(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": h.ranking.Rank(query, clusters),
	})
}

// GetLooks filters the curated looks by ?q=
func (h *Handler) GetLooks(c *gin.Context) {
	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"looks": h.looks.Search(query),
	})
}

// GetSaved lists the saved suggestions
func (h *Handler) GetSaved(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"saved": h.preferences.Saved()})
}

// SaveSuggestion adds a suggestion to the saved list. A body carrying only
// the id of a catalog item saves that item.
func (h *Handler) SaveSuggestion(c *gin.Context) {
	var suggestion domain.ProductSuggestion
	if err := decodeInto(c, &suggestion); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	if suggestion.Title == "" {
		if product, ok := h.ranking.Product(suggestion.ID); ok {
			suggestion = product
		}
	}

	saved, err := h.preferences.Save(c.Request.Context(), suggestion)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// RemoveSaved drops a suggestion from the saved list by id
func (h *Handler) RemoveSaved(c *gin.Context) {
	saved, err := h.preferences.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// GetTheme returns the persisted theme
func (h *Handler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.preferences.Theme()})
}

// SetTheme persists an explicit theme
func (h *Handler) SetTheme(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	theme, err := h.preferences.SetTheme(c.Request.Context(), domain.Theme(stringField(body, "theme")))
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// ToggleTheme flips between dark and light
func (h *Handler) ToggleTheme(c *gin.Context) {
	theme, err := h.preferences.ToggleTheme(c.Request.Context())
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// MethodNotAllowed answers requests whose path exists under another method
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// NotFound answers requests for unknown paths
func (h *Handler) NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, msgNotFound)
}

// handleProxyError maps usecase errors from the upstream proxies to status codes
func (h *Handler) handleProxyError(c *gin.Context, endpoint string, err error, messages failureMessages) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrNotConfigured):
		respondError(c, http.StatusInternalServerError, msgFirecrawlMissing)
	case errors.Is(err, domain.ErrEmptyUpstreamResponse):
		log.Printf("[API] %s: %v", endpoint, err)
		respondError(c, http.StatusBadGateway, msgEmptyModelReply)
	case errors.Is(err, domain.ErrUpstreamFailure):
		log.Printf("[API] %s: %v", endpoint, err)
		respondError(c, http.StatusBadGateway, messages.upstream)
	default:
		log.Printf("[API] %s failed: %v", endpoint, err)
		respondError(c, http.StatusInternalServerError, messages.internal)
	}
}

func (h *Handler) handlePreferenceError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		respondError(c, http.StatusBadRequest, validationErr.Message)
		return
	}

	log.Printf("[API] Preference write failed: %v", err)
	respondError(c, http.StatusInternalServerError, msgPrefsUnavailable)
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// readBody decodes a JSON object body. An empty body is treated as {}.
func readBody(c *gin.Context) (map[string]any, error) {
	body := make(map[string]any)
	if err := decodeInto(c, &body); err != nil {
		return nil, err
	}
	if body == nil {
		body = make(map[string]any)
	}
	return body, nil
}

func decodeInto(c *gin.Context, out any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	raw, err := c.GetRawData()
	if err != nil {
		return errInvalidJSON
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errInvalidJSON
	}
	return nil
}

// stringField returns body[key] when it is a string; anything else counts as missing
func stringField(body map[string]any, key string) string {
	value, _ := body[key].(string)
	return value
}

// LatestSnapshot feeds the first message of a trend subscription
func (h *Handler) LatestSnapshot(c *gin.Context) *domain.TrendSnapshot {
	return h.trends.Latest(c.Request.Context())
}
