package http

import (
	"github.com/gin-gonic/gin"
	"github.com/lumi/backend/config"
	"github.com/lumi/backend/internal/delivery/ws"
)

// SetupRouter creates and configures the Gin router. hub may be nil, in which
// case the trend subscription endpoint is not mounted.
func SetupRouter(cfg *config.Config, handler *Handler, hub *ws.Hub) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.NoRoute(handler.NotFound)
	router.NoMethod(handler.MethodNotAllowed)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if hub != nil {
		router.GET("/ws/trends", hub.Handler(handler.LatestSnapshot))
	}

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		// Upstream proxies
		api.POST("/generate-style", handler.GenerateStyle)
		api.POST("/virtual-try-on", handler.VirtualTryOn)
		api.POST("/search-products", handler.SearchProducts)

		// Trend board
		trends := api.Group("/trends")
		{
			trends.GET("", handler.GetTrends)
			trends.POST("/refresh", handler.RefreshTrends)
			trends.GET("/sources", handler.GetTrendSources)
		}

		api.GET("/suggestions", handler.GetSuggestions)
		api.GET("/looks", handler.GetLooks)

		// Preferences
		api.GET("/saved", handler.GetSaved)
		api.POST("/saved", handler.SaveSuggestion)
		api.DELETE("/saved/:id", handler.RemoveSaved)
		api.GET("/theme", handler.GetTheme)
		api.PUT("/theme", handler.SetTheme)
		api.POST("/theme/toggle", handler.ToggleTheme)
	}

	return router
}
