package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumi/backend/config"
	"github.com/lumi/backend/internal/catalog"
	httpDelivery "github.com/lumi/backend/internal/delivery/http"
	"github.com/lumi/backend/internal/delivery/ws"
	"github.com/lumi/backend/internal/domain"
	"github.com/lumi/backend/internal/infrastructure/cache"
	"github.com/lumi/backend/internal/infrastructure/firecrawl"
	"github.com/lumi/backend/internal/infrastructure/pollinations"
	"github.com/lumi/backend/internal/infrastructure/scrape"
	"github.com/lumi/backend/internal/infrastructure/storage"
	"github.com/lumi/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Lumi Backend v%s", config.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)
	log.Printf("Storage: %s", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Initialize infrastructure dependencies
	snapshotCache, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer closeCache()

	store, closeStore, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open preference storage: %v", err)
	}
	defer closeStore()

	fetcher := scrape.NewFetcher(cfg.Trends.FetchTimeout, cfg.Trends.MaxDocumentSize)

	models := pollinations.NewClient(pollinations.Config{
		TextBaseURL:  cfg.Pollinations.TextBaseURL,
		ImageBaseURL: cfg.Pollinations.ImageBaseURL,
		ImageModel:   cfg.Pollinations.ImageModel,
	}, cfg.RateLimit.Upstream)

	var searcher domain.WebSearcher
	if cfg.Firecrawl.APIKey != "" {
		searcher = firecrawl.NewClient(cfg.Firecrawl.APIKey, cfg.Firecrawl.BaseURL, cfg.RateLimit.Upstream)
		log.Printf("Firecrawl configured: %s", cfg.Firecrawl.BaseURL)
	} else {
		log.Printf("WARNING: FIRECRAWL_API_KEY not configured - product search will fail!")
	}

	// Initialize usecase layer
	trendService := usecase.NewTrendService(
		fetcher,
		snapshotCache,
		usecase.NewTrendClusterer(data.FallbackClusters()),
		usecase.TrendServiceConfig{
			Sources:     cfg.Trends.Sources,
			SnapshotTTL: cfg.Trends.SnapshotTTL,
		},
	)
	for _, source := range cfg.Trends.Sources {
		log.Printf("Trend source: %s (%s, %s)", source.ID, source.Kind, source.URL)
	}

	hub := ws.NewHub()
	trendService.OnSnapshot(hub.BroadcastSnapshot)
	go trendService.Run(ctx, cfg.Trends.RefreshInterval)

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Trends:        trendService,
		Ranking:       usecase.NewRankingService(data.Products()),
		Looks:         usecase.NewLookSearch(data.Looks()),
		Style:         usecase.NewStyleService(models),
		TryOn:         usecase.NewTryOnService(models),
		ProductSearch: usecase.NewProductSearchService(searcher),
		Preferences:   usecase.NewPreferencesService(ctx, store),
	})

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, hub)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// newCache builds the snapshot cache selected by configuration
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache()
	return memoryCache, func() { _ = memoryCache.Close() }, nil
}

// newStore opens the preference store selected by configuration
func newStore(cfg config.StorageConfig) (domain.KeyValueStore, func(), error) {
	if cfg.Type == "memory" {
		memoryStore := storage.NewMemoryStore()
		return memoryStore, func() { _ = memoryStore.Close() }, nil
	}

	sqliteStore, err := storage.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Preferences stored at %s", cfg.Path)
	return sqliteStore, func() { _ = sqliteStore.Close() }, nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
