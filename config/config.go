package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/lumi/backend/internal/domain"
	"github.com/spf13/viper"
)

// Version is the release reported by the health check and lumictl
const Version = "1.0.0"

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Trends       TrendsConfig
	Pollinations PollinationsConfig
	Firecrawl    FirecrawlConfig
	Cache        CacheConfig
	Storage      StorageConfig
	RateLimit    RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TrendsConfig holds trend scraping configuration
type TrendsConfig struct {
	Sources         []domain.TrendSource `mapstructure:"sources"`
	FetchTimeout    time.Duration        `mapstructure:"fetch_timeout"`
	MaxDocumentSize int64                `mapstructure:"max_document_size"`
	SnapshotTTL     time.Duration        `mapstructure:"snapshot_ttl"`
	RefreshInterval time.Duration        `mapstructure:"refresh_interval"` // 0 disables background refresh
}

// PollinationsConfig holds text and image model endpoints
type PollinationsConfig struct {
	TextBaseURL  string `mapstructure:"text_base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	ImageModel   string `mapstructure:"image_model"`
}

// FirecrawlConfig holds web search configuration
type FirecrawlConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// StorageConfig holds preference persistence configuration
type StorageConfig struct {
	Type string `mapstructure:"type"` // "sqlite" or "memory"
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`   // requests per minute per client IP
	Upstream int `mapstructure:"upstream"` // requests per minute to each upstream API
}

// DefaultSources are the publications scraped when no sources are configured
var DefaultSources = []domain.TrendSource{
	{ID: "vogue", Label: "Vogue Runway", URL: "https://r.jina.ai/https://www.vogue.com/fashion/trends", Kind: domain.SourceKindHTML},
	{ID: "whowhatwear", Label: "Who What Wear", URL: "https://r.jina.ai/https://www.whowhatwear.com/fashion-trends", Kind: domain.SourceKindHTML},
	{ID: "gq", Label: "GQ Style", URL: "https://r.jina.ai/https://www.gq.com/about/fashion-trends", Kind: domain.SourceKindHTML},
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lumi/")

	// Environment variable settings
	v.SetEnvPrefix("LUMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployments commonly export the bare key name
	_ = v.BindEnv("firecrawl.api_key", "LUMI_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY")

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Trends.Sources) == 0 {
		config.Trends.Sources = append([]domain.TrendSource(nil), DefaultSources...)
	}
	for i := range config.Trends.Sources {
		if config.Trends.Sources[i].Kind == "" {
			config.Trends.Sources[i].Kind = domain.SourceKindHTML
		}
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5174")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Trend defaults
	v.SetDefault("trends.fetch_timeout", "15s")
	v.SetDefault("trends.max_document_size", 4<<20)
	v.SetDefault("trends.snapshot_ttl", "30m")
	v.SetDefault("trends.refresh_interval", "0s")

	// Upstream defaults
	v.SetDefault("pollinations.text_base_url", "https://text.pollinations.ai")
	v.SetDefault("pollinations.image_base_url", "https://image.pollinations.ai")
	v.SetDefault("pollinations.image_model", "flux-realism")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev")

	// Cache defaults
	v.SetDefault("cache.type", "memory")

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", defaultStoragePath())

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.upstream", 60)
}

// defaultStoragePath places the preferences database in the XDG data dir
func defaultStoragePath() string {
	if xdg.DataHome == "" {
		return filepath.Join(os.TempDir(), "lumi", "lumi.db")
	}
	return filepath.Join(xdg.DataHome, "lumi", "lumi.db")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Storage.Type != "sqlite" && config.Storage.Type != "memory" {
		return fmt.Errorf("storage type must be 'sqlite' or 'memory', got: %s", config.Storage.Type)
	}

	if config.Storage.Type == "sqlite" && config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage type is 'sqlite'")
	}

	seen := make(map[string]bool, len(config.Trends.Sources))
	for _, src := range config.Trends.Sources {
		if src.ID == "" || src.URL == "" {
			return fmt.Errorf("trend sources need an id and url")
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate trend source id: %s", src.ID)
		}
		seen[src.ID] = true
		if src.Kind != domain.SourceKindHTML && src.Kind != domain.SourceKindRSS {
			return fmt.Errorf("trend source %s: kind must be 'html' or 'rss', got: %s", src.ID, src.Kind)
		}
	}

	if config.Trends.FetchTimeout <= 0 {
		return fmt.Errorf("trends fetch timeout must be positive")
	}

	return nil
}
