package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
// It is built once at process start and handed by reference to every component,
// so a missing credential surfaces before any I/O begins.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	NewsAPIKey   string `mapstructure:"news_api_key"`
	NewsEndpoint string `mapstructure:"news_endpoint"`
	NewsTopic    string `mapstructure:"news_topic"`
	NewsExclude  string `mapstructure:"news_exclude"`
	NewsLanguage string `mapstructure:"news_language"`
	NewsPageSize int    `mapstructure:"news_page_size"`

	FetchRetries        int           `mapstructure:"fetch_retries"`
	FetchBackoffSeconds int64         `mapstructure:"fetch_backoff_seconds"`
	FetchBackoff        time.Duration `mapstructure:"-"`

	OpenAIKey      string `mapstructure:"openai_api_key"`
	OpenAIEndpoint string `mapstructure:"openai_endpoint"`
	OpenAIModel    string `mapstructure:"openai_model"`

	DatabaseURL string `mapstructure:"database_url"`

	FacebookPageID      string `mapstructure:"facebook_page_id"`
	FacebookAccessToken string `mapstructure:"facebook_access_token"`
	FacebookAppSecret   string `mapstructure:"facebook_app_secret"`
	GraphEndpoint       string `mapstructure:"graph_endpoint"`

	SiteBaseURL     string `mapstructure:"site_base_url"`
	CatalogEndpoint string `mapstructure:"catalog_endpoint"`
	CatalogToken    string `mapstructure:"catalog_token"`

	PostDelaySeconds int64         `mapstructure:"post_delay_seconds"`
	PostDelay        time.Duration `mapstructure:"-"`

	SelectorsFile string `mapstructure:"selectors_file"`
	SinksFile     string `mapstructure:"sinks_file"`

	CacheType            string        `mapstructure:"cache_type"`
	CachePath            string        `mapstructure:"cache_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "rubro-news-pipeline")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	// Credential keys default to empty so viper registers them; AutomaticEnv
	// only overrides keys it already knows about.
	v.SetDefault("news_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("database_url", "")
	v.SetDefault("facebook_page_id", "")
	v.SetDefault("facebook_access_token", "")
	v.SetDefault("facebook_app_secret", "")
	v.SetDefault("catalog_endpoint", "")
	v.SetDefault("catalog_token", "")

	v.SetDefault("news_endpoint", "https://newsapi.org/v2/everything")
	v.SetDefault("news_topic", "Flamengo")
	v.SetDefault("news_exclude", "flamenguista")
	v.SetDefault("news_language", "pt")
	v.SetDefault("news_page_size", 5)
	v.SetDefault("fetch_retries", 3)
	v.SetDefault("fetch_backoff_seconds", 5)

	v.SetDefault("openai_endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("openai_model", "gpt-4o-mini")

	v.SetDefault("graph_endpoint", "https://graph.facebook.com/v19.0")
	v.SetDefault("site_base_url", "https://www.orubronegronews.com")

	v.SetDefault("post_delay_seconds", 30)

	v.SetDefault("selectors_file", "./configs/selectors.yaml")
	v.SetDefault("sinks_file", "./configs/sinks.yaml")

	v.SetDefault("cache_type", "bbolt")
	v.SetDefault("cache_path", "./data/cache.db")
	v.SetDefault("cache_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.NewsPageSize <= 0 {
		return nil, fmt.Errorf("invalid news_page_size (must be positive)")
	}
	if cfg.FetchRetries <= 0 {
		return nil, fmt.Errorf("invalid fetch_retries (must be positive)")
	}
	if cfg.FetchBackoffSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_backoff_seconds (must be positive seconds)")
	}
	cfg.FetchBackoff = time.Duration(cfg.FetchBackoffSeconds) * time.Second

	if cfg.PostDelaySeconds < 0 {
		return nil, fmt.Errorf("invalid post_delay_seconds (must not be negative)")
	}
	cfg.PostDelay = time.Duration(cfg.PostDelaySeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	return &cfg, nil
}
