package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Upstream feed
	FeedURL     string
	FeedTimeout time.Duration

	// Engine
	BaseCurrency  string
	CacheTTL      time.Duration
	RetentionDays int

	// HTTP
	RateLimit      string // ulule/limiter formatted, e.g. "120-M"
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ECB_FEED_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml")
	viper.SetDefault("FEED_TIMEOUT", "10s")
	viper.SetDefault("BASE_CURRENCY", "EUR")
	viper.SetDefault("CACHE_TTL", "24h")
	viper.SetDefault("RETENTION_DAYS", 30)
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.FeedURL = viper.GetString("ECB_FEED_URL")
	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	cfg.RetentionDays = viper.GetInt("RETENTION_DAYS")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.AllowedOrigins = viper.GetStringSlice("ALLOWED_ORIGINS")

	feedTimeout, err := time.ParseDuration(viper.GetString("FEED_TIMEOUT"))
	if err != nil {
		feedTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for FEED_TIMEOUT. Defaulting to %s.\n", feedTimeout)
	}
	cfg.FeedTimeout = feedTimeout

	cacheTTL, err := time.ParseDuration(viper.GetString("CACHE_TTL"))
	if err != nil {
		cacheTTL = 24 * time.Hour
		log.Printf("Warning: Invalid value for CACHE_TTL. Defaulting to %s.\n", cacheTTL)
	}
	cfg.CacheTTL = cacheTTL

	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
		log.Printf("Warning: Invalid value for RETENTION_DAYS. Defaulting to %d.\n", cfg.RetentionDays)
	}

	return cfg, nil
}
