package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream trade feed configuration
	Feed FeedConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Ingester configuration
	Ingester IngesterConfig

	// Listing configuration
	Listing ListingConfig

	// Logging configuration
	Log LogConfig
}

// FeedConfig holds Bitquery trade feed settings
type FeedConfig struct {
	URL            string        `envconfig:"BITQUERY_URL" default:"https://streaming.bitquery.io/eap"`
	APIKey         string        `envconfig:"BITQUERY_API_KEY"`
	AccessToken    string        `envconfig:"BITQUERY_ACCESS_TOKEN"`
	Protocol       string        `envconfig:"FEED_DEX_PROTOCOL" default:"pump"`
	RequestTimeout time.Duration `envconfig:"FEED_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Name            string        `envconfig:"DB_NAME"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// Configured reports whether the minimum store settings are present.
// The API process starts without them and surfaces a configuration
// error per request instead of refusing to boot.
func (c *DatabaseConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Name != ""
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// IngesterConfig holds ingestion pipeline settings
type IngesterConfig struct {
	MetricsPort  int           `envconfig:"INGESTER_METRICS_PORT" default:"8080"`
	PollInterval time.Duration `envconfig:"INGESTER_POLL_INTERVAL" default:"5m"`
	WorkerCount  int           `envconfig:"INGESTER_WORKER_COUNT" default:"4"`
	ArtifactPath string        `envconfig:"INGESTER_ARTIFACT_PATH" default:"response.json"`
}

// ListingConfig holds settings for the ranked memecoin listing
type ListingConfig struct {
	ItemsPerPage int `envconfig:"LISTING_ITEMS_PER_PAGE" default:"10"`

	// Notional supply used to derive market cap from the latest USD
	// price. Uniform across tokens until per-token supply is sourced.
	AssumedCirculatingSupply float64 `envconfig:"LISTING_ASSUMED_SUPPLY" default:"1000000000"`

	// IANA zone used to format created_at timestamps. Explicit so the
	// output does not depend on the deployment host's local zone.
	DisplayTimeZone string `envconfig:"LISTING_DISPLAY_TIMEZONE" default:"UTC"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
