package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"kbo_pickem"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"kbo_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL
	CacheTTLLeaderboard time.Duration `envconfig:"CACHE_TTL_LEADERBOARD" default:"60s"`
	CacheTTLTeams       time.Duration `envconfig:"CACHE_TTL_TEAMS" default:"24h"`

	// Application
	AppEnv             string `envconfig:"APP_ENV" default:"development"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort           int    `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Per-request deadline; crawl-backed requests get CrawlBudget of it
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	CrawlBudget    time.Duration `envconfig:"CRAWL_BUDGET" default:"45s"`

	// Crawler
	CrawlerURL     string        `envconfig:"CRAWLER_URL" default:""`
	CrawlerTimeout time.Duration `envconfig:"CRAWLER_TIMEOUT" default:"20s"`

	// Admin gate
	AdminPasswordHash  string        `envconfig:"ADMIN_PASSWORD_HASH" default:""`
	AdminSessionSecret string        `envconfig:"ADMIN_SESSION_SECRET" default:""`
	AdminSessionTTL    time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"12h"`

	// Leaderboard window used when the request does not name one
	LeaderboardFrom string `envconfig:"LEADERBOARD_FROM" default:"2025-07-24"`
	LeaderboardTo   string `envconfig:"LEADERBOARD_TO" default:"2025-08-17"`

	// Scheduler
	EnableScheduler   bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	EnableAutoFill    bool          `envconfig:"ENABLE_AUTOFILL" default:"false"`
	AutoFillCron      string        `envconfig:"AUTOFILL_CRON" default:"*/10 17-23 * * *"`
	EnableSettlement  bool          `envconfig:"ENABLE_SETTLEMENT" default:"false"`
	SettlementCron    string        `envconfig:"SETTLEMENT_CRON" default:"30 0 * * *"`
	SettlementPoints  int           `envconfig:"SETTLEMENT_POINTS" default:"1"`
	PoolStatsInterval time.Duration `envconfig:"POOL_STATS_INTERVAL" default:"15s"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.AdminPasswordHash != "" {
		if len(c.AdminPasswordHash) != 64 {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a hex encoded SHA-256 digest")
		}
		if c.AdminSessionSecret == "" {
			return fmt.Errorf("ADMIN_SESSION_SECRET is required when ADMIN_PASSWORD_HASH is set")
		}
	}

	from, err := time.Parse(DateLayout, c.LeaderboardFrom)
	if err != nil {
		return fmt.Errorf("LEADERBOARD_FROM: %w", err)
	}
	to, err := time.Parse(DateLayout, c.LeaderboardTo)
	if err != nil {
		return fmt.Errorf("LEADERBOARD_TO: %w", err)
	}
	if from.After(to) {
		return fmt.Errorf("LEADERBOARD_FROM must not be after LEADERBOARD_TO")
	}

	if c.EnableAutoFill && c.CrawlerURL == "" {
		return fmt.Errorf("CRAWLER_URL is required when ENABLE_AUTOFILL is set")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.CrawlBudget <= 0 || c.CrawlBudget >= c.RequestTimeout {
		return fmt.Errorf("CRAWL_BUDGET must be positive and below REQUEST_TIMEOUT")
	}

	if c.SettlementPoints < 0 {
		return fmt.Errorf("SETTLEMENT_POINTS must not be negative")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string in URL form
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// AdminEnabled reports whether the admin gate has a configured password hash
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// HTTPWriteTimeout leaves room after RequestTimeout for the error response to be written
func (c *Config) HTTPWriteTimeout() time.Duration {
	return c.RequestTimeout + 5*time.Second
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
