package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultAPIBasePath is the fallback base path for the HTTP API.
const DefaultAPIBasePath = "/api/v1"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Application configuration
	App AppConfig

	// Auth configuration
	Auth AuthConfig

	// Ranking recalculation configuration
	Recalc RecalcConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the server address in host:port format
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"workrank"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"workrank"`
	Database        string        `env:"POSTGRES_DB" envDefault:"workrank"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectionString returns the PostgreSQL connection string in URL format
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		int(d.ConnectTimeout.Seconds()),
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD" envDefault:""`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
}

// Address returns the Redis address in host:port format
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel        string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"APP_LOG_FORMAT" envDefault:"text"` // text or json
	TimeZone        string        `env:"APP_TIMEZONE" envDefault:"Asia/Tokyo"`
	CacheEnabled    bool          `env:"APP_CACHE_ENABLED" envDefault:"true"`
	RankingCacheTTL time.Duration `env:"APP_RANKING_CACHE_TTL" envDefault:"10m"`
	EnableMetrics   bool          `env:"APP_ENABLE_METRICS" envDefault:"true"`
	APIBasePath     string        `env:"APP_API_BASE_PATH" envDefault:"/api/v1"`

	CORSAllowedOrigins []string `env:"APP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// AuthConfig holds credentials for the protected route groups.
type AuthConfig struct {
	// AdminAPIKeyHash is the bcrypt hash of the admin API key. Admin
	// routes reject every request when it is empty.
	AdminAPIKeyHash string `env:"ADMIN_API_KEY_HASH" envDefault:""`

	// CronSecret is the bearer token for the cron trigger. An empty
	// secret keeps the trigger open outside production only.
	CronSecret string `env:"CRON_SECRET" envDefault:""`
}

// RecalcConfig holds ranking recalculation configuration
type RecalcConfig struct {
	ManualTopN int           `env:"RECALC_MANUAL_TOP_N" envDefault:"50"`
	CronTopN   int           `env:"RECALC_CRON_TOP_N" envDefault:"100"`
	Timeout    time.Duration `env:"RECALC_TIMEOUT" envDefault:"2m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables into config struct
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate database configuration
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database max connections (%d) must be >= min connections (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	// Validate Redis configuration
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		return fmt.Errorf("invalid redis database: %d (must be 0-15)", c.Redis.DB)
	}

	// Validate app configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.App.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)",
			c.App.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.App.LogFormat] {
		return fmt.Errorf("invalid log format: %s (must be text or json)",
			c.App.LogFormat)
	}

	validEnvironments := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvironments[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)",
			c.App.Environment)
	}

	if c.App.IsProduction() {
		if c.Auth.AdminAPIKeyHash == "" {
			return fmt.Errorf("admin api key hash is required in production")
		}
		if c.Auth.CronSecret == "" {
			return fmt.Errorf("cron secret is required in production")
		}
	}

	if c.Recalc.ManualTopN <= 0 {
		return fmt.Errorf("manual top n must be positive")
	}
	if c.Recalc.CronTopN <= 0 {
		return fmt.Errorf("cron top n must be positive")
	}
	if c.Recalc.Timeout <= 0 {
		return fmt.Errorf("recalc timeout must be positive")
	}

	return nil
}
