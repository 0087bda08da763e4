// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Session  SessionConfig
	Mail     MailConfig
	Rates    RatesConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `envconfig:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Addr returns the host:port to listen on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// service on the built-in field and rule defaults without persistence.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	URL string `envconfig:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `envconfig:"DB_MAX_CONNS" default:"10"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed size per uploaded file in bytes (default: 20MB)
	MaxFileSize int64 `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxFiles is the maximum number of files per validation request (default: 10)
	MaxFiles int `envconfig:"UPLOAD_MAX_FILES" default:"10"`
}

// SessionConfig holds validation session retention settings.
type SessionConfig struct {
	// TTL is how long a validated upload stays retrievable (default: 24h)
	TTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// MailConfig holds email delivery settings. An empty token disables
// delivery; messages are logged and dropped.
type MailConfig struct {
	// Token is the Postmark server token
	Token string `envconfig:"POSTMARK_TOKEN"`

	// APIURL overrides the Postmark endpoint, for testing
	APIURL string `envconfig:"POSTMARK_API_URL"`

	// From is the sender address (default: reports@localhost)
	From string `envconfig:"MAIL_FROM" default:"reports@localhost"`

	// AdminTo receives manual-review and quarter-issue notifications
	AdminTo string `envconfig:"MAIL_ADMIN_TO"`
}

// RatesConfig holds exchange rate refresher settings.
type RatesConfig struct {
	// Enabled turns the background refresher on (default: true; needs a database)
	Enabled bool `envconfig:"RATES_REFRESH_ENABLED" default:"true"`

	// Currencies are the ISO codes to track (default: USD,GBP,CHF,SEK,DKK,PLN)
	Currencies []string `envconfig:"RATES_CURRENCIES" default:"USD,GBP,CHF,SEK,DKK,PLN"`

	// Interval is how often to refresh (default: 12h)
	Interval time.Duration `envconfig:"RATES_REFRESH_INTERVAL" default:"12h"`

	// APIURL overrides the ECB endpoint, for testing
	APIURL string `envconfig:"RATES_API_URL"`
}

// RateLimitConfig holds per-IP request throttling settings.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained per-IP request budget (default: 120)
	RequestsPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	// Burst is the short-term budget above the sustained rate (default: 30)
	Burst int `envconfig:"RATE_LIMIT_BURST" default:"30"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the output format: json or text (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from environment variables, applies defaults,
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Rate.RequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT %q is not json or text", c.Logging.Format)
	}
	if c.Mail.Token != "" && c.Mail.AdminTo == "" {
		return fmt.Errorf("MAIL_ADMIN_TO is required when POSTMARK_TOKEN is set")
	}
	return nil
}
