// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory for the sqlite dedup store (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// RegionsFile optionally overrides the built-in calendar rules (YAML)
	RegionsFile string

	Alerts AlertsConfig
	Redis  RedisConfig
	Slack  SlackConfig

	StreamInterval time.Duration
}

// AlertsConfig controls the poll loop and dedup cache
type AlertsConfig struct {
	Enabled        bool
	Threshold      time.Duration // alerts fire this close to a transition; dedup TTL is twice this
	PollInterval   time.Duration
	RequestTimeout time.Duration
	NotifyPause    time.Duration
	DedupBackend   string // memory, redis or sqlite
}

// RedisConfig holds the redis dedup store connection
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// SlackConfig holds the webhook target. URL wins over Token when both are set.
type SlackConfig struct {
	WebhookToken string
	WebhookURL   string
}

var dedupBackends = map[string]bool{"memory": true, "redis": true, "sqlite": true}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvAsInt("PORT", 8000),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		RegionsFile: getEnv("REGIONS_FILE", ""),
		Alerts: AlertsConfig{
			Enabled:        getEnvAsBool("NOTIFIER_ENABLED", true),
			Threshold:      time.Duration(getEnvAsInt("MINUTES", 15)) * time.Minute,
			PollInterval:   time.Duration(getEnvAsInt("POLL_INTERVAL_SECONDS", 60)) * time.Second,
			RequestTimeout: time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
			NotifyPause:    time.Duration(getEnvAsInt("NOTIFY_PAUSE_MS", 1000)) * time.Millisecond,
			DedupBackend:   getEnv("DEDUP_BACKEND", "memory"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Slack: SlackConfig{
			WebhookToken: getEnv("SLACK_WEBHOOK_TOKEN", ""),
			WebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		},
		StreamInterval: time.Duration(getEnvAsInt("STREAM_INTERVAL_SECONDS", 5)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// SQLitePath returns the dedup database location
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "alerts.db")
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.Alerts.Threshold <= 0 {
		errs = append(errs, errors.New("MINUTES must be positive"))
	}
	if c.Alerts.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL_SECONDS must be positive"))
	}
	if c.Alerts.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	if c.Alerts.NotifyPause < 0 {
		errs = append(errs, errors.New("NOTIFY_PAUSE_MS must not be negative"))
	}
	if !dedupBackends[c.Alerts.DedupBackend] {
		errs = append(errs, fmt.Errorf("DEDUP_BACKEND must be memory, redis or sqlite, got %q", c.Alerts.DedupBackend))
	}
	if c.StreamInterval <= 0 {
		errs = append(errs, errors.New("STREAM_INTERVAL_SECONDS must be positive"))
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
