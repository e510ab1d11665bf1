// Package config loads application configuration from environment variables.
// All variables use the SKILLFORGE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	API    APIConfig
	Cache  CacheConfig
	Events EventsConfig
	Log    LogConfig
}

// APIConfig holds backend API connection settings.
type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// CacheConfig holds Redis connection settings for catalog read caching.
type CacheConfig struct {
	URL     string
	Enabled bool
	TTL     time.Duration
}

// EventsConfig holds the activity event sink settings.
type EventsConfig struct {
	DatabaseURL string
	MaxConns    int
	MinConns    int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with SKILLFORGE_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: envStr("SKILLFORGE_API_BASE_URL", "http://localhost:8000"),
			Token:   envStr("SKILLFORGE_API_TOKEN", ""),
			Timeout: envDuration("SKILLFORGE_API_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			URL:     envStr("SKILLFORGE_CACHE_URL", "redis://localhost:6379"),
			Enabled: envBool("SKILLFORGE_CACHE_ENABLED", false),
			TTL:     envDuration("SKILLFORGE_CACHE_TTL", 60*time.Second),
		},
		Events: EventsConfig{
			DatabaseURL: envStr("SKILLFORGE_EVENTS_DATABASE_URL", ""),
			MaxConns:    envInt("SKILLFORGE_EVENTS_MAX_CONNS", 5),
			MinConns:    envInt("SKILLFORGE_EVENTS_MIN_CONNS", 1),
		},
		Log: LogConfig{
			Level:  envStr("SKILLFORGE_LOG_LEVEL", "info"),
			Format: envStr("SKILLFORGE_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("SKILLFORGE_API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("SKILLFORGE_API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.Cache.Enabled && c.Cache.URL == "" {
		return fmt.Errorf("SKILLFORGE_CACHE_URL is required when the cache is enabled")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("SKILLFORGE_API_TIMEOUT must be positive")
	}
	return nil
}

// HasEventSink returns true if a database is configured for activity events.
func (c *Config) HasEventSink() bool {
	return c.Events.DatabaseURL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
