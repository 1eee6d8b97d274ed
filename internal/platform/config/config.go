// Package config loads application configuration from environment variables.
// All variables use the UPSKILLEO_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Content  ContentConfig
	Playback PlaybackConfig
	Grading  GradingConfig
	Purchase PurchaseConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings for the event log.
// An empty URL disables database-backed event logging.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings for the purchase store.
// An empty URL selects the in-memory store.
type CacheConfig struct {
	URL string
}

// ContentConfig holds course content settings.
type ContentConfig struct {
	Path string
}

// PlaybackConfig holds lesson playback engine settings.
type PlaybackConfig struct {
	PollIntervalMS        int
	ToleranceSeconds      float64
	FeedbackResumeSeconds int
	AutoAdvanceSeconds    int
}

// GradingConfig selects the challenge grading strategy.
type GradingConfig struct {
	Mode        string // "firstline" or "fuzzy"
	MaxDistance int    // fuzzy mode edit-distance limit
}

// PurchaseConfig holds simulated purchase flow settings.
type PurchaseConfig struct {
	ProcessingDelayMS int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with UPSKILLEO_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("UPSKILLEO_SERVER_PORT", 8080),
			Host: envStr("UPSKILLEO_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("UPSKILLEO_DATABASE_URL", ""),
			MaxConns: envInt("UPSKILLEO_DATABASE_MAX_CONNS", 8),
			MinConns: envInt("UPSKILLEO_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL: envStr("UPSKILLEO_CACHE_URL", ""),
		},
		Content: ContentConfig{
			Path: envStr("UPSKILLEO_CONTENT_PATH", "./content"),
		},
		Playback: PlaybackConfig{
			PollIntervalMS:        envInt("UPSKILLEO_PLAYBACK_POLL_INTERVAL_MS", 100),
			ToleranceSeconds:      envFloat("UPSKILLEO_PLAYBACK_TOLERANCE_SECONDS", 1.0),
			FeedbackResumeSeconds: envInt("UPSKILLEO_FEEDBACK_RESUME_SECONDS", 5),
			AutoAdvanceSeconds:    envInt("UPSKILLEO_AUTO_ADVANCE_SECONDS", 3),
		},
		Grading: GradingConfig{
			Mode:        envStr("UPSKILLEO_GRADING_MODE", "firstline"),
			MaxDistance: envInt("UPSKILLEO_GRADING_MAX_DISTANCE", 3),
		},
		Purchase: PurchaseConfig{
			ProcessingDelayMS: envInt("UPSKILLEO_PURCHASE_DELAY_MS", 1500),
		},
		Log: LogConfig{
			Level:  envStr("UPSKILLEO_LOG_LEVEL", "info"),
			Format: envStr("UPSKILLEO_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c *Config) Validate() error {
	if c.Content.Path == "" {
		return fmt.Errorf("UPSKILLEO_CONTENT_PATH is required")
	}
	if c.Playback.PollIntervalMS <= 0 {
		return fmt.Errorf("UPSKILLEO_PLAYBACK_POLL_INTERVAL_MS must be positive, got %d", c.Playback.PollIntervalMS)
	}
	if c.Playback.ToleranceSeconds <= 0 {
		return fmt.Errorf("UPSKILLEO_PLAYBACK_TOLERANCE_SECONDS must be positive, got %g", c.Playback.ToleranceSeconds)
	}
	if c.Grading.Mode != "firstline" && c.Grading.Mode != "fuzzy" {
		return fmt.Errorf("UPSKILLEO_GRADING_MODE must be 'firstline' or 'fuzzy', got %q", c.Grading.Mode)
	}
	return nil
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
