package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Index modes.
const (
	IndexEager = "eager"
	IndexLazy  = "lazy"
)

// Config holds bot configuration loaded from environment variables, optionally
// overlaid by a YAML file named in PACGRID_CONFIG.
type Config struct {
	RedisURL       string `yaml:"redis_url"`
	DatabaseURL    string `yaml:"database_url"`
	SpectateAddr   string `yaml:"spectate_addr"`
	SpectateSecret string `yaml:"spectate_secret"`
	IndexMode      string `yaml:"index_mode"`
	RenderPaths    bool   `yaml:"render_paths"`
	MatchID        string `yaml:"match_id"`
	TelemetryQueue int    `yaml:"telemetry_queue"`
}

// Load builds the configuration from defaults, then the YAML file named by
// PACGRID_CONFIG if any, then non-empty environment variables. Later sources
// win, so an explicit env var beats the file. Empty URLs disable the matching
// sidecar.
func Load() (*Config, error) {
	cfg := &Config{
		SpectateSecret: "dev-secret-change-me",
		IndexMode:      IndexEager,
		MatchID:        "local",
		TelemetryQueue: 64,
	}

	if path := os.Getenv("PACGRID_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.SpectateAddr = envOrDefault("SPECTATE_ADDR", cfg.SpectateAddr)
	cfg.SpectateSecret = envOrDefault("SPECTATE_SECRET", cfg.SpectateSecret)
	cfg.IndexMode = envOrDefault("INDEX_MODE", cfg.IndexMode)
	cfg.RenderPaths = envBool("RENDER_PATHS", cfg.RenderPaths)
	cfg.MatchID = envOrDefault("MATCH_ID", cfg.MatchID)
	cfg.TelemetryQueue = envInt("TELEMETRY_QUEUE", cfg.TelemetryQueue)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay replaces fields set in the YAML file at path.
func (c *Config) overlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.IndexMode != IndexEager && c.IndexMode != IndexLazy {
		return fmt.Errorf("config: index_mode must be %q or %q, got %q", IndexEager, IndexLazy, c.IndexMode)
	}
	if c.TelemetryQueue <= 0 {
		return fmt.Errorf("config: telemetry_queue must be positive, got %d", c.TelemetryQueue)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}
