package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Sandbox   SandboxConfig
	Store     StoreConfig
	Templates TemplatesConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SandboxConfig bounds lesson script execution. A zero timeout never
// interrupts a run.
type SandboxConfig struct {
	Timeout          time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"0s"`
	MaxCallStackSize int           `envconfig:"SANDBOX_MAX_CALL_STACK" default:"2048"`
	Console          bool          `envconfig:"SANDBOX_CONSOLE" default:"false"`
}

// StoreConfig selects the key-value store for workspace preferences.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"memory"`
	Path   string `envconfig:"STORE_PATH" default:"hookify.db"`
}

// TemplatesConfig points at an optional template override file and an
// optional directory of lesson files loaded over the templates at startup.
type TemplatesConfig struct {
	Path       string `envconfig:"TEMPLATES_PATH"`
	LessonsDir string `envconfig:"LESSONS_DIR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			MaxCallStackSize: 2048,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "hookify.db",
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Sandbox.Timeout < 0 {
		return fmt.Errorf("invalid config: SANDBOX_TIMEOUT must not be negative")
	}
	if c.Sandbox.MaxCallStackSize <= 0 {
		return fmt.Errorf("invalid config: SANDBOX_MAX_CALL_STACK must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
