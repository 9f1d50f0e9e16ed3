// Package config loads fsexport settings from FSEXPORT_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/taigrr/fsexport/internal/loader"
	"github.com/taigrr/fsexport/internal/pathfilter"
	"go.uber.org/zap/zapcore"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FSEXPORT"

// Config holds all application configuration.
type Config struct {
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDev      bool          `envconfig:"LOG_DEV" default:"false"`
	Loaders     []string      `envconfig:"LOADERS"`
	Ignore      []string      `envconfig:"IGNORE"`
	SelfName    string        `envconfig:"SELF_NAME" default:"index.js"`
	EvalTimeout time.Duration `envconfig:"EVAL_TIMEOUT" default:"0s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
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
		LogLevel: "info",
		SelfName: "index.js",
	}
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	if strings.TrimSpace(c.SelfName) == "" {
		return fmt.Errorf("self name must not be empty")
	}
	if strings.ContainsAny(c.SelfName, `/\`) {
		return fmt.Errorf("self name %q must be a plain file name", c.SelfName)
	}

	if c.EvalTimeout < 0 {
		return fmt.Errorf("eval timeout must not be negative, got %s", c.EvalTimeout)
	}

	if err := loader.NewRegistry().Enable(c.Loaders...); err != nil {
		return err
	}
	if _, err := pathfilter.New(c.Ignore); err != nil {
		return err
	}
	return nil
}
