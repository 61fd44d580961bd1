// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds everything tunable from the environment. Defaults are chosen
// so a bare `snaptree serve` works out of the box.
type Config struct {
	// DBPath is the SQLite database file. ":memory:" gives an ephemeral
	// store, useful for demos and tests.
	DBPath string `env:"SNAPTREE_DB" envDefault:"snaptree.db"`

	// HTTPAddr is the listen address for the HTTP API.
	HTTPAddr string `env:"SNAPTREE_HTTP_ADDR" envDefault:":8080"`

	// MaxResolveDepth bounds composite-snapshot nesting during resolution
	// and reference validation.
	MaxResolveDepth int `env:"SNAPTREE_MAX_RESOLVE_DEPTH" envDefault:"50"`

	// CheckFailFast aborts a consistency check on the first id that fails
	// to resolve. When false, cycle and depth failures are reported per id
	// and the rest of the check still runs.
	CheckFailFast bool `env:"SNAPTREE_CHECK_FAIL_FAST" envDefault:"true"`

	// StrictComposites rejects composite-snapshot saves whose combined
	// expansion contains duplicate PV names.
	StrictComposites bool `env:"SNAPTREE_STRICT_COMPOSITES" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"SNAPTREE_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
