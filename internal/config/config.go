package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Simulator holds all configuration for the encounter runner.
type Simulator struct {
	// Logging: debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"XANDER_LOG_LEVEL"`

	// Seed is the master seed every script seed is derived from. Zero is a
	// valid seed.
	Seed uint64 `yaml:"seed" env:"XANDER_SEED"`

	// Workers bounds how many scripts run at once.
	Workers int `yaml:"workers" env:"XANDER_WORKERS"`

	// Arena is used by scripts that do not size their own.
	Arena ArenaConfig `yaml:"arena" envPrefix:"XANDER_ARENA_"`

	// StatblockDir resolves relative stat-block paths in scripts.
	StatblockDir string `yaml:"statblock_dir" env:"XANDER_STATBLOCK_DIR"`

	// Trace prints finished spans to stdout.
	Trace bool `yaml:"trace" env:"XANDER_TRACE"`
}

// ArenaConfig is a rectangle in feet.
type ArenaConfig struct {
	Width  float64 `yaml:"width" env:"WIDTH"`
	Height float64 `yaml:"height" env:"HEIGHT"`
}

// DefaultSimulator returns Simulator config with sensible defaults.
func DefaultSimulator() Simulator {
	return Simulator{
		LogLevel:     "info",
		Workers:      4,
		Arena:        ArenaConfig{Width: 100, Height: 100},
		StatblockDir: "statblocks",
	}
}

// LoadSimulator loads runner config from a YAML file, then applies
// XANDER_* environment overrides.
// If the file doesn't exist, the defaults are used.
func LoadSimulator(path string) (Simulator, error) {
	cfg := DefaultSimulator()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Simulator) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("%w: arena must be positive, got %gx%g", ErrInvalid, c.Arena.Width, c.Arena.Height)
	}
	return nil
}
