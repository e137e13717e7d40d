package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// GuardConfig tunes the column transition guard.
type GuardConfig struct {
	RequireStartedDependencies bool `mapstructure:"require_started_dependencies"`
}

// Config holds all runtime configuration for closeboard.
// Values are populated from .closeboard.yaml, CLOSEBOARD_* env vars, and CLI flags.
type Config struct {
	DBPath        string      `mapstructure:"db_path"`
	Addr          string      `mapstructure:"addr"`
	TelemetryPath string      `mapstructure:"telemetry_path"`
	WarningDays   int         `mapstructure:"warning_days"`
	Verbose       bool        `mapstructure:"verbose"`
	Guard         GuardConfig `mapstructure:"guard"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db_path", "closeboard.db")
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("warning_days", 2)
	viper.SetDefault("verbose", false)
	viper.SetDefault("guard.require_started_dependencies", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.WarningDays < 0 {
		return Config{}, fmt.Errorf("%w: warning_days %d is negative", ErrInvalid, cfg.WarningDays)
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("%w: db_path is empty", ErrInvalid)
	}
	return cfg, nil
}
