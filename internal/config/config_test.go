package config

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DBPath", cfg.DBPath, "closeboard.db"},
		{"Addr", cfg.Addr, ":8080"},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"WarningDays", cfg.WarningDays, 2},
		{"Verbose", cfg.Verbose, false},
		{"RequireStartedDependencies", cfg.Guard.RequireStartedDependencies, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "db_path",
			envKey: "CLOSEBOARD_DB_PATH",
			envVal: "/var/lib/closeboard.db",
			field:  func(c Config) any { return c.DBPath },
			want:   "/var/lib/closeboard.db",
		},
		{
			name:   "addr",
			envKey: "CLOSEBOARD_ADDR",
			envVal: "127.0.0.1:9000",
			field:  func(c Config) any { return c.Addr },
			want:   "127.0.0.1:9000",
		},
		{
			name:   "warning_days",
			envKey: "CLOSEBOARD_WARNING_DAYS",
			envVal: "5",
			field:  func(c Config) any { return c.WarningDays },
			want:   5,
		},
		{
			name:   "verbose",
			envKey: "CLOSEBOARD_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("CLOSEBOARD")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_NestedGuardKey(t *testing.T) {
	resetViper()
	viper.Set("guard.require_started_dependencies", true)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Guard.RequireStartedDependencies {
		t.Error("Guard.RequireStartedDependencies = false, want true")
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		key string
		val any
	}{
		{"warning_days", -1},
		{"db_path", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.val)
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() err = %v, want ErrInvalid", err)
			}
		})
	}
}
