package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "POSTURE"

var defaults = map[string]any{
	"app.name":                         "Security Posture Atlas",
	"app.version":                      "1.0.0",
	"app.debug":                        false,
	"server.host":                      "0.0.0.0",
	"server.port":                      "8000",
	"server.shutdown_timeout":          "10s",
	"server.cors_origins":              []string{"http://localhost:3000", "http://localhost:5173"},
	"database.path":                    "posture-atlas.db",
	"database.connect_max_elapsed":     "1m",
	"posture.default_security_score":   75.0,
	"posture.default_compliance_score": 0.0,
	"posture.trend_window":             "720h",
	"posture.compliant_threshold":      80.0,
	"sla.critical":                     7,
	"sla.high":                         30,
	"sla.medium":                       90,
	"sla.low":                          180,
	"workflow.snapshot_interval":       "0s",
}

// LoadConfig reads the optional YAML file at path and applies POSTURE_*
// environment overrides, e.g. POSTURE_SERVER_PORT. A .env file in the working
// directory is loaded first when present.
func LoadConfig(path string) (*domain.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg domain.Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("%w: server.port is required", domain.ErrInvalidValue)
	}
	if cfg.Posture.TrendWindow <= 0 {
		return fmt.Errorf("%w: posture.trend_window must be positive", domain.ErrInvalidValue)
	}
	if cfg.Posture.CompliantThreshold < 0 || cfg.Posture.CompliantThreshold > 100 {
		return fmt.Errorf("%w: posture.compliant_threshold must be within [0, 100]", domain.ErrInvalidValue)
	}
	if cfg.Workflow.SnapshotInterval < 0 {
		return fmt.Errorf("%w: workflow.snapshot_interval must not be negative", domain.ErrInvalidValue)
	}
	return nil
}
