package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lakefront-data/warden/pkg/governance"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates eagerly. A malformed rule or override fails the load with the
// offending field named.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// WARDEN_* environment variable overrides before validating. Environment
// variables always take precedence over file values.
func LoadWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides applies WARDEN_* environment variables over the
// loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WARDEN_ENFORCEMENT_LEVEL"); v != "" {
		cfg.Governance.EnforcementLevel = governance.EnforcementLevel(strings.ToLower(v))
	}
	if v := os.Getenv("WARDEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WARDEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WARDEN_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("WARDEN_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("WARDEN_METRICS_LISTEN_ADDRESS"); v != "" {
		cfg.Metrics.ListenAddress = v
	}
	if v := os.Getenv("WARDEN_MONITOR_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.ConnectTimeout = d
		}
	}
	if v := os.Getenv("WARDEN_MONITOR_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitor.QueryTimeout = d
		}
	}
}
