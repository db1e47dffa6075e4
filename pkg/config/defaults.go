package config

import "time"

// ApplyDefaults fills unset fields with their default values. It is
// called by Load before validation; call it directly when building a
// Config in code.
func ApplyDefaults(cfg *Config) {
	if cfg.Datasource.Driver == "" {
		cfg.Datasource.Driver = "sqlite"
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = "sqlite"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "data/warden-history.db"
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = "127.0.0.1:9090"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "warden"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
