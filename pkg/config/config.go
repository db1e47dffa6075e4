package config

import (
	"time"

	"lakefront-data/warden/pkg/contract"
	"lakefront-data/warden/pkg/governance"
	"lakefront-data/warden/pkg/telemetry/logging"
)

// Config is the root configuration structure for Warden. It covers
// build-time governance enforcement, run-time contract monitoring, the
// violation-history store, and telemetry.
type Config struct {
	// Governance configures build-time enforcement: enforcement level,
	// built-in policies, custom rules, and overrides.
	Governance governance.GovernanceConfig `yaml:"governance"`

	// Contracts declares the datasets the monitor checks and their
	// service-level agreements.
	Contracts []contract.Contract `yaml:"contracts"`

	// Monitor configures check timeouts and the shutdown grace period.
	Monitor contract.MonitorConfig `yaml:"monitor"`

	// Datasource configures the connection the monitor's checks query.
	Datasource DatasourceConfig `yaml:"datasource"`

	// Quality configures the external quality-check invocation.
	Quality QualityConfig `yaml:"quality"`

	// History configures the durable violation-history store.
	History HistoryConfig `yaml:"history"`

	// Logging configures structured logging.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// DatasourceConfig configures the database connection backing the
// monitor's freshness, schema, and availability checks.
type DatasourceConfig struct {
	// Driver is the database/sql driver name. Default: "sqlite".
	Driver string `yaml:"driver"`

	// DSN is the connection string.
	DSN string `yaml:"dsn"`
}

// QualityConfig configures the delegated quality-check invocation.
type QualityConfig struct {
	// Command is the external command line to run, one element per
	// argument. The dataset name is appended as the final argument.
	// Empty disables quality checks.
	Command []string `yaml:"command"`
}

// HistoryConfig configures the violation-history store.
type HistoryConfig struct {
	// Backend is "sqlite" or "memory". Default: sqlite.
	// The memory backend loses occurrence tracking on restart and is
	// intended for tests and one-off runs.
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	// Default: "data/warden-history.db".
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits for locks before failing.
	// Default: 5s.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MetricsConfig configures the Prometheus metrics endpoint exposed by
// the monitor.
type MetricsConfig struct {
	// Enabled controls whether the endpoint is served. Default: true.
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP server.
	// Default: "127.0.0.1:9090".
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix. Default: "warden".
	Namespace string `yaml:"namespace"`
}

// MetricsEnabled reports whether the metrics endpoint should be served.
func (c *MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
