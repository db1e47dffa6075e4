package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lakefront-data/warden/pkg/config"
	"lakefront-data/warden/pkg/export"
	"lakefront-data/warden/pkg/governance"
	"lakefront-data/warden/pkg/manifest"
	"lakefront-data/warden/pkg/telemetry/logging"
	"lakefront-data/warden/pkg/telemetry/metrics"
)

var enforceFlags struct {
	manifestPath string
	impact       bool
	jsonReport   string
	sarifReport  string
	textReport   string
	summaryPath  string
	metricsFile  string
}

var enforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Enforce governance policies against a compiled manifest",
	Long: `Run one enforcement pass over a compiled model manifest.

All validators run: built-in naming/coverage/documentation checks, the
semantic validator (broken references, undeclared sources, cycles), and
any custom rules from the configuration. Overrides are applied on the raw
violations and the final result decides the exit code.

Exit codes:
  0  passed (or enforcement level is off/warn)
  1  failed under strict enforcement
  2  configuration or manifest error

Examples:
  # Enforce with default configuration
  warden enforce --manifest target/manifest.json

  # Write reports for CI
  warden enforce --manifest target/manifest.json \
    --sarif-report reports/warden.sarif --text-report reports/warden.txt

  # Include downstream-impact enrichment
  warden enforce --manifest target/manifest.json --impact`,
	RunE:          runEnforce,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(enforceCmd)

	enforceCmd.Flags().StringVarP(&enforceFlags.manifestPath, "manifest", "m", "target/manifest.json", "compiled manifest path")
	enforceCmd.Flags().BoolVar(&enforceFlags.impact, "impact", false, "compute downstream impact for each violation")
	enforceCmd.Flags().StringVar(&enforceFlags.jsonReport, "json-report", "", "write JSON report to this path")
	enforceCmd.Flags().StringVar(&enforceFlags.sarifReport, "sarif-report", "", "write SARIF report to this path")
	enforceCmd.Flags().StringVar(&enforceFlags.textReport, "text-report", "", "write text report to this path")
	enforceCmd.Flags().StringVar(&enforceFlags.summaryPath, "summary", "", "write pipeline result summary JSON to this path")
	enforceCmd.Flags().StringVar(&enforceFlags.metricsFile, "metrics-file", "", "write Prometheus metrics for this pass to this path (textfile collector format)")
}

func runEnforce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	m, err := manifest.Load(enforceFlags.manifestPath)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	enforcer, err := governance.NewEnforcer(&cfg.Governance, logger)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	result, err := enforcer.Enforce(m, governance.EnforceOptions{ComputeImpact: enforceFlags.impact})
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	if err := writeReports(result); err != nil {
		return exitCodeError{code: 2, err: err}
	}

	if enforceFlags.metricsFile != "" {
		if err := writeEnforcementMetrics(cfg.Metrics.Namespace, result); err != nil {
			return exitCodeError{code: 2, err: err}
		}
	}

	// Always print the human-readable report to stdout.
	text, err := export.NewTextExporter().Export(result)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}
	fmt.Print(string(text))

	if !result.Passed {
		return exitCodeError{
			code: 1,
			err: fmt.Errorf("enforcement failed: %d error(s) under strict enforcement",
				result.Summary.ErrorCount),
		}
	}
	return nil
}

func writeReports(result *governance.EnforcementResult) error {
	if enforceFlags.jsonReport != "" {
		if err := export.WriteFile(export.NewJSONExporter(true), result, enforceFlags.jsonReport); err != nil {
			return err
		}
	}
	if enforceFlags.sarifReport != "" {
		if err := export.WriteFile(export.NewSARIFExporter(Version), result, enforceFlags.sarifReport); err != nil {
			return err
		}
	}
	if enforceFlags.textReport != "" {
		if err := export.WriteFile(export.NewTextExporter(), result, enforceFlags.textReport); err != nil {
			return err
		}
	}
	if enforceFlags.summaryPath != "" {
		data, err := json.MarshalIndent(result.ToResultSummary(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result summary: %w", err)
		}
		if err := os.WriteFile(enforceFlags.summaryPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write result summary: %w", err)
		}
	}
	return nil
}

// writeEnforcementMetrics records the pass into a fresh registry and
// writes it in text exposition format, the shape the node_exporter
// textfile collector picks up. A one-shot process has no endpoint to
// scrape, so the file is the export surface.
func writeEnforcementMetrics(namespace string, result *governance.EnforcementResult) error {
	registry := prometheus.NewRegistry()
	m := metrics.NewEnforcementMetrics(namespace, registry)

	m.RecordRun(string(result.EnforcementLevel), result.Passed, result.Summary.Duration)
	m.SetOverridesApplied(result.Summary.OverridesApplied)

	cells := make(map[[2]string]int)
	for _, v := range result.Violations {
		cells[[2]string{string(v.PolicyType), string(v.Severity)}]++
	}
	for cell, n := range cells {
		m.SetViolations(cell[0], cell[1], n)
	}

	if err := prometheus.WriteToTextfile(enforceFlags.metricsFile, registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// loadConfig loads the config file, tolerating a missing default file so
// `warden enforce` works out of the box with built-in defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			var def config.Config
			config.ApplyDefaults(&def)
			return &def, nil
		}
		return nil, err
	}
	return cfg, nil
}

// exitCodeError carries a process exit code through cobra's error return.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string { return e.err.Error() }
