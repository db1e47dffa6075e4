package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lakefront-data/warden/pkg/config"
	"lakefront-data/warden/pkg/contract"
	"lakefront-data/warden/pkg/history"
	"lakefront-data/warden/pkg/telemetry/logging"
	"lakefront-data/warden/pkg/telemetry/metrics"
)

var monitorFlags struct {
	runOnce bool
	watch   bool
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the contract monitor",
	Long: `Run the long-lived contract monitor.

Each (contract, check) pair is scheduled independently at its configured
interval. Detected violations are emitted as structured events and
metrics; occurrence counts are tracked in the durable history store so
they survive restarts.

Examples:
  # Run the monitor with the default configuration
  warden monitor

  # Run every check once and exit (for smoke tests)
  warden monitor --once

  # Reload contract definitions when the config file changes
  warden monitor --watch`,
	RunE:          runMonitor,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().BoolVar(&monitorFlags.runOnce, "once", false, "run all checks once and exit")
	monitorCmd.Flags().BoolVar(&monitorFlags.watch, "watch", false, "reload contracts when the config file changes")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
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

	if len(cfg.Contracts) == 0 {
		return exitCodeError{code: 2, err: fmt.Errorf("no contracts configured in %q", cfgFile)}
	}

	store, err := openHistoryStore(cfg)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	var monitorMetrics *metrics.MonitorMetrics
	if cfg.Metrics.MetricsEnabled() {
		monitorMetrics = metrics.NewMonitorMetrics(cfg.Metrics.Namespace, registry)
	}

	reader, err := contract.NewSQLReader(cfg.Datasource.Driver, cfg.Datasource.DSN)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}
	defer reader.Close()

	var quality contract.QualityRunner
	if len(cfg.Quality.Command) > 0 {
		runner, err := contract.NewCommandQualityRunner(cfg.Quality.Command)
		if err != nil {
			return exitCodeError{code: 2, err: err}
		}
		quality = runner
	}

	mon, err := contract.NewMonitor(cfg.Monitor, reader, quality, nil, store, monitorMetrics, logger)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(ctx, cfg.Contracts); err != nil {
		return exitCodeError{code: 2, err: err}
	}

	if monitorFlags.runOnce {
		mon.RunAllChecks()
		mon.Stop()
		return nil
	}

	if cfg.Metrics.MetricsEnabled() {
		go serveMetrics(ctx, cfg.Metrics.ListenAddress, registry, logger)
	}

	if monitorFlags.watch {
		watcher, err := contract.NewDefinitionWatcher(cfgFile, logger)
		if err != nil {
			return exitCodeError{code: 2, err: err}
		}
		go func() {
			_ = watcher.Watch(ctx, func() error {
				reloaded, err := config.LoadWithEnvOverrides(cfgFile)
				if err != nil {
					return err
				}
				return mon.Reload(ctx, reloaded.Contracts)
			})
		}()
	}

	<-ctx.Done()
	mon.Stop()
	return nil
}

func openHistoryStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Backend == "memory" {
		return history.NewMemoryStore(), nil
	}
	return history.NewSQLiteStore(history.SQLiteConfig{
		Path:        cfg.History.Path,
		BusyTimeout: cfg.History.BusyTimeout,
	})
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "address", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
