package contract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lakefront-data/warden/pkg/governance"
	"lakefront-data/warden/pkg/history"
	"lakefront-data/warden/pkg/telemetry/metrics"
)

// Default check intervals, used when a contract does not declare one.
const (
	DefaultFreshnessInterval    = 15 * time.Minute
	DefaultDriftInterval        = time.Hour
	DefaultAvailabilityInterval = 5 * time.Minute
	DefaultQualityInterval      = time.Hour
)

// MonitorConfig configures the contract monitor.
type MonitorConfig struct {
	// ConnectTimeout bounds connectivity probes. Default: 5s.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// QueryTimeout bounds data queries (freshness, schema, quality).
	// Default: 30s.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// ShutdownGrace is how long Stop waits for in-flight checks before
	// abandoning them. Default: 10s.
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

func (c *MonitorConfig) applyDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 30 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 10 * time.Second
	}
}

// Monitor periodically re-validates live datasets against their declared
// contracts. Each (contract, check) pair is an independent cron job with
// its own interval and timeout, so one hung external connection cannot
// starve unrelated contracts' checks.
type Monitor struct {
	config  MonitorConfig
	reader  DatasetReader
	quality QualityRunner
	emitter Emitter
	store   history.Store
	metrics *metrics.MonitorMetrics
	logger  *slog.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	contracts []Contract
	running   bool

	// baseCtx is cancelled on shutdown; in-flight checks observe it.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	// inflight tracks running check invocations for the shutdown grace.
	inflight sync.WaitGroup
}

// NewMonitor creates a monitor. reader and store are required; quality
// may be nil when no contract declares a quality check; emitter defaults
// to the log emitter; m may be nil to disable metrics.
func NewMonitor(cfg MonitorConfig, reader DatasetReader, quality QualityRunner, emitter Emitter, store history.Store, m *metrics.MonitorMetrics, logger *slog.Logger) (*Monitor, error) {
	if reader == nil {
		return nil, fmt.Errorf("dataset reader cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("history store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = NewLogEmitter(logger)
	}
	cfg.applyDefaults()

	return &Monitor{
		config:  cfg,
		reader:  reader,
		quality: quality,
		emitter: emitter,
		store:   store,
		metrics: m,
		logger:  logger.With("component", "contract.monitor"),
	}, nil
}

// Start validates the contracts and schedules their checks. Retired
// contracts are skipped entirely. The monitor stops itself when ctx is
// cancelled.
func (m *Monitor) Start(ctx context.Context, contracts []Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("monitor already running")
	}

	for i := range contracts {
		if err := contracts[i].Validate(); err != nil {
			return fmt.Errorf("invalid contract configuration: %w", err)
		}
		if contracts[i].Quality != nil && m.quality == nil {
			return fmt.Errorf("contract %q declares a quality check but no quality runner is configured", contracts[i].Name)
		}
	}

	m.baseCtx, m.cancelBase = context.WithCancel(context.Background())
	m.contracts = contracts
	m.cron = cron.New()

	scheduled := 0
	for i := range contracts {
		c := &m.contracts[i]
		if c.EffectiveState() == StateRetired {
			m.logger.Info("skipping retired contract", "contract", c.Name)
			continue
		}
		base := m.baseCtx
		for _, check := range c.CheckTypes() {
			check := check
			spec := fmt.Sprintf("@every %s", checkInterval(c, check))
			if _, err := m.cron.AddFunc(spec, func() { m.runCheck(base, c, check) }); err != nil {
				return fmt.Errorf("failed to schedule %s check for contract %q: %w", check, c.Name, err)
			}
			scheduled++
		}
	}

	m.cron.Start()
	m.running = true
	m.logger.Info("contract monitor started",
		"contracts", len(contracts),
		"scheduled_checks", scheduled,
	)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Stop stops scheduling, then waits up to the shutdown grace for
// in-flight checks before cancelling them. No check result is emitted
// after cancellation.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false

	stopCtx := m.cron.Stop()
	<-stopCtx.Done()

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(m.config.ShutdownGrace):
		m.logger.Warn("abandoning in-flight checks after shutdown grace",
			"grace", m.config.ShutdownGrace,
		)
	}
	m.cancelBase()

	m.logger.Info("contract monitor stopped")
}

// RunAllChecks executes every scheduled check once, immediately. Used for
// on-demand validation and by the reload path to re-baseline after a
// contract change.
func (m *Monitor) RunAllChecks() {
	m.mu.Lock()
	contracts := m.contracts
	base := m.baseCtx
	m.mu.Unlock()

	if base == nil {
		base = context.Background()
	}
	for i := range contracts {
		c := &contracts[i]
		if c.EffectiveState() == StateRetired {
			continue
		}
		for _, check := range c.CheckTypes() {
			m.runCheck(base, c, check)
		}
	}
}

// Reload replaces the contract set and reschedules all checks. Used by
// the definition watcher on configuration changes.
func (m *Monitor) Reload(ctx context.Context, contracts []Contract) error {
	m.Stop()
	return m.Start(ctx, contracts)
}

// checkInterval returns the configured interval for a (contract, check)
// pair, or the check family's default.
func checkInterval(c *Contract, check CheckType) time.Duration {
	switch check {
	case CheckFreshness:
		if c.Freshness.Interval > 0 {
			return c.Freshness.Interval
		}
		return DefaultFreshnessInterval
	case CheckSchemaDrift:
		if c.Schema.Interval > 0 {
			return c.Schema.Interval
		}
		return DefaultDriftInterval
	case CheckAvailability:
		if c.Availability.Interval > 0 {
			return c.Availability.Interval
		}
		return DefaultAvailabilityInterval
	case CheckQuality:
		if c.Quality.Interval > 0 {
			return c.Quality.Interval
		}
		return DefaultQualityInterval
	}
	return time.Hour
}

// runCheck executes one check invocation with its own timeout, converts
// findings into events and metrics, and records occurrences in the
// durable history store. Any single check's failure never affects the
// scheduling of other checks.
func (m *Monitor) runCheck(base context.Context, c *Contract, check CheckType) {
	m.inflight.Add(1)
	defer m.inflight.Done()

	if base.Err() != nil {
		return
	}

	timeout := m.config.QueryTimeout
	if check == CheckAvailability {
		timeout = m.config.ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(base, timeout)
	defer cancel()

	start := time.Now()
	var violations []governance.Violation
	switch check {
	case CheckFreshness:
		var age time.Duration
		violations, age = runFreshnessCheck(ctx, m.reader, c, start)
		if m.metrics != nil && age > 0 {
			m.metrics.SetFreshnessAge(c.Name, age)
		}
	case CheckSchemaDrift:
		var drifted bool
		violations, drifted = runDriftCheck(ctx, m.reader, c)
		if m.metrics != nil {
			m.metrics.SetDrift(c.Name, drifted)
		}
	case CheckAvailability:
		var up bool
		violations, up = runAvailabilityCheck(ctx, m.reader, c)
		if m.metrics != nil {
			m.metrics.SetAvailability(c.Name, up)
		}
	case CheckQuality:
		var score float64
		violations, score = runQualityCheck(ctx, m.quality, c)
		if m.metrics != nil {
			m.metrics.SetQualityScore(c.Name, score)
		}
	}

	if m.metrics != nil {
		m.metrics.RecordCheck(c.Name, string(check), time.Since(start))
	}

	// A cancelled check emits nothing: shutdown may already be underway
	// and partial observations from an interrupted query are not trusted.
	if base.Err() != nil {
		m.logger.Debug("dropping results of cancelled check",
			"contract", c.Name,
			"check", string(check),
		)
		return
	}

	for _, v := range violations {
		v = applyLifecycle(c, v)
		v = m.trackOccurrence(c, check, v)

		event := NewEvent(c, check, v)
		if err := m.emitter.Emit(context.Background(), event); err != nil {
			m.logger.Error("failed to emit violation event",
				"contract", c.Name,
				"check", string(check),
				"error", err,
			)
		}
		if m.metrics != nil {
			m.metrics.IncViolation(c.Name, string(check), string(v.Severity))
		}
	}
}

// trackOccurrence upserts the violation in the durable history store and
// stamps FirstDetected/Occurrences on the emitted copy. History failures
// degrade to untracked violations rather than losing the event.
func (m *Monitor) trackOccurrence(c *Contract, check CheckType, v governance.Violation) governance.Violation {
	key := history.Key{Contract: c.Name, Check: string(check), ErrorCode: v.ErrorCode}
	rec, err := m.store.Record(context.Background(), key, time.Now().UTC())
	if err != nil {
		m.logger.Error("failed to record violation history",
			"key", key.String(),
			"error", err,
		)
		return v
	}
	v.FirstDetected = rec.FirstDetected
	v.Occurrences = rec.Occurrences
	return v
}

// applyLifecycle adjusts a violation to the contract's declared state:
// deprecated contracts get a notice appended, sunset contracts have
// warnings escalated to errors since consumers are out of migration time.
func applyLifecycle(c *Contract, v governance.Violation) governance.Violation {
	switch c.EffectiveState() {
	case StateDeprecated:
		v.Message += " (contract is deprecated)"
	case StateSunset:
		v.Message += " (contract is approaching sunset)"
		if v.Severity == governance.SeverityWarning {
			v.Severity = governance.SeverityError
		}
	}
	return v
}
