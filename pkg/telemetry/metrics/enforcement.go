package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EnforcementMetrics tracks build-time enforcement passes.
//
// Metrics:
//   - warden_enforcement_runs_total: passes by level and outcome
//   - warden_enforcement_duration_seconds: pass duration
//   - warden_enforcement_violations: violations in the last pass, by
//     policy type and severity
//   - warden_enforcement_overrides_applied: overrides applied last pass
type EnforcementMetrics struct {
	runsTotal  *prometheus.CounterVec
	duration   prometheus.Histogram
	violations *prometheus.GaugeVec
	overrides  prometheus.Gauge
}

// NewEnforcementMetrics creates and registers enforcement metrics.
func NewEnforcementMetrics(namespace string, registry *prometheus.Registry) *EnforcementMetrics {
	m := &EnforcementMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enforcement_runs_total",
				Help:      "Total number of enforcement passes",
			},
			[]string{"level", "outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enforcement_duration_seconds",
				Help:      "Duration of enforcement passes in seconds",
				// Target is well under a second for ~500 models.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
		),
		violations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "enforcement_violations",
				Help:      "Violations found by the last enforcement pass",
			},
			[]string{"policy_type", "severity"},
		),
		overrides: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "enforcement_overrides_applied",
				Help:      "Overrides applied in the last enforcement pass",
			},
		),
	}

	registry.MustRegister(m.runsTotal, m.duration, m.violations, m.overrides)
	return m
}

// RecordRun records one enforcement pass.
func (m *EnforcementMetrics) RecordRun(level string, passed bool, duration time.Duration) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.runsTotal.WithLabelValues(level, outcome).Inc()
	m.duration.Observe(duration.Seconds())
}

// SetViolations records the violation count for one (policy type,
// severity) cell of the last pass.
func (m *EnforcementMetrics) SetViolations(policyType, severity string, count int) {
	m.violations.WithLabelValues(policyType, severity).Set(float64(count))
}

// SetOverridesApplied records the overrides applied in the last pass.
func (m *EnforcementMetrics) SetOverridesApplied(count int) {
	m.overrides.Set(float64(count))
}
