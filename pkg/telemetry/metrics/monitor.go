package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MonitorMetrics tracks the contract monitor's observations.
//
// Metrics:
//   - warden_contract_checks_total: check invocations by contract and check
//   - warden_contract_check_duration_seconds: check duration
//   - warden_contract_violations_total: violations by contract, check, severity
//   - warden_contract_freshness_age_seconds: age of the newest row
//   - warden_contract_available: availability probe outcome (1 up, 0 down)
//   - warden_contract_schema_drifted: schema drift indicator (1 drifted)
//   - warden_contract_quality_score: last observed quality score
type MonitorMetrics struct {
	checksTotal     *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	violationsTotal *prometheus.CounterVec
	freshnessAge    *prometheus.GaugeVec
	available       *prometheus.GaugeVec
	schemaDrifted   *prometheus.GaugeVec
	qualityScore    *prometheus.GaugeVec
}

// NewMonitorMetrics creates and registers monitor metrics with the
// provided registry.
func NewMonitorMetrics(namespace string, registry *prometheus.Registry) *MonitorMetrics {
	m := &MonitorMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_checks_total",
				Help:      "Total number of contract check invocations",
			},
			[]string{"contract", "check"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "contract_check_duration_seconds",
				Help:      "Duration of contract checks in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
			},
			[]string{"contract", "check"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_violations_total",
				Help:      "Total number of contract violations detected",
			},
			[]string{"contract", "check", "severity"},
		),
		freshnessAge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "contract_freshness_age_seconds",
				Help:      "Age of the newest row in the monitored dataset",
			},
			[]string{"contract"},
		),
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "contract_available",
				Help:      "Availability probe outcome (1 = up, 0 = down)",
			},
			[]string{"contract"},
		),
		schemaDrifted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "contract_schema_drifted",
				Help:      "Whether the live schema diverges from the contract (1 = drifted)",
			},
			[]string{"contract"},
		),
		qualityScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "contract_quality_score",
				Help:      "Last observed quality score for the dataset",
			},
			[]string{"contract"},
		),
	}

	registry.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.violationsTotal,
		m.freshnessAge,
		m.available,
		m.schemaDrifted,
		m.qualityScore,
	)

	return m
}

// RecordCheck records one check invocation.
func (m *MonitorMetrics) RecordCheck(contract, check string, duration time.Duration) {
	m.checksTotal.WithLabelValues(contract, check).Inc()
	m.checkDuration.WithLabelValues(contract, check).Observe(duration.Seconds())
}

// IncViolation counts one detected violation.
func (m *MonitorMetrics) IncViolation(contract, check, severity string) {
	m.violationsTotal.WithLabelValues(contract, check, severity).Inc()
}

// SetFreshnessAge records the observed age of the dataset's newest row.
func (m *MonitorMetrics) SetFreshnessAge(contract string, age time.Duration) {
	m.freshnessAge.WithLabelValues(contract).Set(age.Seconds())
}

// SetAvailability records the availability probe outcome.
func (m *MonitorMetrics) SetAvailability(contract string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	m.available.WithLabelValues(contract).Set(v)
}

// SetDrift records whether the live schema has drifted.
func (m *MonitorMetrics) SetDrift(contract string, drifted bool) {
	v := 0.0
	if drifted {
		v = 1.0
	}
	m.schemaDrifted.WithLabelValues(contract).Set(v)
}

// SetQualityScore records the last observed quality score.
func (m *MonitorMetrics) SetQualityScore(contract string, score float64) {
	m.qualityScore.WithLabelValues(contract).Set(score)
}
