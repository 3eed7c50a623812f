package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module. All methods are
// nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Individual check latencies by check name
	CheckLatency *prometheus.HistogramVec

	// Check verdicts by name and outcome
	CheckOutcome *prometheus.CounterVec

	// Verification outcomes by status
	VerificationOutcome *prometheus.CounterVec

	// Risk level distribution
	RiskLevel *prometheus.CounterVec

	// Overall verify latency including compliance and legal assessment
	VerifyLatency prometheus.Histogram
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signet_verification_check_duration_seconds",
			Help:    "Duration of individual verification checks by name",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"check"}),

		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_verification_check_outcomes_total",
			Help: "Total check verdicts by check name and outcome",
		}, []string{"check", "outcome"}),

		VerificationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_verification_outcomes_total",
			Help: "Total verification outcomes by status",
		}, []string{"status"}),

		RiskLevel: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_verification_risk_levels_total",
			Help: "Total verifications by assessed risk level",
		}, []string{"level"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signet_verification_verify_duration_seconds",
			Help:    "Duration of full verification including compliance and legal assessment",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveCheckLatency records the duration of a single check.
func (m *Metrics) ObserveCheckLatency(check string, d time.Duration) {
	if m != nil {
		m.CheckLatency.WithLabelValues(check).Observe(d.Seconds())
	}
}

// IncrementCheckOutcome records a check verdict.
func (m *Metrics) IncrementCheckOutcome(check string, valid bool) {
	if m != nil {
		outcome := "fail"
		if valid {
			outcome = "pass"
		}
		m.CheckOutcome.WithLabelValues(check, outcome).Inc()
	}
}

// IncrementOutcome records a verification outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.VerificationOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementRiskLevel records the assessed risk level of a verification.
func (m *Metrics) IncrementRiskLevel(level string) {
	if m != nil {
		m.RiskLevel.WithLabelValues(level).Inc()
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
