package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes.
const (
	OutcomeAccepted         = "accepted"
	OutcomeInvalid          = "invalid"
	OutcomeRateLimited      = "rate_limited"
	OutcomeMalformed        = "malformed"
	OutcomePersistFailed    = "persist_failed"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

// IntakeMetrics exposes counters/histograms for the intake endpoints.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	persistLatency   *prometheus.HistogramVec
	sideEffectErrors *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corstar",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Intake requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		persistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "corstar",
			Subsystem: "intake",
			Name:      "persist_seconds",
			Help:      "Latency of the primary insert",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corstar",
			Subsystem: "intake",
			Name:      "side_effect_failures_total",
			Help:      "Best-effort writes (events, alerts) that failed after an accepted submission",
		}, []string{"endpoint", "kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.persistLatency, m.sideEffectErrors)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *IntakeMetrics) ObservePersistLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.persistLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *IntakeMetrics) ObserveSideEffectFailure(endpoint, kind string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(endpoint, kind).Inc()
}
