package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnalysisMetrics exposes counters/histograms for the analysis pipeline.
type AnalysisMetrics struct {
	turnsTotal       *prometheus.CounterVec
	degradedTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	responderLatency *prometheus.HistogramVec
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "athena",
			Subsystem: "analysis",
			Name:      "turns_total",
			Help:      "Total analyzed turns by terminal outcome",
		}, []string{"outcome"}),
		degradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "athena",
			Subsystem: "analysis",
			Name:      "degraded_total",
			Help:      "Total classifier stages that degraded to neutral defaults",
		}, []string{"stage"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "athena",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Latency of one full analysis pass",
			Buckets:   prometheus.DefBuckets,
		}),
		responderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "athena",
			Subsystem: "responder",
			Name:      "latency_seconds",
			Help:      "Latency of external responder calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.degradedTotal, m.analysisDuration, m.responderLatency)
	return m
}

// Terminal outcomes recorded per turn.
const (
	OutcomeRejected = "rejected"
	OutcomeCrisis   = "crisis"
	OutcomeNormal   = "normal"
	OutcomeFallback = "fallback"
)

func (m *AnalysisMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *AnalysisMetrics) ObserveDegraded(stage string) {
	if m == nil {
		return
	}
	m.degradedTotal.WithLabelValues(stage).Inc()
}

func (m *AnalysisMetrics) ObserveAnalysisDuration(seconds float64) {
	if m == nil {
		return
	}
	m.analysisDuration.Observe(seconds)
}

func (m *AnalysisMetrics) ObserveResponderLatency(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.responderLatency.WithLabelValues(provider, status).Observe(seconds)
}
