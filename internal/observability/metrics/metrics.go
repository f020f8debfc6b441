package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoiceMetrics exposes counters/histograms for the call flow.
type VoiceMetrics struct {
	tierAttempts    *prometheus.CounterVec
	tierLatency     *prometheus.HistogramVec
	callOutcomes    *prometheus.CounterVec
	webhookLatency  *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
	sessionsEvicted prometheus.Counter
	sinkFailures    *prometheus.CounterVec
}

func NewVoiceMetrics(reg prometheus.Registerer) *VoiceMetrics {
	m := &VoiceMetrics{
		tierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marcel",
			Subsystem: "responder",
			Name:      "tier_attempts_total",
			Help:      "Response generation attempts by tier and outcome",
		}, []string{"tier", "outcome"}),
		tierLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marcel",
			Subsystem: "responder",
			Name:      "tier_latency_seconds",
			Help:      "Latency of each tier attempt",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 4, 5, 7.5, 10},
		}, []string{"tier"}),
		callOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marcel",
			Subsystem: "voice",
			Name:      "call_outcomes_total",
			Help:      "Ended calls by outcome",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marcel",
			Subsystem: "voice",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of Twilio webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marcel",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions alive after the last sweep",
		}),
		sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marcel",
			Subsystem: "session",
			Name:      "evicted_total",
			Help:      "Sessions removed by the stale sweep",
		}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marcel",
			Subsystem: "callrecord",
			Name:      "sink_failures_total",
			Help:      "Call record deliveries that failed, by sink",
		}, []string{"sink"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.tierAttempts, m.tierLatency, m.callOutcomes, m.webhookLatency,
		m.activeSessions, m.sessionsEvicted, m.sinkFailures)
	return m
}

func (m *VoiceMetrics) ObserveTier(tier, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.tierAttempts.WithLabelValues(tier, outcome).Inc()
	m.tierLatency.WithLabelValues(tier).Observe(seconds)
}

func (m *VoiceMetrics) ObserveCallOutcome(outcome string) {
	if m == nil {
		return
	}
	m.callOutcomes.WithLabelValues(outcome).Inc()
}

func (m *VoiceMetrics) ObserveWebhookLatency(route string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(route).Observe(seconds)
}

// ObserveSweep records a session sweep result.
func (m *VoiceMetrics) ObserveSweep(evicted, active int) {
	if m == nil {
		return
	}
	m.sessionsEvicted.Add(float64(evicted))
	m.activeSessions.Set(float64(active))
}

func (m *VoiceMetrics) ObserveSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}
