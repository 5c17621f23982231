package metrics

import "github.com/prometheus/client_golang/prometheus"

// ToolMetrics exposes counters/histograms for tool call handling.
type ToolMetrics struct {
	callsTotal     *prometheus.CounterVec
	callLatency    *prometheus.HistogramVec
	bookingsTotal  *prometheus.CounterVec
	paymentsCents  *prometheus.CounterVec
	conflictsTotal prometheus.Counter
}

func NewToolMetrics(reg prometheus.Registerer) *ToolMetrics {
	m := &ToolMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total tool invocations from the voice platform",
		}, []string{"tool", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "tools",
			Name:      "call_latency_seconds",
			Help:      "Latency of tool call processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total reservations created by status",
		}, []string{"status"}),
		paymentsCents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "payments",
			Name:      "collected_cents_total",
			Help:      "Total cents collected by outcome",
		}, []string{"outcome"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "bookings",
			Name:      "conflicts_total",
			Help:      "Booking attempts rejected for a conflicting window",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency, m.bookingsTotal, m.paymentsCents, m.conflictsTotal)
	return m
}

func (m *ToolMetrics) ObserveCall(tool, status string) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(tool, status).Inc()
}

func (m *ToolMetrics) ObserveCallLatency(tool string, seconds float64) {
	if m == nil {
		return
	}
	m.callLatency.WithLabelValues(tool).Observe(seconds)
}

func (m *ToolMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ToolMetrics) ObservePayment(outcome string, amountCents int64) {
	if m == nil {
		return
	}
	if amountCents < 0 {
		amountCents = 0
	}
	m.paymentsCents.WithLabelValues(outcome).Add(float64(amountCents))
}

func (m *ToolMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}
