package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestToolMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)
	m.ObserveCall("book_appointment", "ok")
	m.ObserveCallLatency("book_appointment", 0.5)
	m.ObserveBooking("PENCILED")
	m.ObserveConflict()
}

func TestToolMetricsPaymentValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)
	m.ObservePayment("succeeded", 189750)
	m.ObservePayment("succeeded", 250)
	m.ObservePayment("declined", -5)

	var metric dto.Metric
	counter, err := m.paymentsCents.GetMetricWithLabelValues("succeeded")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 190000 {
		t.Fatalf("expected 190000 cents collected, got %v", got)
	}
}

func TestToolMetricsNilSafe(t *testing.T) {
	var m *ToolMetrics
	m.ObserveCall("tool", "ok")
	m.ObserveCallLatency("tool", 0.1)
	m.ObserveBooking("TOUR")
	m.ObservePayment("succeeded", 1)
	m.ObserveConflict()
}
