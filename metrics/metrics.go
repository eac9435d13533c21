package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	Submissions     *prometheus.CounterVec
	SubmittedAmount *prometheus.CounterVec
}

// New registers on a private registry so several instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grouporder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grouporder",
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grouporder",
			Subsystem: "orders",
			Name:      "submissions_total",
			Help:      "Order submissions by total policy and outcome.",
		}, []string{"policy", "outcome"}),
		SubmittedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grouporder",
			Subsystem: "orders",
			Name:      "submitted_amount_total",
			Help:      "Sum of accepted session totals.",
		}, []string{"policy"}),
	}
	reg.MustRegister(
		m.Requests, m.LatencyMS, m.Submissions, m.SubmittedAmount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSubmission(policy, outcome string, amount float64) {
	m.Submissions.WithLabelValues(policy, outcome).Inc()
	if amount > 0 {
		m.SubmittedAmount.WithLabelValues(policy).Add(amount)
	}
}
