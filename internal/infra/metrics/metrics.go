// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	bomExpansions *prometheus.CounterVec
	bomLines      *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inventory",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bomExpansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "bom_expansions_total",
			Help:      "BOM computations by mode (direct or expanded).",
		}, []string{"mode"}),
		bomLines: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inventory",
			Name:      "bom_lines",
			Help:      "Number of lines returned per BOM computation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"mode"}),
	}
	reg.MustRegister(m.requests, m.latency, m.bomExpansions, m.bomLines)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveBOM(expanded bool, lines int) {
	if m == nil {
		return
	}
	mode := "direct"
	if expanded {
		mode = "expanded"
	}
	m.bomExpansions.WithLabelValues(mode).Inc()
	m.bomLines.WithLabelValues(mode).Observe(float64(lines))
}
