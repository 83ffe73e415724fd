package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the kiosk's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	viewShown       *prometheus.CounterVec
	staleResponses  *prometheus.CounterVec
}

// New creates and registers the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "backend_requests_total",
			Help:      "Backend calls by call name and outcome.",
		}, []string{"call", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kiosk",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
		viewShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "view_shown_total",
			Help:      "Times each view was shown.",
		}, []string{"view"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "stale_responses_total",
			Help:      "Backend responses discarded because a newer request superseded them.",
		}, []string{"flow"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.backendRequests,
		m.backendLatency,
		m.viewShown,
		m.staleResponses,
	)
	return m
}

// ObserveRequest matches vending.Client.OnRequest
func (m *Metrics) ObserveRequest(call, outcome string, elapsed time.Duration) {
	m.backendRequests.WithLabelValues(call, outcome).Inc()
	m.backendLatency.WithLabelValues(call).Observe(elapsed.Seconds())
}

// ViewShown counts a view switch
func (m *Metrics) ViewShown(view string) {
	m.viewShown.WithLabelValues(view).Inc()
}

// StaleResponse counts a discarded response
func (m *Metrics) StaleResponse(flow string) {
	m.staleResponses.WithLabelValues(flow).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
