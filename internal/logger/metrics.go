package logger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the service on a private registry.
// All collectors are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	eventsExtracted *prometheus.CounterVec
	enrichment      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

var defaultMetrics = NewMetrics()

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solea",
			Name:      "fetch_total",
			Help:      "Page fetches by outcome (ok, timeout, error)",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "solea",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and parsing a page",
			Buckets:   prometheus.DefBuckets,
		}),
		eventsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solea",
			Name:      "events_extracted_total",
			Help:      "Events published after filtering, by type",
		}, []string{"type"}),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solea",
			Name:      "enrichment_total",
			Help:      "Detail-page enrichment attempts by result (same_day, fallback, miss)",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solea",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.eventsExtracted,
		m.enrichment,
		m.httpRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one page fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// AddEvents counts n published events of the given type.
func (m *Metrics) AddEvents(kind string, n int) {
	if n > 0 {
		m.eventsExtracted.WithLabelValues(kind).Add(float64(n))
	}
}

// IncEnrichment counts one enrichment attempt.
func (m *Metrics) IncEnrichment(result string) {
	m.enrichment.WithLabelValues(result).Inc()
}

// IncRequest counts one API request.
func (m *Metrics) IncRequest(route string, status int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// DefaultMetrics returns the process-wide metrics.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
