package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	downstreamCalls *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics against the given registerer.
// main passes prometheus.DefaultRegisterer; tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_kind"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_kind"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_ms",
				Help:    "Latency of HTTP requests in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"method", "route", "status"},
		),
		downstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "downstream_calls_total",
				Help: "Total number of calls to downstream services",
			},
			[]string{"service", "outcome"},
		),
	}
}

// RecordCacheHit increments the hit counter for a cache key kind.
func (m *Metrics) RecordCacheHit(keyKind string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(keyKind).Inc()
}

// RecordCacheMiss increments the miss counter for a cache key kind.
func (m *Metrics) RecordCacheMiss(keyKind string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(keyKind).Inc()
}

// RecordRequest observes one handled HTTP request.
func (m *Metrics) RecordRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).
		Observe(float64(duration.Microseconds()) / 1000.0)
}

// RecordDownstreamCall counts one call to the simulator or statistics service.
func (m *Metrics) RecordDownstreamCall(service, outcome string) {
	if m == nil {
		return
	}
	m.downstreamCalls.WithLabelValues(service, outcome).Inc()
}
