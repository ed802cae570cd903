package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the proxy's collectors on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry
	mu       sync.Mutex

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// NewRegistry creates a registry with the go/process collectors and the
// upstream request metrics registered.
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()
	// Register default collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		registry: registry,
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_upstream_requests_total",
				Help: "Total number of requests sent to the upstream store",
			},
			[]string{"route", "method", "status"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_upstream_request_duration_seconds",
				Help:    "Duration of upstream requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
			},
			[]string{"route", "method"},
		),
	}
	registry.MustRegister(r.upstreamRequests, r.upstreamLatency)
	return r
}

// ObserveUpstream records one upstream call. status 0 means no response.
func (r *Registry) ObserveUpstream(route, method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.upstreamRequests.WithLabelValues(route, method, label).Inc()
	r.upstreamLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RegisterCollector registers an extra prometheus collector
func (r *Registry) RegisterCollector(collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.Register(collector)
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Gatherer returns the underlying prometheus registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
