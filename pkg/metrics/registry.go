// Package metrics holds the Prometheus collectors of the notifier.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the notifier's collectors.
type Registry struct {
	registry *prometheus.Registry

	publishTotal    *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec

	mu              sync.Mutex
	brokerConnected prometheus.GaugeFunc
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,

		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_notifier_publish_total",
				Help: "Total number of publish attempts",
			},
			[]string{"topic", "status"}, // status: success, error
		),

		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "registry_notifier_publish_duration_seconds",
				Help:    "Time spent handing a message to the broker client",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
	}

	registry.MustRegister(
		r.publishTotal,
		r.publishDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// RecordPublish records one publish attempt on topic.
func (r *Registry) RecordPublish(topic string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.publishTotal.WithLabelValues(topic, status).Inc()
	r.publishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// ObserveConnection exports connected as registry_notifier_broker_connected, evaluated on every
// scrape. A later call replaces the earlier source.
func (r *Registry) ObserveConnection(connected func() bool) {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "registry_notifier_broker_connected",
			Help: "1 if the broker connection is up or reconnecting, 0 otherwise",
		},
		func() float64 {
			if connected() {
				return 1
			}
			return 0
		},
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.brokerConnected != nil {
		r.registry.Unregister(r.brokerConnected)
	}
	r.registry.MustRegister(gauge)
	r.brokerConnected = gauge
}

// Handler returns the HTTP handler serving the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
