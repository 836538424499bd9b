package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for LodeStore.
type Metrics struct {
	config MetricsConfig

	// Store operation metrics
	opsTotal   *prometheus.CounterVec
	opDuration *prometheus.HistogramVec

	// Schema lifecycle metrics
	upgradesTotal prometheus.Counter
	storesOpen    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"store", "op", "status"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of store operations in seconds",
				Buckets:   buckets,
			},
			[]string{"store", "op"},
		),
		upgradesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_upgrades_total",
				Help:      "Total number of schema upgrades applied",
			},
		),
		storesOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stores_open",
				Help:      "Current number of open store facades",
			},
		),
	}

	registry.MustRegister(m.opsTotal, m.opDuration, m.upgradesTotal, m.storesOpen)

	return m, nil
}

// ObserveOperation records one store operation outcome and latency.
// Safe to call on a nil or disabled Metrics.
func (m *Metrics) ObserveOperation(store, op string, err error, seconds float64) {
	if m == nil || m.registry == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.opsTotal.WithLabelValues(store, op, status).Inc()
	m.opDuration.WithLabelValues(store, op).Observe(seconds)
}

// RecordUpgrade records one applied schema upgrade.
func (m *Metrics) RecordUpgrade(fromVersion, toVersion int) {
	if m == nil || m.registry == nil {
		return
	}
	m.upgradesTotal.Inc()
}

// AddOpenStores adjusts the open-facade gauge by delta.
func (m *Metrics) AddOpenStores(delta float64) {
	if m == nil || m.registry == nil {
		return
	}
	m.storesOpen.Add(delta)
}

// Registry returns the underlying Prometheus registry, or nil when
// metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler exposing the metrics, suitable for
// mounting on a caller-owned mux.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
