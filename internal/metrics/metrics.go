// Package metrics exposes Prometheus metrics for conversions, catalog
// batches and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "tcgmatch"

// Metrics holds every collector of the service. It implements
// core.Recorder, and ObserveBatch matches catalog.Observer.
type Metrics struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
	runtime   bool

	conversions        *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	rows               *prometheus.CounterVec

	catalogBatches    *prometheus.CounterVec
	catalogStatements *prometheus.CounterVec
	catalogDuration   *prometheus.HistogramVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter
}

// Option configures Metrics.
type Option func(*Metrics)

// WithNamespace sets the namespace of all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers the collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Metrics) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithHistogramBuckets sets the latency buckets, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRuntimeMetrics adds the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(m *Metrics) { m.runtime = true }
}

// New creates and registers all collectors.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.conversions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "conversions_total",
		Help:      "Conversions by outcome",
	}, []string{"outcome"})

	m.conversionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "conversion_duration_seconds",
		Help:      "Wall time of a conversion, including the wait for a slot",
		Buckets:   m.buckets,
	})

	m.rows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rows_total",
		Help:      "Input rows by result: resolved, failed or aggregated into another row",
	}, []string{"result"})

	m.catalogBatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "batches_total",
		Help:      "Catalog batches by fetch and status",
	}, []string{"fetch", "status"})

	m.catalogStatements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "statements_total",
		Help:      "Chunked statements submitted per fetch",
	}, []string{"fetch"})

	m.catalogDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "batch_duration_seconds",
		Help:      "Round-trip time of one catalog batch",
		Buckets:   m.buckets,
	}, []string{"fetch"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route",
		Buckets:   m.buckets,
	}, []string{"method", "route"})

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	return m
}

// ConversionFinished records one conversion outcome.
func (m *Metrics) ConversionFinished(outcome string, elapsed time.Duration) {
	m.conversions.WithLabelValues(outcome).Inc()
	m.conversionDuration.Observe(elapsed.Seconds())
}

// RowsProcessed records the row counts of a successful conversion.
func (m *Metrics) RowsProcessed(resolved, failed, aggregated int) {
	m.rows.WithLabelValues("resolved").Add(float64(resolved))
	m.rows.WithLabelValues("failed").Add(float64(failed))
	m.rows.WithLabelValues("aggregated").Add(float64(aggregated))
}

// ObserveBatch records one catalog batch.
func (m *Metrics) ObserveBatch(fetch string, statements int, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.catalogBatches.WithLabelValues(fetch, status).Inc()
	m.catalogStatements.WithLabelValues(fetch).Add(float64(statements))
	m.catalogDuration.WithLabelValues(fetch).Observe(elapsed.Seconds())
}

// HTTPRequest records one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited records one rejected request.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
