// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "fileshare"

// Upload outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeTooLarge  = "too_large"
	OutcomeIOError   = "io_error"
)

// PoolStats is implemented by offload.Pool.
type PoolStats interface {
	Queued() int64
	InFlight() int64
}

// Config configures the collectors.
type Config struct {
	// Namespace prefixes every metric name (default: "fileshare").
	Namespace string

	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer

	// Buckets are used by the duration histograms (default: prometheus.DefBuckets).
	Buckets []float64
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) { c.Namespace = ns }
}

// WithRegistry sets the registry collectors are registered with.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = reg }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(b []float64) Option {
	return func(c *Config) { c.Buckets = b }
}

// Metrics holds every collector of the service.
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	Uploads        *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	UploadParts    prometheus.Counter
	UploadBytes    prometheus.Counter
}

// New creates and registers the collectors. pool may be nil.
func New(pool PoolStats, opts ...Option) *Metrics {
	cfg := Config{
		Namespace: defaultNamespace,
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	m := &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   cfg.Buckets,
		}, []string{"route", "method"}),

		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Upload requests by outcome.",
		}, []string{"outcome"}),

		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time spent ingesting one upload request.",
			Buckets:   cfg.Buckets,
		}),

		UploadParts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "upload",
			Name:      "parts_total",
			Help:      "Parts fully written to disk.",
		}),

		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Bytes written to disk by uploads, including truncated parts.",
		}),
	}

	if pool != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "offload",
			Name:      "queued_jobs",
			Help:      "Filesystem jobs waiting for a worker.",
		}, func() float64 { return float64(pool.Queued()) })

		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "offload",
			Name:      "inflight_jobs",
			Help:      "Filesystem jobs running on a worker.",
		}, func() float64 { return float64(pool.InFlight()) })
	}

	return m
}

// ObserveUpload records the outcome of one upload request.
func (m *Metrics) ObserveUpload(outcome string, parts int, bytes int64, seconds float64) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
	m.UploadDuration.Observe(seconds)
	m.UploadParts.Add(float64(parts))
	m.UploadBytes.Add(float64(bytes))
}
