package docs

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// metrics are per instance, told apart by the "prefix" const label.
type metrics struct {
	requests      *prometheus.CounterVec
	operations    prometheus.Gauge
	schemas       prometheus.Gauge
	buildDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer, prefix string, logger *zap.Logger) *metrics {
	labels := prometheus.Labels{"prefix": prefix}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "oasdocs",
			Name:        "document_requests_total",
			Help:        "Requests for the OpenAPI document by format and status code.",
			ConstLabels: labels,
		}, []string{"format", "code"}),
		operations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "oasdocs",
			Name:        "document_operations",
			Help:        "Operations in the built OpenAPI document.",
			ConstLabels: labels,
		}),
		schemas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "oasdocs",
			Name:        "document_schemas",
			Help:        "Registered component schemas.",
			ConstLabels: labels,
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "oasdocs",
			Name:        "document_build_duration_seconds",
			Help:        "Time spent assembling and encoding the OpenAPI document.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}

	if reg == nil {
		return m
	}

	m.requests = register(reg, m.requests, logger)
	m.operations = register(reg, m.operations, logger)
	m.schemas = register(reg, m.schemas, logger)
	m.buildDuration = register(reg, m.buildDuration, logger)

	return m
}

// register adds c to reg. An identical collector that is already registered
// is reused; other failures leave c working but unexported.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, logger *zap.Logger) T {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing
		}
	}

	logger.Warn("metric not registered", zap.Error(err))
	return c
}

func (m *metrics) built(took time.Duration, operations, schemas int) {
	m.buildDuration.Observe(took.Seconds())
	m.operations.Set(float64(operations))
	m.schemas.Set(float64(schemas))
}

func (m *metrics) request(format string, code string) {
	m.requests.WithLabelValues(format, code).Inc()
}
