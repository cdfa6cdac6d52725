// Package metrics provides Prometheus metrics for the compliance service.
// Metrics are exposed on /metrics by the HTTP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as label values
const (
	ReasonInvalidRecord   = "invalid_record"
	ReasonUnknownCategory = "unknown_category"
	ReasonModelInput      = "model_input"
	ReasonPredictor       = "predictor"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Classifications   *prometheus.CounterVec // by compliance status
	Failures          *prometheus.CounterVec // by reason
	PredictionLatency prometheus.Histogram
	Probabilities     prometheus.Histogram
	BatchSize         prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec // by method, route, status
	HTTPLatency       *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on a custom registry (useful for testing)
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_classifications_total",
			Help: "Records classified, by compliance status",
		}, []string{"status"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_classification_failures_total",
			Help: "Records that could not be classified, by reason",
		}, []string{"reason"}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_prediction_latency_seconds",
			Help:    "Predictor call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		Probabilities: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_probability",
			Help:    "Distribution of predicted compliance probabilities",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_batch_size",
			Help:    "Number of records per batch classification",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests, by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveClassification records a successful classification
func (m *Metrics) ObserveClassification(status string, probability float64, latency time.Duration) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(status).Inc()
	m.Probabilities.Observe(probability)
	m.PredictionLatency.Observe(latency.Seconds())
}

// ObserveFailure records a record that could not be classified
func (m *Metrics) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(reason).Inc()
}

// ObserveBatch records the size of a batch run
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(method, route, code string, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}
