package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Model query metrics
	ModelQueriesTotal  *prometheus.CounterVec
	ModelQueryDuration prometheus.Histogram

	// Table metrics
	TableEntries *prometheus.GaugeVec

	// Application Metrics
	ResolutionsTotal *prometheus.CounterVec
	ResolutionErrors *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Model query metrics
		ModelQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "model_queries_total",
				Help: "Total number of model queries by outcome",
			},
			[]string{"outcome"},
		),

		ModelQueryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "model_query_duration_seconds",
				Help:    "Model query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Table metrics
		TableEntries: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "table_entries",
				Help: "Number of loaded resolution table entries by kind",
			},
			[]string{"kind"},
		),

		// Application Metrics
		ResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolutions_total",
				Help: "Total number of email resolutions by answering source",
			},
			[]string{"source"},
		),

		ResolutionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolution_errors_total",
				Help: "Total number of resolution errors",
			},
			[]string{"error_type"},
		),
	}
}
