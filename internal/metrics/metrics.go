package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec
	HTTPResponseSize    prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Visibility pipeline metrics
	ExclusionResolveDuration prometheus.HistogramVec
	ExclusionSetSize         prometheus.HistogramVec
	FeedGenerationTime       prometheus.HistogramVec

	// Moderation metrics
	ReportsCreatedTotal prometheus.CounterVec
	AutoHidesTotal      prometheus.CounterVec
	ReportReviewsTotal  prometheus.CounterVec

	// Search metrics
	SearchRequestsTotal   prometheus.CounterVec
	SearchRequestDuration prometheus.HistogramVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			// HTTP metrics
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),

			// Rate limiting metrics
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			// Visibility pipeline metrics
			ExclusionResolveDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "exclusion_resolve_duration_seconds",
					Help:    "Time to resolve a viewer exclusion set in seconds",
					Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25},
				},
				[]string{"flags"},
			),
			ExclusionSetSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "exclusion_set_size",
					Help:    "Number of users in resolved exclusion sets",
					Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
				},
				[]string{"flags"},
			),
			FeedGenerationTime: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_duration_seconds",
					Help:    "Time to generate feed in seconds",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"feed_type"},
			),

			// Moderation metrics
			ReportsCreatedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reports_created_total",
					Help: "Total number of reports filed",
				},
				[]string{"target_type", "reason"},
			),
			AutoHidesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "auto_hides_total",
					Help: "Total number of auto-hide threshold crossings",
				},
				[]string{"target_type"},
			),
			ReportReviewsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "report_reviews_total",
					Help: "Total number of admin report status changes",
				},
				[]string{"status"},
			),

			// Search metrics
			SearchRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_requests_total",
					Help: "Total number of search requests",
				},
				[]string{"index", "mode", "status"},
			),
			SearchRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "search_request_duration_seconds",
					Help:    "Search request latency in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
				},
				[]string{"index", "mode"},
			),

			// Error metrics
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
