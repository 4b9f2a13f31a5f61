package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	photoUploadsTotal  *prometheus.CounterVec
	photoLatency       prometheus.Histogram
	mutationsTotal     *prometheus.CounterVec
	exportDuration     prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_errors_total",
			Help: "Total number of HTTP error responses.",
		}, []string{"method", "route", "status"})

		photoUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_photo_uploads_total",
			Help: "Student photo uploads by outcome.",
		}, []string{"result"})

		photoLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_photo_upload_seconds",
			Help:    "Time spent validating and storing a student photo.",
			Buckets: prometheus.DefBuckets,
		})

		mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_mutations_total",
			Help: "Committed registry changes by entity and action.",
		}, []string{"entity", "action"})

		exportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_export_seconds",
			Help:    "Time spent building the spreadsheet export.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			photoUploadsTotal,
			photoLatency,
			mutationsTotal,
			exportDuration,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// PhotoUploads exposes the photo upload outcome counter.
func PhotoUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return photoUploadsTotal
}

// PhotoLatency exposes the photo upload latency histogram.
func PhotoLatency() prometheus.Histogram {
	RegisterMetrics()
	return photoLatency
}

// Mutations exposes the committed change counter.
func Mutations() *prometheus.CounterVec {
	RegisterMetrics()
	return mutationsTotal
}

// ExportDuration exposes the export timing histogram.
func ExportDuration() prometheus.Histogram {
	RegisterMetrics()
	return exportDuration
}

// MetricsHandler serves the Prometheus scrape endpoint of the default registry.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
}
