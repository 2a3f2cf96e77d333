// Package metrics exposes Prometheus collectors for the summary service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"method", "route"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_generations_total",
			Help: "Total number of model generations, labeled by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	generationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_generation_duration_seconds",
			Help:    "Histogram of model generation latencies, labeled by kind.",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"kind"},
	)

	bulkJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_bulk_jobs_total",
			Help: "Total number of bulk jobs processed, labeled by status.",
		},
		[]string{"status"},
	)

	bulkCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_bulk_candidates_total",
			Help: "Total number of candidates processed in bulk jobs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_webhook_events_total",
			Help: "Total number of webhook deliveries, labeled by disposition.",
		},
		[]string{"disposition"},
	)

	workerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_worker_runs_total",
			Help: "Total number of automated worker runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveGeneration records one model generation outcome.
func ObserveGeneration(kind string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	generationsTotal.WithLabelValues(kind, outcome).Inc()
	generationDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveBulkJob increments the bulk job counter for the given status.
func ObserveBulkJob(status string) {
	bulkJobsTotal.WithLabelValues(status).Inc()
}

// ObserveBulkCandidate increments the per-candidate bulk counter.
func ObserveBulkCandidate(outcome string) {
	bulkCandidatesTotal.WithLabelValues(outcome).Inc()
}

// ObserveWebhookEvent records a webhook delivery disposition
// (enqueued, skipped, disabled, malformed, missing_slugs, enqueue_failed).
func ObserveWebhookEvent(disposition string) {
	webhookEventsTotal.WithLabelValues(disposition).Inc()
}

// ObserveWorkerRun records an automated worker run outcome.
func ObserveWorkerRun(outcome string) {
	workerRunsTotal.WithLabelValues(outcome).Inc()
}
