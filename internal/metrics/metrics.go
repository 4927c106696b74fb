// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommendations", "visualization"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_errors_total",
			Help: "Total number of cache backend errors treated as misses",
		},
		[]string{"operation"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_cache_entries",
			Help: "Current number of cached entries (in-memory backend only)",
		},
		[]string{"backend"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"backend"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Import Pipeline Metrics
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_pipeline_stage_duration_seconds",
			Help:    "Duration of import pipeline stages in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"stage"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_pipeline_runs_total",
			Help: "Total number of import pipeline runs by terminal outcome",
		},
		[]string{"outcome"}, // "completed", "skipped", "failed", "cancelled"
	)

	PipelineRowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_pipeline_rows_total",
			Help: "Total number of catalog rows persisted by outcome",
		},
		[]string{"outcome"}, // "inserted", "skipped", "failed"
	)

	PipelineEdgesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_pipeline_edges_written_total",
			Help: "Total number of similarity edges upserted",
		},
	)

	PipelineBatchesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_pipeline_batches_failed_total",
			Help: "Total number of similarity batches whose write was rolled back",
		},
	)

	PipelineExplainedVariance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_pipeline_explained_variance_ratio",
			Help: "Explained variance ratio of the most recent dimensionality reduction",
		},
	)

	PipelineFeatureColumns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_pipeline_feature_columns",
			Help: "Column count of each feature block in the most recent run",
		},
		[]string{"block"}, // "genre", "tfidf", "numeric", "collection", "total"
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last completed import run",
		},
	)

	// WebSocket Metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_websocket_clients",
			Help: "Number of connected import progress websocket clients",
		},
	)

	WebSocketMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_websocket_messages_dropped_total",
			Help: "Broadcast messages dropped because the hub queue was full",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup counts a hit or a miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordPipelineStage records how long a pipeline stage took.
func RecordPipelineStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPipelineRun counts a finished run. A completed run also updates the
// last-success timestamp.
func RecordPipelineRun(outcome string) {
	PipelineRuns.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		PipelineLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRows adds persisted-row counts by outcome.
func RecordRows(inserted, skipped, failed int) {
	PipelineRowsImported.WithLabelValues("inserted").Add(float64(inserted))
	PipelineRowsImported.WithLabelValues("skipped").Add(float64(skipped))
	PipelineRowsImported.WithLabelValues("failed").Add(float64(failed))
}
