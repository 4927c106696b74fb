// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics by the API router:

	curl http://localhost:5000/metrics

# Available Metrics

Database Metrics:
  - marquee_db_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - marquee_db_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

API Metrics:
  - marquee_api_requests_total: Requests by method, endpoint and status (counter)
  - marquee_api_request_duration_seconds: Request latency (histogram)
  - marquee_api_active_requests: In-flight requests (gauge)
  - marquee_api_rate_limit_hits_total: Rejected requests (counter)

Cache Metrics:
  - marquee_cache_hits_total / marquee_cache_misses_total (counter)
    Labels: cache_type (recommendations, visualization)
  - marquee_cache_errors_total: Backend errors degraded to misses (counter)
  - marquee_cache_entries, marquee_cache_evictions_total: in-memory backend only

Circuit Breaker Metrics:
  - marquee_circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - marquee_circuit_breaker_requests_total: Labels name, result
  - marquee_circuit_breaker_state_transitions_total: Labels name, from_state, to_state

Import Pipeline Metrics:
  - marquee_pipeline_stage_duration_seconds: Labels stage
  - marquee_pipeline_runs_total: Labels outcome (completed, skipped, failed, cancelled)
  - marquee_pipeline_rows_total: Labels outcome (inserted, skipped, failed)
  - marquee_pipeline_edges_written_total
  - marquee_pipeline_batches_failed_total
  - marquee_pipeline_explained_variance_ratio
  - marquee_pipeline_feature_columns: Labels block
  - marquee_pipeline_last_success_timestamp

# Usage

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)

	metrics.RecordCacheLookup("recommendations", hit)

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
