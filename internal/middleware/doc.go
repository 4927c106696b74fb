// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation ids.
  - PrometheusMetrics: records request count, latency and in-flight
    requests, labelled by the chi route pattern so movie ids do not create
    new series.
  - AccessLog: one structured log line per request.

All middleware has the standard func(http.Handler) http.Handler shape and is
installed with chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
