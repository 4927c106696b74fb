// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api serves the movie similarity graph over HTTP.

# Endpoints

	GET    /api/status                          database and cache connectivity
	GET    /api/search?q=...                    title search (POST form field movie_title)
	GET    /api/recommendations/{id}?limit=5    nearest neighbors with evaluation metrics
	GET    /api/visualization/{type}/{id}       similarity_chart or wordcloud data
	POST   /api/clear-visualization-cache       drop stored and cached visualizations
	POST   /api/import                          start a pipeline run in the background
	GET    /api/import/status                   progress of the current or last run
	DELETE /api/import                          cancel the running import
	GET    /api/ws                              websocket stream of import progress
	GET    /metrics                             Prometheus exposition

Every JSON endpoint answers with the models.APIResponse envelope. Errors carry
a machine-readable code such as MOVIE_NOT_FOUND.

# Caching

Recommendations and visualizations are read through the optional cache.Store.
A nil store disables caching; a failing store degrades to the database.
Finishing an import invalidates both key families.

# Middleware

The router installs, in order: request id, real IP, panic recovery, access
logging, CORS (go-chi/cors), per-IP rate limiting (go-chi/httprate),
Prometheus instrumentation and response compression.
*/
package api
