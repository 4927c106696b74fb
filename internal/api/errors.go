// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

// Error codes returned in models.APIError.Code.
const (
	CodeInvalidMovieID           = "INVALID_MOVIE_ID"
	CodeMovieNotFound            = "MOVIE_NOT_FOUND"
	CodeMissingQuery             = "MISSING_QUERY"
	CodeNoRecommendations        = "NO_RECOMMENDATIONS"
	CodeInvalidVisualizationType = "INVALID_VISUALIZATION_TYPE"
	CodeImportInProgress         = "IMPORT_IN_PROGRESS"
	CodeNoImportRunning          = "NO_IMPORT_RUNNING"
	CodeImportUnavailable        = "IMPORT_UNAVAILABLE"
	CodeProgressUnavailable      = "PROGRESS_UNAVAILABLE"
	CodeRateLimited              = "RATE_LIMITED"
	CodeDatabaseError            = "DATABASE_ERROR"
	CodeInternalError            = "INTERNAL_ERROR"
	CodeNotFound                 = "NOT_FOUND"
	CodeMethodNotAllowed         = "METHOD_NOT_ALLOWED"
)
