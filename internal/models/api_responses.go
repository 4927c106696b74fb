// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". On error, Error is set and Data is nil:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"},
//	  "error": {"code": "MOVIE_NOT_FOUND", "message": "Movie with ID 9 not found"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
// Cached responses report QueryTimeMS as 0.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// StatusResponse reports backing service connectivity.
type StatusResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Cache        string `json:"cache"`
	CacheEnabled bool   `json:"cache_enabled"`
}

// SearchResult is the body of a title search. Movie is set only for a
// single exact match; otherwise SimilarMovies lists the candidates.
type SearchResult struct {
	ExactMatch    bool    `json:"exact_match"`
	Movie         *Movie  `json:"movie,omitempty"`
	SimilarMovies []Movie `json:"similar_movies,omitempty"`
}

// EvaluationMetrics describes how close a recommendation list is to its source.
// Overlap and relevance are percentages; rating difference is in vote points.
type EvaluationMetrics struct {
	AverageGenreOverlap     float64 `json:"average_genre_overlap"`
	AverageRatingDifference float64 `json:"average_rating_difference"`
	AverageContentRelevance float64 `json:"average_content_relevance"`
}

// RecommendationResponse is the body of a recommendations request.
type RecommendationResponse struct {
	MovieID         int64             `json:"movie_id"`
	SourceMovie     Movie             `json:"source_movie"`
	Recommendations []SimilarMovie    `json:"recommendations"`
	Metrics         EvaluationMetrics `json:"metrics"`
}

// Visualization kinds.
const (
	VisualizationSimilarityChart = "similarity_chart"
	VisualizationWordCloud       = "wordcloud"
)

// ChartBar is one bar of a similarity chart.
type ChartBar struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// WordWeight is one term of a word cloud with its frequency.
type WordWeight struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Visualization is the data behind a chart. Exactly one of Bars or Words is
// populated depending on Type.
type Visualization struct {
	MovieID   int64        `json:"movie_id"`
	Type      string       `json:"visualization_type"`
	Title     string       `json:"title"`
	Bars      []ChartBar   `json:"bars,omitempty"`
	Words     []WordWeight `json:"words,omitempty"`
	Message   string       `json:"message,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
