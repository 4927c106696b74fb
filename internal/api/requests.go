// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/marquee/internal/validation"
)

// Recommendation list bounds.
const (
	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 50
)

// MaxSearchResults caps substring title matches.
const MaxSearchResults = 10

// SearchRequest is a title search. Query comes from q on GET and movie_title on POST.
type SearchRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// parseSearchRequest reads and trims the search term for the request method.
func parseSearchRequest(r *http.Request) SearchRequest {
	if r.Method == http.MethodPost {
		return SearchRequest{Query: strings.TrimSpace(r.PostFormValue("movie_title"))}
	}
	return SearchRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
}

// validateRequest runs the shared validator over req.
func validateRequest(req interface{}) *validation.RequestValidationError {
	return validation.ValidateStruct(req)
}
