// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Search looks a movie up by title. A single case-insensitive exact match is
// returned as the movie; several exact matches, or failing that up to ten
// substring matches, are returned as candidates.
//
// @Summary Search movies by title
// @Tags Movies
// @Produce json
// @Param q query string false "Title (GET)"
// @Param movie_title formData string false "Title (POST)"
// @Success 200 {object} models.APIResponse{data=models.SearchResult}
// @Failure 400 {object} models.APIResponse
// @Router /api/search [get]
// @Router /api/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := parseSearchRequest(r)
	if req.Query == "" {
		respondError(w, r, http.StatusBadRequest, CodeMissingQuery, "Movie title is required", nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	exact, err := h.db.FindMoviesByTitle(r.Context(), req.Query)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to search movies", err)
		return
	}

	var result models.SearchResult
	switch len(exact) {
	case 1:
		result = models.SearchResult{ExactMatch: true, Movie: &exact[0]}
	case 0:
		partial, err := h.db.SearchMoviesByTitle(r.Context(), req.Query, MaxSearchResults)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to search movies", err)
			return
		}
		result = models.SearchResult{SimilarMovies: partial}
	default:
		result = models.SearchResult{SimilarMovies: exact}
	}
	if !result.ExactMatch && result.SimilarMovies == nil {
		result.SimilarMovies = []models.Movie{}
	}

	respondSuccess(w, result, start, false)
}
