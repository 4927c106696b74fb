// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Recommendations returns the nearest neighbors of a movie with evaluation
// metrics computed over the returned list.
//
// @Summary Movie recommendations
// @Tags Movies
// @Produce json
// @Param id path int true "Movie ID"
// @Param limit query int false "Number of recommendations (1-50)" default(5)
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/recommendations/{id} [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	movieID, ok := movieIDParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeInvalidMovieID, "Movie ID must be a positive integer", nil)
		return
	}
	limit := clamp(getIntParam(r, "limit", DefaultRecommendationLimit), 1, MaxRecommendationLimit)

	source, ok := h.loadMovie(w, r, movieID)
	if !ok {
		return
	}

	similar, cached, err := h.neighbors(r.Context(), movieID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to load recommendations", err)
		return
	}
	if len(similar) == 0 {
		respondError(w, r, http.StatusNotFound, CodeNoRecommendations,
			fmt.Sprintf("No recommendations found for movie %d", movieID), nil)
		return
	}
	if len(similar) > limit {
		similar = similar[:limit]
	}

	respondSuccess(w, models.RecommendationResponse{
		MovieID:         movieID,
		SourceMovie:     *source,
		Recommendations: similar,
		Metrics:         recommend.Evaluate(source, similar),
	}, start, cached)
}

// loadMovie fetches a movie, answering 404 or 500 itself when it cannot.
func (h *Handler) loadMovie(w http.ResponseWriter, r *http.Request, movieID int64) (*models.Movie, bool) {
	movie, err := h.db.GetMovie(r.Context(), movieID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, CodeMovieNotFound,
			fmt.Sprintf("Movie with ID %d not found", movieID), nil)
		return nil, false
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to load movie", err)
		return nil, false
	}
	return movie, true
}

// neighbors returns up to MaxRecommendationLimit neighbors of movieID, best
// first, reading through the cache. Only non-empty lists are cached. Cache
// failures are logged and fall back to the database.
func (h *Handler) neighbors(ctx context.Context, movieID int64) ([]models.SimilarMovie, bool, error) {
	key := cache.RecommendationsKey(movieID)

	var similar []models.SimilarMovie
	hit, err := cache.GetJSON(ctx, h.cache, key, &similar)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if hit && err == nil {
		return similar, true, nil
	}

	similar, err = h.db.GetTopSimilar(ctx, movieID, MaxRecommendationLimit)
	if err != nil {
		return nil, false, err
	}
	if len(similar) > 0 {
		if err := cache.SetJSON(ctx, h.cache, key, similar, h.cacheTTL()); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return similar, false, nil
}
