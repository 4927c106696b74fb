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

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ClearVisualizationsResponse reports what a cache clear removed.
type ClearVisualizationsResponse struct {
	StoredRemoved int64 `json:"stored_removed"`
	CachedRemoved int   `json:"cached_removed"`
}

// Visualization returns the data of a similarity chart or word cloud. The
// lookup order is cache, then the visualizations table, then generation from
// the top neighbors; a generated payload is stored and cached.
//
// @Summary Movie visualization data
// @Tags Visualizations
// @Produce json
// @Param type path string true "similarity_chart or wordcloud"
// @Param id path int true "Movie ID"
// @Success 200 {object} models.APIResponse{data=models.Visualization}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/visualization/{type}/{id} [get]
func (h *Handler) Visualization(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	kind := chi.URLParam(r, "type")
	if !recommend.ValidVisualization(kind) {
		respondError(w, r, http.StatusBadRequest, CodeInvalidVisualizationType,
			fmt.Sprintf("Visualization type must be %q or %q", models.VisualizationSimilarityChart, models.VisualizationWordCloud), nil)
		return
	}
	movieID, ok := movieIDParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeInvalidMovieID, "Movie ID must be a positive integer", nil)
		return
	}

	key := cache.VisualizationKey(movieID, kind)
	var viz models.Visualization
	hit, err := cache.GetJSON(ctx, h.cache, key, &viz)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if hit && err == nil {
		respondSuccess(w, &viz, start, true)
		return
	}

	stored, err := h.storedVisualization(ctx, movieID, kind)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to load visualization", err)
		return
	}
	if stored != nil {
		h.cacheVisualization(ctx, key, stored)
		respondSuccess(w, stored, start, false)
		return
	}

	source, ok := h.loadMovie(w, r, movieID)
	if !ok {
		return
	}
	similar, _, err := h.neighbors(ctx, movieID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to load recommendations", err)
		return
	}
	if len(similar) == 0 {
		respondError(w, r, http.StatusNotFound, CodeNoRecommendations,
			fmt.Sprintf("No recommendations found for movie %d", movieID), nil)
		return
	}

	generated, err := recommend.BuildVisualization(kind, source, similar, h.now().UTC())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternalError, "Failed to build visualization", err)
		return
	}

	payload, err := json.Marshal(generated)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternalError, "Failed to encode visualization", err)
		return
	}
	if err := h.db.SaveVisualization(ctx, movieID, kind, payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("movie_id", movieID).Str("type", kind).Msg("Failed to store visualization")
	}
	h.cacheVisualization(ctx, key, generated)

	respondSuccess(w, generated, start, false)
}

// storedVisualization returns the persisted visualization, or nil when none
// is stored or the stored payload no longer decodes.
func (h *Handler) storedVisualization(ctx context.Context, movieID int64, kind string) (*models.Visualization, error) {
	payload, err := h.db.GetVisualization(ctx, movieID, kind)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var viz models.Visualization
	if err := json.Unmarshal(payload, &viz); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("movie_id", movieID).Str("type", kind).Msg("Discarding undecodable stored visualization")
		return nil, nil
	}
	return &viz, nil
}

func (h *Handler) cacheVisualization(ctx context.Context, key string, viz *models.Visualization) {
	if err := cache.SetJSON(ctx, h.cache, key, viz, h.cacheTTL()); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// ClearVisualizationCache deletes every stored visualization and every cached one.
//
// @Summary Clear visualization cache
// @Tags Visualizations
// @Produce json
// @Success 200 {object} models.APIResponse{data=ClearVisualizationsResponse}
// @Router /api/clear-visualization-cache [post]
func (h *Handler) ClearVisualizationCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	removed, err := h.db.ClearVisualizations(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Failed to clear visualizations", err)
		return
	}

	resp := ClearVisualizationsResponse{StoredRemoved: removed}
	if h.cache != nil {
		n, err := h.cache.DeletePrefix(r.Context(), cache.VisualizationPrefix)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to clear cached visualizations")
		}
		resp.CachedRemoved = n
	}

	logging.Ctx(r.Context()).Info().
		Int64("stored_removed", resp.StoredRemoved).
		Int("cached_removed", resp.CachedRemoved).
		Msg("Visualization cache cleared")

	respondSuccess(w, resp, start, false)
}
