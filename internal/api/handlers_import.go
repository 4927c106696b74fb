// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/cache"
	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// ImportStartedResponse is returned when a background import is accepted.
type ImportStartedResponse struct {
	Status      string `json:"status"`
	CatalogPath string `json:"catalog_path"`
}

// ImportStatusResponse reports the current or last run.
type ImportStatusResponse struct {
	Running bool                  `json:"running"`
	Stats   *movieimport.RunStats `json:"stats"`
}

// StartImport runs the pipeline over the configured catalog in the background.
//
// @Summary Start import
// @Tags Import
// @Produce json
// @Success 202 {object} models.APIResponse{data=ImportStartedResponse}
// @Failure 409 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /api/import [post]
func (h *Handler) StartImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeImportUnavailable, "Import is not available", nil)
		return
	}
	path := ""
	if h.cfg != nil {
		path = h.cfg.Import.CatalogPath
	}
	if path == "" {
		respondError(w, r, http.StatusServiceUnavailable, CodeImportUnavailable, "No catalog path configured", nil)
		return
	}
	if h.importer.IsRunning() {
		respondError(w, r, http.StatusConflict, CodeImportInProgress, "An import is already in progress", nil)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	h.imports.Add(1)
	go func() {
		defer h.imports.Done()
		h.runImport(ctx, path)
	}()

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status:   "success",
		Data:     ImportStartedResponse{Status: "started", CatalogPath: path},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// runImport runs one import and invalidates derived data when it completes.
func (h *Handler) runImport(ctx context.Context, path string) {
	stats, err := h.importer.Run(ctx, path)
	if errors.Is(err, movieimport.ErrImportInProgress) {
		logging.Ctx(ctx).Warn().Msg("Import request lost the race to a concurrent run")
		return
	}
	if err != nil && !movieimport.IsSkipped(err) {
		logging.Ctx(ctx).Error().Err(err).Msg("Background import failed")
	}
	if stats != nil && stats.Status == movieimport.StatusCompleted {
		InvalidateDerived(ctx, h.db, h.cache)
	}
}

// VisualizationClearer deletes every stored visualization.
type VisualizationClearer interface {
	ClearVisualizations(ctx context.Context) (int64, error)
}

// InvalidateDerived drops everything computed from the previous similarity
// graph: stored visualizations and both cached key families. Failures are
// logged; a nil store skips the cache.
func InvalidateDerived(ctx context.Context, db VisualizationClearer, store cache.Store) {
	if _, err := db.ClearVisualizations(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear stored visualizations after import")
	}
	if store == nil {
		return
	}
	for _, prefix := range []string{cache.RecommendationsPrefix, cache.VisualizationPrefix} {
		n, err := store.DeletePrefix(ctx, prefix)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("prefix", prefix).Msg("Failed to invalidate cache after import")
			continue
		}
		logging.Ctx(ctx).Debug().Str("prefix", prefix).Int("removed", n).Msg("Cache invalidated after import")
	}
}

// ImportStatus reports progress of the running import or the last run summary.
//
// @Summary Import status
// @Tags Import
// @Produce json
// @Success 200 {object} models.APIResponse{data=ImportStatusResponse}
// @Router /api/import/status [get]
func (h *Handler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.importer == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeImportUnavailable, "Import is not available", nil)
		return
	}
	respondSuccess(w, ImportStatusResponse{
		Running: h.importer.IsRunning(),
		Stats:   h.importer.GetStats(),
	}, start, false)
}

// StopImport cancels the running import.
//
// @Summary Stop import
// @Tags Import
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /api/import [delete]
func (h *Handler) StopImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.importer == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeImportUnavailable, "Import is not available", nil)
		return
	}
	if err := h.importer.Stop(); err != nil {
		if errors.Is(err, movieimport.ErrNoImportRunning) {
			respondError(w, r, http.StatusConflict, CodeNoImportRunning, "No import is running", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, CodeInternalError, "Failed to stop import", err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Import cancellation requested")
	respondSuccess(w, map[string]string{"status": "stopping"}, start, false)
}
