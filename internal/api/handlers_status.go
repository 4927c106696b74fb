// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Connectivity states reported by /api/status.
const (
	stateConnected    = "connected"
	stateDisconnected = "disconnected"
	stateDisabled     = "disabled"
)

// Status reports database and cache connectivity.
//
// @Summary Service status
// @Tags Status
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.StatusResponse}
// @Router /api/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := models.StatusResponse{
		Status:       "ok",
		Database:     stateConnected,
		Cache:        stateDisabled,
		CacheEnabled: h.cache != nil,
	}

	ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Database ping failed")
		resp.Database = stateDisconnected
	}

	if h.cache != nil {
		resp.Cache = stateConnected
		if err := h.cache.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("backend", h.cache.Backend()).Msg("Cache ping failed")
			resp.Cache = stateDisconnected
		}
	}

	respondSuccess(w, resp, start, false)
}
