// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/logging"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// SetHub enables GET /api/ws. Without a hub the endpoint answers 503.
func (h *Handler) SetHub(hub *ws.Hub) {
	h.hub = hub
}

// registerTimeout bounds the wait for the hub to accept a new client.
const registerTimeout = 5 * time.Second

func (h *Handler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin admits browsers from the configured CORS origins.
// Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.cfg == nil {
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// ImportProgressSocket streams import progress over a websocket.
//
// @Summary Import progress stream
// @Description Upgrades to a websocket that receives an import_progress message for every saved run snapshot
// @Tags Import
// @Success 101 {string} string "Switching protocols"
// @Failure 503 {object} models.APIResponse "Progress stream unavailable"
// @Router /ws [get]
func (h *Handler) ImportProgressSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeProgressUnavailable, "Progress stream unavailable", nil)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	select {
	case h.hub.Register <- client:
		client.Start()
	case <-time.After(registerTimeout):
		logging.Ctx(r.Context()).Warn().Msg("WebSocket hub not accepting clients")
		_ = conn.Close()
	}
}
