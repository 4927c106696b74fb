// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router builds the chi router for a Handler.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
}

// NewRouter creates a router. A nil security config uses the defaults.
func NewRouter(handler *Handler, sec *config.SecurityConfig) *Router {
	return &Router{
		handler: handler,
		chiMW:   NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)),
	}
}

// Setup returns the HTTP handler with every route and middleware installed.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMW.CORS())
	r.Use(router.chiMW.RateLimit())
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, CodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Get("/search", h.Search)
		r.Post("/search", h.Search)

		r.Get("/recommendations/{id}", h.Recommendations)
		r.Get("/visualization/{type}/{id}", h.Visualization)
		r.Post("/clear-visualization-cache", h.ClearVisualizationCache)

		r.Post("/import", h.StartImport)
		r.Delete("/import", h.StopImport)
		r.Get("/import/status", h.ImportStatus)

		r.Get("/ws", h.ImportProgressSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
