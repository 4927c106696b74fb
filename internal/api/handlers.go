// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/models"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// MovieStore is the read side of the database used by the handlers.
// *database.DB satisfies it.
type MovieStore interface {
	Ping(ctx context.Context) error
	GetMovie(ctx context.Context, movieID int64) (*models.Movie, error)
	FindMoviesByTitle(ctx context.Context, title string) ([]models.Movie, error)
	SearchMoviesByTitle(ctx context.Context, fragment string, limit int) ([]models.Movie, error)
	GetTopSimilar(ctx context.Context, movieID int64, limit int) ([]models.SimilarMovie, error)
	GetVisualization(ctx context.Context, movieID int64, kind string) ([]byte, error)
	SaveVisualization(ctx context.Context, movieID int64, kind string, payload []byte) error
	ClearVisualizations(ctx context.Context) (int64, error)
}

// ImportController starts, stops and reports pipeline runs.
// *movieimport.Importer satisfies it.
type ImportController interface {
	Run(ctx context.Context, path string) (*movieimport.RunStats, error)
	Stop() error
	GetStats() *movieimport.RunStats
	IsRunning() bool
}

// statusTimeout bounds each connectivity probe of /api/status.
const statusTimeout = 2 * time.Second

// Handler serves the HTTP API.
type Handler struct {
	db       MovieStore
	cache    cache.Store
	importer ImportController
	cfg      *config.Config
	now      func() time.Time
	hub      *ws.Hub

	// imports tracks background runs started through POST /api/import.
	imports sync.WaitGroup
}

// NewHandler creates a Handler. cacheStore and importer may be nil.
func NewHandler(db MovieStore, cacheStore cache.Store, importer ImportController, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		cache:    cacheStore,
		importer: importer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (h *Handler) cacheTTL() time.Duration {
	if h.cfg != nil && h.cfg.Cache.DefaultTTL > 0 {
		return h.cfg.Cache.DefaultTTL
	}
	return cache.DefaultTTL
}

// Wait blocks until every background import started by the handler has returned.
func (h *Handler) Wait() {
	h.imports.Wait()
}
