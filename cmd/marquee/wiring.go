// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// stores holds everything a command opens and must close.
type stores struct {
	db       *database.DB
	cache    cache.Store
	progress movieimport.ProgressTracker
	// badger is set when the progress store is on disk and needs GC.
	badger *movieimport.BadgerProgress
	closers []func() error
}

// openStores opens the database, the cache (nil when disabled) and the
// progress store. On error everything opened so far is closed.
func openStores(cfg *config.Config) (_ *stores, err error) {
	s := &stores{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.closers = append(s.closers, s.db.Close)

	s.cache, err = cache.New(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if s.cache != nil {
		s.closers = append(s.closers, s.cache.Close)
		logging.Info().Str("backend", s.cache.Backend()).Msg("Cache enabled")
	} else {
		logging.Info().Msg("Cache disabled")
	}

	switch cfg.Import.ProgressStore {
	case "memory":
		s.progress = movieimport.NewInMemoryProgress()
	default:
		progress, bdb, err := movieimport.OpenBadgerProgress(cfg.Import.ProgressPath)
		if err != nil {
			return nil, err
		}
		s.progress = progress
		s.badger = progress
		s.closers = append(s.closers, bdb.Close)
	}

	return s, nil
}

// Close closes the stores in reverse opening order.
func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}
	s.closers = nil
}

// newImporter builds the pipeline orchestrator over the opened stores.
func newImporter(cfg *config.Config, s *stores) *movieimport.Importer {
	return movieimport.NewImporter(s.db, recommend.FromPipelineConfig(&cfg.Pipeline), s.progress)
}
