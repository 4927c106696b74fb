// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"

	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/logging"
)

// Importer is the pipeline lifecycle the import service drives.
// *movieimport.Importer satisfies it.
type Importer interface {
	Run(ctx context.Context, path string) (*movieimport.RunStats, error)
	IsRunning() bool
	Stop() error
}

// ImportService owns the importer for the lifetime of the process.
//
// With a startup path it runs the pipeline once when first started. The
// outcome is logged, not returned, so a failed import is not retried by the
// supervisor in a loop. Either way it then waits for shutdown and cancels
// any import still running, including ones started over the API.
type ImportService struct {
	importer    Importer
	startupPath string
	onComplete  func(ctx context.Context)
	ran         bool
	name        string
}

// NewImportService wraps importer. An empty startupPath disables the startup run.
func NewImportService(importer Importer, startupPath string) *ImportService {
	return &ImportService{
		importer:    importer,
		startupPath: startupPath,
		name:        "catalog-import",
	}
}

// OnComplete registers fn to run after a startup import completes.
func (s *ImportService) OnComplete(fn func(ctx context.Context)) *ImportService {
	s.onComplete = fn
	return s
}

// Serve implements suture.Service.
func (s *ImportService) Serve(ctx context.Context) error {
	if s.startupPath != "" && !s.ran {
		s.ran = true
		s.runStartupImport(ctx)
	} else {
		logging.Info().Msg("Import service started (on-demand mode, use the API to trigger)")
	}

	<-ctx.Done()

	if s.importer.IsRunning() {
		logging.Info().Msg("Stopping running import due to shutdown")
		if err := s.importer.Stop(); err != nil && !errors.Is(err, movieimport.ErrNoImportRunning) {
			logging.Warn().Err(err).Msg("Failed to stop import")
		}
	}
	return ctx.Err()
}

func (s *ImportService) runStartupImport(ctx context.Context) {
	logging.Info().Str("path", s.startupPath).Msg("Starting startup catalog import")

	stats, err := s.importer.Run(ctx, s.startupPath)
	switch {
	case ctx.Err() != nil:
		logging.Info().Msg("Startup import canceled due to shutdown")
	case errors.Is(err, movieimport.ErrImportInProgress):
		logging.Warn().Msg("Startup import skipped, another import is running")
	case err != nil && !movieimport.IsSkipped(err):
		logging.Error().Err(err).Msg("Startup import failed")
	case stats != nil:
		logging.Info().Str("status", string(stats.Status)).Msg("Startup import finished")
		if stats.Status == movieimport.StatusCompleted && s.onComplete != nil {
			s.onComplete(ctx)
		}
	}
}

// String implements fmt.Stringer.
func (s *ImportService) String() string {
	return s.name
}
