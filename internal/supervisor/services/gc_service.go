// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// DefaultGCInterval is how often the progress store is garbage collected.
const DefaultGCInterval = 10 * time.Minute

// GarbageCollector reclaims storage. *movieimport.BadgerProgress satisfies it.
type GarbageCollector interface {
	RunGC() error
}

// ProgressGCService runs GC on a fixed interval. GC errors are logged and the
// loop continues; the next tick retries.
type ProgressGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewProgressGCService creates the service. A non-positive interval means DefaultGCInterval.
func NewProgressGCService(gc GarbageCollector, interval time.Duration) *ProgressGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &ProgressGCService{
		gc:       gc,
		interval: interval,
		name:     "progress-gc",
	}
}

// Serve implements suture.Service.
func (s *ProgressGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Progress store GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Progress store GC finished")
		}
	}
}

// String implements fmt.Stringer.
func (s *ProgressGCService) String() string {
	return s.name
}
