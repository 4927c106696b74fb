// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package movieimport

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

func newDuckDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Driver:    database.DriverDuckDB,
		Path:      ":memory:",
		MaxMemory: "1GB",
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func integrationConfig() recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.TargetRank = 32
	cfg.BatchSize = 50
	return cfg
}

func TestPipelineWritesNeighborGraph(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline run in short mode")
	}
	ctx := context.Background()
	db := newDuckDB(t)

	imp := NewImporter(db, integrationConfig(), NewInMemoryProgress())
	stats, err := imp.RunRecords(ctx, syntheticCatalog(500))
	if err != nil {
		t.Fatalf("RunRecords() error = %v", err)
	}
	if stats.Status != StatusCompleted || stats.TotalBatches != 10 || stats.FailedBatches != 0 {
		t.Fatalf("stats = %s", stats.Summary())
	}

	edges, err := db.CountEdges(ctx)
	if err != nil {
		t.Fatalf("CountEdges() error = %v", err)
	}
	if edges != 5000 {
		t.Errorf("CountEdges() = %d, want 5000", edges)
	}

	refs, err := db.ListStoredMovies(ctx)
	if err != nil {
		t.Fatalf("ListStoredMovies() error = %v", err)
	}
	for _, ref := range refs[:20] {
		out, err := db.EdgesFrom(ctx, ref.MovieID)
		if err != nil {
			t.Fatalf("EdgesFrom(%d) error = %v", ref.MovieID, err)
		}
		if len(out) != 10 {
			t.Errorf("movie %d has %d edges, want 10", ref.MovieID, len(out))
		}
		for j, e := range out {
			if e.TargetMovieID == e.SourceMovieID {
				t.Errorf("movie %d has a self edge", e.SourceMovieID)
			}
			if e.Score < 0 || e.Score > 1 {
				t.Errorf("edge %d->%d score %v outside [0,1]", e.SourceMovieID, e.TargetMovieID, e.Score)
			}
			if j > 0 && e.Score > out[j-1].Score {
				t.Errorf("edges of movie %d are not sorted by score", ref.MovieID)
			}
		}
	}
}

func TestPipelineRerunKeepsEdgeCount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline run in short mode")
	}
	ctx := context.Background()
	db := newDuckDB(t)
	records := syntheticCatalog(120)
	cfg := integrationConfig()

	imp := NewImporter(db, cfg, nil)
	if _, err := imp.RunRecords(ctx, records); err != nil {
		t.Fatalf("first RunRecords() error = %v", err)
	}

	refs, err := db.ListStoredMovies(ctx)
	if err != nil {
		t.Fatalf("ListStoredMovies() error = %v", err)
	}
	var changedID int64
	for _, ref := range refs {
		if ref.ExternalID == records[7].ExternalID {
			changedID = ref.MovieID
		}
	}
	if changedID == 0 {
		t.Fatalf("movie with external id %d not stored", records[7].ExternalID)
	}
	before, err := db.EdgesFrom(ctx, changedID)
	if err != nil {
		t.Fatalf("EdgesFrom(%d) error = %v", changedID, err)
	}

	// Change one movie's features and run again over the same catalog.
	changed := records[7].Overview + " submarine submarine submarine"
	records[7].Overview = changed
	budget := 9e8
	records[7].Budget = &budget

	stats, err := imp.RunRecords(ctx, records)
	if err != nil {
		t.Fatalf("second RunRecords() error = %v", err)
	}
	if stats.Imported != 0 || stats.Skipped != len(records) {
		t.Errorf("rerun imported/skipped = %d/%d, want 0/%d", stats.Imported, stats.Skipped, len(records))
	}

	edges, err := db.CountEdges(ctx)
	if err != nil {
		t.Fatalf("CountEdges() error = %v", err)
	}
	if edges != len(records)*cfg.NeighborK {
		t.Errorf("CountEdges() after rerun = %d, want %d", edges, len(records)*cfg.NeighborK)
	}

	after, err := db.EdgesFrom(ctx, changedID)
	if err != nil {
		t.Fatalf("EdgesFrom(%d) error = %v", changedID, err)
	}
	if sameEdges(before, after) {
		t.Errorf("edges of the changed movie %d were not rewritten: %+v", changedID, after)
	}

	for _, ref := range refs {
		out, err := db.EdgesFrom(ctx, ref.MovieID)
		if err != nil {
			t.Fatalf("EdgesFrom(%d) error = %v", ref.MovieID, err)
		}
		if len(out) != cfg.NeighborK {
			t.Errorf("movie %d has %d edges after rerun, want %d", ref.MovieID, len(out), cfg.NeighborK)
		}
	}
}

// sameEdges reports whether a and b hold the same targets with the same scores.
func sameEdges(a, b []models.SimilarityEdge) bool {
	if len(a) != len(b) {
		return false
	}
	scores := make(map[int64]float64, len(a))
	for _, e := range a {
		scores[e.TargetMovieID] = e.Score
	}
	for _, e := range b {
		score, ok := scores[e.TargetMovieID]
		if !ok || math.Abs(score-e.Score) > 1e-9 {
			return false
		}
	}
	return true
}
