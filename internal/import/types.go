// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package movieimport

import (
	"fmt"
	"time"
)

// Stage is a pipeline checkpoint. Stages only move forward.
type Stage string

const (
	StageSchemaReady          Stage = "schema_ready"
	StageCatalogLoaded        Stage = "catalog_loaded"
	StageCatalogPersisted     Stage = "catalog_persisted"
	StageReconciled           Stage = "reconciled"
	StageFeaturesBuilt        Stage = "features_built"
	StageReduced              Stage = "reduced"
	StageSimilaritiesComputed Stage = "similarities_computed"
)

// Status is the state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// RowOutcome classifies the persistence of one catalog row.
type RowOutcome int

const (
	RowOK RowOutcome = iota
	RowSkipped
	RowFailed
)

func (o RowOutcome) String() string {
	switch o {
	case RowOK:
		return "ok"
	case RowSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// RowResult is the result of persisting one catalog row: Ok with the new
// internal id, Skipped with a reason, or Failed with the error.
type RowResult struct {
	Outcome RowOutcome
	MovieID int64
	Reason  string
	Err     error
}

// RunStats describes the current or last pipeline run.
type RunStats struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Stage      Stage     `json:"stage"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time,omitempty"`
	Error      string    `json:"error,omitempty"`
	SkipReason string    `json:"skip_reason,omitempty"`

	// Catalog and persistence
	CatalogRows  int `json:"catalog_rows"`
	Imported     int `json:"imported"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	StoredMovies int `json:"stored_movies"`

	// Reconciliation and features
	WorkingSet     int    `json:"working_set"`
	Strategy       string `json:"reconcile_strategy,omitempty"`
	FeatureColumns int    `json:"feature_columns"`

	// Reduction
	Components        int     `json:"components"`
	ExplainedVariance float64 `json:"explained_variance"`

	// Similarity
	TotalBatches  int     `json:"total_batches"`
	BatchesDone   int     `json:"batches_done"`
	FailedBatches int     `json:"failed_batches"`
	EdgesWritten  int     `json:"edges_written"`
	Progress      float64 `json:"progress"`
	RemainingSecs float64 `json:"estimated_remaining_seconds"`
}

// Duration returns the run duration, up to now while running.
func (s *RunStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns the final report printed at the end of a run.
func (s *RunStats) Summary() string {
	summary := fmt.Sprintf(
		"status=%s stage=%s rows_imported=%d rows_skipped=%d rows_failed=%d stored=%d working_set=%d edges=%d failed_batches=%d explained_variance=%.2f duration=%s",
		s.Status, s.Stage, s.Imported, s.Skipped, s.Failed, s.StoredMovies, s.WorkingSet,
		s.EdgesWritten, s.FailedBatches, s.ExplainedVariance, s.Duration().Round(time.Millisecond))
	if s.SkipReason != "" {
		summary += " skip_reason=" + s.SkipReason
	}
	if s.Error != "" {
		summary += " error=" + s.Error
	}
	return summary
}
