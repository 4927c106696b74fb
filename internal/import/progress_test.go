// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package movieimport

import (
	"context"
	"testing"
	"time"
)

func TestProgressTrackers(t *testing.T) {
	badgerProgress, db, err := OpenBadgerProgress("")
	if err != nil {
		t.Fatalf("OpenBadgerProgress() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	trackers := map[string]ProgressTracker{
		"badger": badgerProgress,
		"memory": NewInMemoryProgress(),
	}

	for name, tracker := range trackers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := tracker.Load(ctx)
			if err != nil || got != nil {
				t.Fatalf("Load() on empty tracker = %v, %v; want nil, nil", got, err)
			}

			want := &RunStats{
				RunID:        "run-1",
				Status:       StatusRunning,
				Stage:        StageReduced,
				StartTime:    time.Now().UTC().Truncate(time.Second),
				Imported:     500,
				EdgesWritten: 1200,
				Progress:     24,
			}
			if err := tracker.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err = tracker.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.RunID != want.RunID || got.Stage != want.Stage || got.EdgesWritten != want.EdgesWritten ||
				got.Progress != want.Progress || !got.StartTime.Equal(want.StartTime) {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}

			// Saved stats are copies.
			want.Imported = 1
			if got, _ = tracker.Load(ctx); got.Imported != 500 {
				t.Errorf("stored stats changed with the caller's copy: imported = %d", got.Imported)
			}

			if err := tracker.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if got, _ = tracker.Load(ctx); got != nil {
				t.Errorf("Load() after Clear() = %+v, want nil", got)
			}
			if err := tracker.Clear(ctx); err != nil {
				t.Errorf("second Clear() error = %v", err)
			}
		})
	}
}

func TestBadgerProgressRunGC(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		progress, db, err := OpenBadgerProgress("")
		if err != nil {
			t.Fatalf("OpenBadgerProgress() error = %v", err)
		}
		defer db.Close()

		if err := progress.RunGC(); err != nil {
			t.Errorf("RunGC() on in-memory store = %v, want nil", err)
		}
	})

	t.Run("on disk", func(t *testing.T) {
		progress, db, err := OpenBadgerProgress(t.TempDir())
		if err != nil {
			t.Fatalf("OpenBadgerProgress() error = %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		for i := 0; i < 20; i++ {
			if err := progress.Save(ctx, &RunStats{RunID: "run", Imported: i}); err != nil {
				t.Fatal(err)
			}
		}
		if err := progress.RunGC(); err != nil {
			t.Errorf("RunGC() = %v, want nil", err)
		}
		if got, _ := progress.Load(ctx); got == nil || got.Imported != 19 {
			t.Errorf("Load() after GC = %+v, want last save", got)
		}
	})
}
