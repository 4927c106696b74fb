// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"testing"

	"github.com/tomtom215/marquee/internal/models"
)

func catalog(ids ...int64) []models.MovieRecord {
	out := make([]models.MovieRecord, len(ids))
	for i, id := range ids {
		out[i] = models.MovieRecord{ExternalID: id}
	}
	return out
}

func refs(pairs ...int64) []models.StoredRef {
	out := make([]models.StoredRef, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.StoredRef{MovieID: pairs[i], ExternalID: pairs[i+1]})
	}
	return out
}

func TestReconcileDirect(t *testing.T) {
	t.Parallel()

	records := catalog(862, 8844, 15602, 862, 999)
	stored := refs(1, 862, 2, 8844, 3, 15602, 4, 31357)

	rec, err := Reconcile(records, stored, 1)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Strategy != StrategyDirect {
		t.Errorf("strategy = %q, want %q", rec.Strategy, StrategyDirect)
	}

	wantIDs := []int64{1, 2, 3}
	got := rec.MovieIDs()
	if len(got) != len(wantIDs) {
		t.Fatalf("MovieIDs() = %v, want %v", got, wantIDs)
	}
	for i := range wantIDs {
		if got[i] != wantIDs[i] {
			t.Errorf("MovieIDs()[%d] = %d, want %d", i, got[i], wantIDs[i])
		}
	}
	if rs := rec.Records(); rs[0].ExternalID != 862 || rs[2].ExternalID != 15602 {
		t.Errorf("Records() out of catalog order: %v", rs)
	}
}

func TestReconcileMatchesPlaceholderIDDirectly(t *testing.T) {
	t.Parallel()

	var records []models.MovieRecord
	var stored []models.StoredRef
	for i := int64(0); i < 12; i++ {
		records = append(records, models.MovieRecord{ExternalID: i})
		stored = append(stored, models.StoredRef{MovieID: 500 + i, ExternalID: i})
	}

	rec, err := Reconcile(records, stored, DefaultMinWorkingSet)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Strategy != StrategyDirect {
		t.Errorf("strategy = %q, want %q", rec.Strategy, StrategyDirect)
	}
	if len(rec.Movies) != 12 {
		t.Fatalf("working set = %d, want 12", len(rec.Movies))
	}
	if first := rec.Movies[0]; first.Record.ExternalID != 0 || first.MovieID != 500 {
		t.Errorf("first working movie = %+v, want external id 0 mapped to 500", first)
	}
}

func TestReconcileOnlyPlaceholderMatches(t *testing.T) {
	t.Parallel()

	records := catalog(0, 0, 5)
	stored := refs(7, 0, 8, 6)

	rec, err := Reconcile(records, stored, 1)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Strategy != StrategyDirect {
		t.Errorf("strategy = %q, want %q", rec.Strategy, StrategyDirect)
	}
	if got := rec.MovieIDs(); len(got) != 1 || got[0] != 7 {
		t.Errorf("MovieIDs() = %v, want [7]", got)
	}
}

func TestIntersectKeepsCatalogOrder(t *testing.T) {
	t.Parallel()

	byExternal := map[int64]int64{3: 30, 1: 10, 9: 90}
	got := intersect(catalog(1, 2, 3, 1, 4), byExternal)
	if len(got) != 2 || got[0].MovieID != 10 || got[1].MovieID != 30 {
		t.Errorf("intersect() = %+v, want movies [10 30]", got)
	}
}

func TestReconcileEmpty(t *testing.T) {
	t.Parallel()

	rec, err := Reconcile(catalog(1, 2, 3), refs(10, 4, 11, 5), 1)
	if !errors.Is(err, ErrEmptyWorkingSet) {
		t.Fatalf("Reconcile() error = %v, want ErrEmptyWorkingSet", err)
	}
	if rec.Strategy != StrategyIntersection {
		t.Errorf("strategy = %q, want fallback to have run", rec.Strategy)
	}
}

func TestReconcileTooSmall(t *testing.T) {
	t.Parallel()

	_, err := Reconcile(catalog(1, 2, 3), refs(10, 1, 11, 2, 12, 3), DefaultMinWorkingSet)
	if !errors.Is(err, ErrWorkingSetTooSmall) {
		t.Fatalf("Reconcile() error = %v, want ErrWorkingSetTooSmall", err)
	}
}

func TestReconcileIsIntersection(t *testing.T) {
	t.Parallel()

	var records []models.MovieRecord
	var stored []models.StoredRef
	for i := int64(1); i <= 40; i++ {
		records = append(records, models.MovieRecord{ExternalID: i})
		if i%3 != 0 {
			stored = append(stored, models.StoredRef{MovieID: 100 + i, ExternalID: i})
		}
	}
	stored = append(stored, models.StoredRef{MovieID: 999, ExternalID: 4000})

	rec, err := Reconcile(records, stored, DefaultMinWorkingSet)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	for _, m := range rec.Movies {
		if m.Record.ExternalID%3 == 0 || m.MovieID != 100+m.Record.ExternalID {
			t.Errorf("unexpected working movie %+v", m)
		}
	}
	if len(rec.Movies) != 27 {
		t.Errorf("working set = %d, want 27", len(rec.Movies))
	}
}
