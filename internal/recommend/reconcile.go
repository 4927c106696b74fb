// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Reconciliation strategies.
const (
	StrategyDirect       = "direct"
	StrategyIntersection = "intersection"
)

// sampleSize is how many ids of each side are logged on a mismatch.
const sampleSize = 5

var (
	// ErrEmptyWorkingSet means no catalog record matched a stored movie.
	ErrEmptyWorkingSet = errors.New("no catalog records match stored movies")

	// ErrWorkingSetTooSmall means too few records matched to score similarity.
	ErrWorkingSetTooSmall = errors.New("working set below minimum size")
)

// WorkingMovie is a catalog record paired with its internal movie id.
type WorkingMovie struct {
	MovieID int64
	Record  models.MovieRecord
}

// Reconciliation is the working set and how it was found.
type Reconciliation struct {
	Movies   []WorkingMovie
	Strategy string
}

// Records returns the working-set records in order.
func (r *Reconciliation) Records() []models.MovieRecord {
	out := make([]models.MovieRecord, len(r.Movies))
	for i := range r.Movies {
		out[i] = r.Movies[i].Record
	}
	return out
}

// MovieIDs returns the internal ids in working-set order.
func (r *Reconciliation) MovieIDs() []int64 {
	out := make([]int64, len(r.Movies))
	for i := range r.Movies {
		out[i] = r.Movies[i].MovieID
	}
	return out
}

// Reconcile keeps the records whose external id is stored, in catalog order,
// keeping only the first record for a repeated id.
//
// The direct strategy matches external ids by integer equality, including the
// 0 placeholder that unparseable ids were persisted under. Only when that
// matches nothing does the intersection strategy run: it intersects the two id
// sets and logs samples from both sides so the mismatch can be diagnosed.
//
// An empty result returns ErrEmptyWorkingSet; fewer than minWorkingSet
// movies returns ErrWorkingSetTooSmall along with the reconciliation.
func Reconcile(records []models.MovieRecord, stored []models.StoredRef, minWorkingSet int) (*Reconciliation, error) {
	byExternal := make(map[int64]int64, len(stored))
	for _, ref := range stored {
		if _, dup := byExternal[ref.ExternalID]; !dup {
			byExternal[ref.ExternalID] = ref.MovieID
		}
	}

	rec := &Reconciliation{Strategy: StrategyDirect, Movies: matchDirect(records, byExternal)}

	if len(rec.Movies) == 0 {
		logging.Warn().
			Ints64("stored_sample", storedSample(stored)).
			Ints64("catalog_sample", catalogSample(records)).
			Int("stored", len(stored)).
			Int("catalog", len(records)).
			Msg("No catalog ids matched directly, falling back to id set intersection")

		rec.Strategy = StrategyIntersection
		rec.Movies = intersect(records, byExternal)

		logging.Info().
			Int("common_ids", len(rec.Movies)).
			Msg("Id set intersection computed")
	}

	if len(rec.Movies) == 0 {
		return rec, ErrEmptyWorkingSet
	}
	if len(rec.Movies) < minWorkingSet {
		return rec, fmt.Errorf("%w: %d movies, need %d", ErrWorkingSetTooSmall, len(rec.Movies), minWorkingSet)
	}

	logging.Info().
		Int("working_set", len(rec.Movies)).
		Str("strategy", rec.Strategy).
		Msg("Catalog reconciled with stored movies")
	return rec, nil
}

// matchDirect looks up each record's external id in byExternal.
func matchDirect(records []models.MovieRecord, byExternal map[int64]int64) []WorkingMovie {
	seen := make(map[int64]struct{})
	var out []WorkingMovie
	for i := range records {
		id := records[i].ExternalID
		movieID, ok := byExternal[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, WorkingMovie{MovieID: movieID, Record: records[i]})
	}
	return out
}

// intersect builds the catalog id set first, intersects it with the stored
// ids, then walks the catalog to keep its order.
func intersect(records []models.MovieRecord, byExternal map[int64]int64) []WorkingMovie {
	catalogIDs := make(map[int64]struct{}, len(records))
	for i := range records {
		catalogIDs[records[i].ExternalID] = struct{}{}
	}
	common := make(map[int64]int64)
	for id := range catalogIDs {
		if movieID, ok := byExternal[id]; ok {
			common[id] = movieID
		}
	}

	out := make([]WorkingMovie, 0, len(common))
	for i := range records {
		id := records[i].ExternalID
		movieID, ok := common[id]
		if !ok {
			continue
		}
		delete(common, id)
		out = append(out, WorkingMovie{MovieID: movieID, Record: records[i]})
	}
	return out
}

func storedSample(stored []models.StoredRef) []int64 {
	out := make([]int64, 0, sampleSize)
	for i := 0; i < len(stored) && i < sampleSize; i++ {
		out = append(out, stored[i].ExternalID)
	}
	return out
}

func catalogSample(records []models.MovieRecord) []int64 {
	out := make([]int64, 0, sampleSize)
	for i := 0; i < len(records) && i < sampleSize; i++ {
		out = append(out, records[i].ExternalID)
	}
	return out
}
