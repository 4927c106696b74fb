// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package similarity

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Defaults.
const (
	DefaultBatchSize = 100
	DefaultK         = 10
)

// EdgeWriter persists one batch of edges atomically.
type EdgeWriter interface {
	UpsertSimilarityEdges(ctx context.Context, edges []models.SimilarityEdge) error
}

// Progress is reported after every batch.
type Progress struct {
	BatchStart int // first row of the batch, inclusive
	BatchEnd   int // last row of the batch, exclusive
	Total      int
	Percent    float64
	Elapsed    time.Duration
	Remaining  time.Duration
	Failed     bool
}

// Options configures Compute.
type Options struct {
	BatchSize int
	K         int

	// Limiter, when set, is waited on before each batch write.
	Limiter *rate.Limiter

	// OnProgress, when set, is called after each batch.
	OnProgress func(Progress)
}

// BatchFailure records a batch whose write was rolled back.
type BatchFailure struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Err   error `json:"-"`
}

// Result summarizes a Compute run.
type Result struct {
	Batches       int            `json:"batches"`
	EdgesWritten  int            `json:"edges_written"`
	FailedBatches []BatchFailure `json:"failed_batches,omitempty"`
}

// Compute scores every row of embedding against every other row and writes
// the K best neighbors of each row. ids[i] is the movie id of row i.
//
// Rows are processed in batches of BatchSize; each batch is one write. A
// failed write is logged and recorded and the next batch still runs. Only
// context cancellation stops the run early.
func Compute(ctx context.Context, embedding *mat.Dense, ids []int64, w EdgeWriter, opts Options) (*Result, error) {
	rows, _ := embedding.Dims()
	if rows != len(ids) {
		return nil, fmt.Errorf("embedding has %d rows but %d ids were given", rows, len(ids))
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.K <= 0 {
		opts.K = DefaultK
	}

	normalized := normalizeRows(embedding)
	res := &Result{}
	start := time.Now()

	for lo := 0; lo < rows; lo += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		hi := min(lo+opts.BatchSize, rows)

		edges := batchEdges(normalized, ids, lo, hi, opts.K)

		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return res, err
			}
		}

		res.Batches++
		failed := false
		if err := w.UpsertSimilarityEdges(ctx, edges); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			failed = true
			res.FailedBatches = append(res.FailedBatches, BatchFailure{Start: lo, End: hi, Err: err})
			logging.Ctx(ctx).Error().
				Err(err).
				Int("batch_start", lo).
				Int("batch_end", hi).
				Msg("Failed to write similarity batch, continuing")
		} else {
			res.EdgesWritten += len(edges)
		}

		p := progressAt(lo, hi, rows, time.Since(start))
		p.Failed = failed
		logging.Ctx(ctx).Info().
			Float64("progress_percent", p.Percent).
			Int("processed", hi).
			Int("total", rows).
			Dur("elapsed", p.Elapsed).
			Dur("remaining", p.Remaining).
			Msg("Similarity progress")
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	return res, nil
}

// progressAt estimates the remaining time as elapsed/fraction - elapsed.
func progressAt(lo, hi, total int, elapsed time.Duration) Progress {
	fraction := float64(hi) / float64(total)
	p := Progress{
		BatchStart: lo,
		BatchEnd:   hi,
		Total:      total,
		Percent:    math.Min(100, fraction*100),
		Elapsed:    elapsed,
	}
	if fraction > 0 {
		p.Remaining = time.Duration(float64(elapsed)/fraction) - elapsed
	}
	return p
}

// batchEdges scores rows [lo, hi) against all rows and returns the top-k
// edges of each, source order preserved.
func batchEdges(normalized *mat.Dense, ids []int64, lo, hi, k int) []models.SimilarityEdge {
	_, cols := normalized.Dims()
	batch := normalized.Slice(lo, hi, 0, cols)

	var scores mat.Dense
	scores.Mul(batch, normalized.T())

	edges := make([]models.SimilarityEdge, 0, (hi-lo)*k)
	for r := 0; r < hi-lo; r++ {
		self := lo + r
		for _, n := range TopK(scores.RawRowView(r), self, k) {
			edges = append(edges, models.SimilarityEdge{
				SourceMovieID: ids[self],
				TargetMovieID: ids[n.Index],
				Score:         n.Score,
			})
		}
	}
	return edges
}

// normalizeRows returns a copy of m with unit-length rows. Zero rows stay zero.
func normalizeRows(m *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(m)
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		var sum float64
		for _, v := range row {
			sum += v * v
		}
		if sum == 0 {
			continue
		}
		inv := 1 / math.Sqrt(sum)
		for j := range row {
			row[j] *= inv
		}
	}
	return out
}
