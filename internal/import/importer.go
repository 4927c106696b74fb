// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package movieimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/features"
	"github.com/tomtom215/marquee/internal/recommend/reduce"
	"github.com/tomtom215/marquee/internal/recommend/similarity"
)

// verboseFailureLimit is how many row failures are logged in full.
const verboseFailureLimit = 5

var (
	// ErrImportInProgress is returned when a run is already active.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrNoImportRunning is returned by Stop when nothing is running.
	ErrNoImportRunning = errors.New("no import in progress")

	// ErrNothingPersisted means no catalog row was stored or already present.
	ErrNothingPersisted = errors.New("no movies were persisted")
)

// skipError marks a run that ended early with status skipped.
type skipError struct{ err error }

func (e *skipError) Error() string { return "skipped: " + e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

// IsSkipped reports whether err ended a run with status skipped.
func IsSkipped(err error) bool {
	var s *skipError
	return errors.As(err, &s)
}

// Store is the persistence the pipeline reads from and writes to.
type Store interface {
	InsertMovie(ctx context.Context, rec *models.MovieRecord) (movieID int64, inserted bool, err error)
	ListStoredMovies(ctx context.Context) ([]models.StoredRef, error)
	CountMovies(ctx context.Context) (int, error)
	UpsertSimilarityEdges(ctx context.Context, edges []models.SimilarityEdge) error
}

// Importer runs the pipeline. At most one run is active at a time.
type Importer struct {
	store    Store
	cfg      recommend.Config
	progress ProgressTracker

	mu      sync.RWMutex
	running bool
	stats   *RunStats
	cancel  context.CancelFunc
}

// NewImporter creates an importer. progress may be nil.
func NewImporter(store Store, cfg recommend.Config, progress ProgressTracker) *Importer {
	return &Importer{
		store:    store,
		cfg:      cfg,
		progress: progress,
	}
}

// Run loads the catalog at path and runs every stage.
func (i *Importer) Run(ctx context.Context, path string) (*RunStats, error) {
	return i.run(ctx, func(ctx context.Context) ([]models.MovieRecord, error) {
		records, _, err := catalog.LoadFile(ctx, path)
		return records, err
	})
}

// RunRecords runs every stage over already loaded records.
func (i *Importer) RunRecords(ctx context.Context, records []models.MovieRecord) (*RunStats, error) {
	return i.run(ctx, func(context.Context) ([]models.MovieRecord, error) {
		return records, nil
	})
}

type loadFunc func(ctx context.Context) ([]models.MovieRecord, error)

func (i *Importer) run(parent context.Context, load loadFunc) (*RunStats, error) {
	if err := i.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, ErrImportInProgress
	}
	i.running = true
	i.cancel = cancel
	i.stats = &RunStats{
		RunID:     uuid.New().String(),
		Status:    StatusRunning,
		Stage:     StageSchemaReady,
		StartTime: time.Now(),
	}
	runID := i.stats.RunID
	i.mu.Unlock()

	ctx = logging.ContextWithCorrelationID(ctx, runID)
	ctx = logging.ContextWithComponent(ctx, "import")
	logging.Ctx(ctx).Info().Msg("Import started")

	err := i.execute(ctx, load)

	i.mu.Lock()
	i.running = false
	i.cancel = nil
	i.stats.EndTime = time.Now()
	switch {
	case err == nil:
		i.stats.Status = StatusCompleted
	case IsSkipped(err):
		i.stats.Status = StatusSkipped
		i.stats.SkipReason = errors.Unwrap(err).Error()
	case errors.Is(err, context.Canceled):
		i.stats.Status = StatusCancelled
		i.stats.Error = err.Error()
	default:
		i.stats.Status = StatusFailed
		i.stats.Error = err.Error()
	}
	stats := *i.stats
	i.mu.Unlock()

	metrics.RecordPipelineRun(string(stats.Status))
	i.saveProgress(context.WithoutCancel(ctx), &stats)

	logging.Ctx(ctx).Info().Msg("Import finished: " + stats.Summary())
	return &stats, err
}

// execute walks the stages in order. Returned errors wrapped in skipError
// end the run as skipped.
func (i *Importer) execute(ctx context.Context, load loadFunc) error {
	// CatalogLoaded
	start := time.Now()
	records, err := load(logging.ContextWithComponent(ctx, "catalog"))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	i.advance(ctx, StageCatalogLoaded, start, func(s *RunStats) { s.CatalogRows = len(records) })

	// CatalogPersisted
	start = time.Now()
	inserted, skipped, failed, err := i.persist(ctx, records)
	if err != nil {
		return err
	}
	stored, err := i.store.CountMovies(ctx)
	if err != nil {
		return fmt.Errorf("count stored movies: %w", err)
	}
	metrics.RecordRows(inserted, skipped, failed)
	i.advance(ctx, StageCatalogPersisted, start, func(s *RunStats) { s.StoredMovies = stored })
	if inserted+skipped == 0 {
		return &skipError{ErrNothingPersisted}
	}

	// Reconciled
	start = time.Now()
	refs, err := i.store.ListStoredMovies(ctx)
	if err != nil {
		return fmt.Errorf("list stored movies: %w", err)
	}
	rec, err := recommend.Reconcile(records, refs, i.cfg.MinWorkingSet)
	if errors.Is(err, recommend.ErrEmptyWorkingSet) {
		return &skipError{err}
	}
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	i.advance(ctx, StageReconciled, start, func(s *RunStats) {
		s.WorkingSet = len(rec.Movies)
		s.Strategy = rec.Strategy
	})

	// FeaturesBuilt
	start = time.Now()
	matrix, err := features.Build(rec.Records(), i.cfg.FeatureOptions())
	if errors.Is(err, features.ErrNoText) {
		return &skipError{err}
	}
	if err != nil {
		return fmt.Errorf("build features: %w", err)
	}
	_, cols := matrix.Dims()
	recordFeatureColumns(matrix)
	i.advance(ctx, StageFeaturesBuilt, start, func(s *RunStats) { s.FeatureColumns = cols })

	// Reduced
	start = time.Now()
	reduced, err := reduce.TruncatedSVD(matrix, i.cfg.ReduceOptions())
	if err != nil {
		return fmt.Errorf("reduce features: %w", err)
	}
	metrics.PipelineExplainedVariance.Set(reduced.ExplainedVarianceRatio)
	logging.Ctx(ctx).Info().
		Int("components", reduced.Components).
		Float64("explained_variance_ratio", reduced.ExplainedVarianceRatio).
		Msg("Dimensionality reduction complete")
	i.advance(ctx, StageReduced, start, func(s *RunStats) {
		s.Components = reduced.Components
		s.ExplainedVariance = reduced.ExplainedVarianceRatio
	})

	// SimilaritiesComputed
	start = time.Now()
	ids := rec.MovieIDs()
	i.update(func(s *RunStats) {
		s.TotalBatches = (len(ids) + i.cfg.BatchSize - 1) / i.cfg.BatchSize
	})

	opts := similarity.Options{
		BatchSize:  i.cfg.BatchSize,
		K:          i.cfg.NeighborK,
		OnProgress: i.onBatch(ctx),
	}
	if i.cfg.WriteRate > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(i.cfg.WriteRate), 1)
	}

	res, err := similarity.Compute(logging.ContextWithComponent(ctx, "similarity"), reduced.Embedding, ids, i.store, opts)
	if res != nil {
		metrics.PipelineEdgesWritten.Add(float64(res.EdgesWritten))
		metrics.PipelineBatchesFailed.Add(float64(len(res.FailedBatches)))
		i.update(func(s *RunStats) {
			s.EdgesWritten = res.EdgesWritten
			s.FailedBatches = len(res.FailedBatches)
		})
	}
	if err != nil {
		return fmt.Errorf("compute similarities: %w", err)
	}
	i.advance(ctx, StageSimilaritiesComputed, start, nil)
	return nil
}

// persist stores every record and counts the outcomes.
func (i *Importer) persist(ctx context.Context, records []models.MovieRecord) (inserted, skipped, failed int, err error) {
	for n := range records {
		if n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return inserted, skipped, failed, err
			}
			logging.Ctx(ctx).Info().Int("row", n+1).Int("total", len(records)).Msg("Persisting catalog")
		}

		res := i.persistRow(ctx, &records[n])
		switch res.Outcome {
		case RowOK:
			inserted++
		case RowSkipped:
			skipped++
		case RowFailed:
			failed++
			switch {
			case failed <= verboseFailureLimit:
				logging.Ctx(ctx).Error().
					Err(res.Err).
					Int("row", n+1).
					Int64("tmdb_id", records[n].ExternalID).
					Str("title", records[n].Title).
					Msg("Failed to import movie")
			case failed == verboseFailureLimit+1:
				logging.Ctx(ctx).Error().Msg("Too many import errors, suppressing further error messages")
			}
		}
	}

	i.update(func(s *RunStats) {
		s.Imported = inserted
		s.Skipped = skipped
		s.Failed = failed
	})
	logging.Ctx(ctx).Info().
		Int("imported", inserted).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Catalog persisted")
	return inserted, skipped, failed, nil
}

func (i *Importer) persistRow(ctx context.Context, rec *models.MovieRecord) RowResult {
	id, inserted, err := i.store.InsertMovie(ctx, rec)
	switch {
	case err != nil:
		return RowResult{Outcome: RowFailed, Err: err}
	case !inserted:
		return RowResult{Outcome: RowSkipped, Reason: "duplicate external id"}
	default:
		return RowResult{Outcome: RowOK, MovieID: id}
	}
}

// onBatch returns the progress callback for the similarity stage.
func (i *Importer) onBatch(ctx context.Context) func(similarity.Progress) {
	return func(p similarity.Progress) {
		i.update(func(s *RunStats) {
			s.BatchesDone++
			s.Progress = p.Percent
			s.RemainingSecs = p.Remaining.Seconds()
		})
		i.saveProgress(ctx, i.GetStats())
	}
}

// advance records a completed stage.
func (i *Importer) advance(ctx context.Context, stage Stage, start time.Time, fn func(*RunStats)) {
	elapsed := time.Since(start)
	metrics.RecordPipelineStage(string(stage), elapsed)
	i.update(func(s *RunStats) {
		s.Stage = stage
		if fn != nil {
			fn(s)
		}
	})
	logging.Ctx(ctx).Info().Str("stage", string(stage)).Dur("elapsed", elapsed).Msg("Stage complete")
	i.saveProgress(ctx, i.GetStats())
}

func (i *Importer) update(fn func(*RunStats)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	fn(i.stats)
}

func (i *Importer) saveProgress(ctx context.Context, stats *RunStats) {
	if i.progress == nil {
		return
	}
	if err := i.progress.Save(ctx, stats); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to save import progress")
	}
}

func recordFeatureColumns(m *features.Matrix) {
	_, cols := m.Dims()
	metrics.PipelineFeatureColumns.WithLabelValues("genre").Set(float64(m.GenreColumns()))
	metrics.PipelineFeatureColumns.WithLabelValues("tfidf").Set(float64(m.TextColumns()))
	metrics.PipelineFeatureColumns.WithLabelValues("numeric").Set(float64(m.NumericColumns()))
	metrics.PipelineFeatureColumns.WithLabelValues("collection").Set(float64(m.CollectionColumns()))
	metrics.PipelineFeatureColumns.WithLabelValues("total").Set(float64(cols))
}

// Stop cancels the running import.
func (i *Importer) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running || i.cancel == nil {
		return ErrNoImportRunning
	}
	i.cancel()
	return nil
}

// GetStats returns a copy of the current or last run's stats. Before the
// first run it falls back to the progress tracker, or empty stats.
func (i *Importer) GetStats() *RunStats {
	i.mu.RLock()
	if i.stats != nil {
		stats := *i.stats
		i.mu.RUnlock()
		return &stats
	}
	i.mu.RUnlock()

	if i.progress != nil {
		if last, err := i.progress.Load(context.Background()); err == nil && last != nil {
			return last
		}
	}
	return &RunStats{}
}

// IsRunning returns whether an import is currently in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}
