// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package movieimport runs the catalog import and similarity pipeline.
//
// # Stages
//
// A run moves through a fixed sequence of stages and never goes back:
//
//	SchemaReady -> CatalogLoaded -> CatalogPersisted -> Reconciled
//	            -> FeaturesBuilt -> Reduced -> SimilaritiesComputed
//
// Each stage needs the previous one. A stage that leaves nothing to work
// with (no persisted rows, an empty working set, no overview text) ends the
// run with status "skipped" before the similarity graph is touched. A
// working set below the configured minimum fails the run.
//
// # Partial Failures
//
// Rows and batches are independent units of work:
//
//   - A catalog row that fails to persist is counted, logged (the first few
//     in full) and skipped. A row whose external id is already stored is
//     reported as Skipped, not as a failure.
//   - A similarity batch whose write fails is rolled back, logged with its
//     row range and counted; the next batch still runs.
//
// Edge writes are upserts, so re-running after a crash or a failed batch
// is safe and converges on the same graph.
//
// # Progress Tracking
//
// The stats of the current or last run are saved after every stage and
// batch through a ProgressTracker. BadgerProgress keeps them across
// restarts so /api/import/status can report the last run.
//
// # Example Usage
//
//	importer := movieimport.NewImporter(db, recommend.DefaultConfig(), progress)
//	stats, err := importer.Run(ctx, "data/movies_metadata.csv")
//	if err != nil && !movieimport.IsSkipped(err) {
//	    return err
//	}
//	fmt.Println(stats.Summary())
package movieimport
