// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend holds the similarity pipeline configuration and the
// reconciliation of catalog records with persisted movies.
//
// # Pipeline
//
// One run turns the whole catalog into a nearest-neighbor graph:
//
//	records -> Reconcile -> features.Build -> reduce.TruncatedSVD -> similarity.Compute
//
// Reconcile keeps the catalog records whose external id is stored and pairs
// each with its internal movie id. Everything downstream works on that
// working set only and references movies by internal id.
//
// # Configuration
//
// Config carries the pipeline constants explicitly so tests can run with a
// small rank, batch size and K:
//
//	cfg := recommend.DefaultConfig()
//	cfg.TargetRank = 16
//	cfg.BatchSize = 5
//	cfg.NeighborK = 3
//
// # Sub-packages
//
//   - features: genre, TF-IDF, numeric and collection encoders fused into a sparse matrix
//   - reduce: seeded randomized truncated SVD
//   - similarity: batched cosine top-K and edge writes
package recommend
