// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package similarity computes the nearest-neighbor graph over the reduced
// embedding and writes it batch by batch.
//
// Scores are cosine similarities of embedding rows, clamped to [0, 1]. Each
// row keeps its K best neighbors other than itself, ties broken by row
// order. Writes are upserts, so a re-run over unchanged input rewrites the
// same edges.
package similarity
