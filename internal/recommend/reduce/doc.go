// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package reduce projects the sparse fused feature matrix into a dense
// latent space of fixed rank with a seeded randomized truncated SVD.
//
// The projection is fit once over the whole working set. Only the sparse
// products A·X and Aᵀ·X are needed, so the fused matrix is never densified.
package reduce
