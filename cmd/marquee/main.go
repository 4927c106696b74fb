// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the marquee command.
//
// Marquee loads a movie metadata catalog, computes a content-based
// similarity graph over it (TF-IDF text, one-hot genres and collections,
// scaled numerics, randomized SVD, cosine top-K) and serves
// recommendations from that graph over HTTP.
//
// # Commands
//
//	marquee serve                 run the HTTP API under the supervisor tree
//	marquee import --csv FILE     run the pipeline once and print the summary
//	marquee version               print build information
//
// # Configuration
//
// Configuration is loaded via koanf with layered sources (highest priority wins):
//   - Environment variables, e.g. DUCKDB_PATH, REDIS_ADDR, PIPELINE_TARGET_RANK
//   - Config file (CONFIG_PATH or --config, YAML)
//   - Built-in defaults
//
// DuckDB and the Badger progress store hold single-process file locks, so
// while `marquee serve` is running imports are triggered with
// POST /api/import rather than a second process.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running import, drain in-flight requests
// and close the stores.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
