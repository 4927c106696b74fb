// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns DDL accepted by both DuckDB and PostgreSQL.
//
// movies.tmdb_id is the natural key of a catalog row; movie_id is the
// internal id referenced by the similarity graph. genres holds the JSON
// encoded genre list.
func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS movies_movie_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS movies (
			movie_id BIGINT PRIMARY KEY DEFAULT nextval('movies_movie_id_seq'),
			tmdb_id BIGINT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			release_date DATE,
			overview TEXT NOT NULL DEFAULT '',
			vote_average DOUBLE PRECISION,
			budget DOUBLE PRECISION,
			revenue DOUBLE PRECISION,
			runtime DOUBLE PRECISION,
			collection_name TEXT,
			genres TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS movie_similarities (
			source_movie_id BIGINT NOT NULL,
			target_movie_id BIGINT NOT NULL,
			similarity_score DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (source_movie_id, target_movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS visualizations (
			movie_id BIGINT NOT NULL,
			visualization_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (movie_id, visualization_type)
		)`,
	}
}
