// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetVisualization returns the stored payload for (movieID, kind) or ErrNotFound.
func (db *DB) GetVisualization(ctx context.Context, movieID int64, kind string) (payload []byte, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "visualizations", start, err) }()

	var data string
	err = db.conn.QueryRowContext(ctx, `
		SELECT payload FROM visualizations
		WHERE movie_id = $1 AND visualization_type = $2`, movieID, kind).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visualization: %w", err)
	}
	return []byte(data), nil
}

// SaveVisualization stores or replaces the payload for (movieID, kind).
func (db *DB) SaveVisualization(ctx context.Context, movieID int64, kind string, payload []byte) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("upsert", "visualizations", start, err) }()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO visualizations (movie_id, visualization_type, payload, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (movie_id, visualization_type)
		DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`,
		movieID, kind, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save visualization: %w", err)
	}
	return nil
}

// ClearVisualizations deletes every stored visualization and returns the count removed.
func (db *DB) ClearVisualizations(ctx context.Context) (n int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("delete", "visualizations", start, err) }()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM visualizations`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear visualizations: %w", err)
	}
	return res.RowsAffected()
}
