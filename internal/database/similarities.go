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
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// maxEdgesPerStatement bounds the bind parameters of one INSERT (3 per edge).
const maxEdgesPerStatement = 1000

// UpsertSimilarityEdges writes edges in a single transaction. An existing
// (source, target) pair has its score replaced, and any other edge leaving a
// source present in edges is removed, so each source keeps exactly the
// neighbor set it was last computed with. Either every change is committed
// or none is.
func (db *DB) UpsertSimilarityEdges(ctx context.Context, edges []models.SimilarityEdge) (err error) {
	if len(edges) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { observe("upsert", "movie_similarities", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			// A cancelled context has already rolled the transaction back.
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	for _, group := range groupBySource(edges) {
		query, args := buildStaleEdgeDelete(group)
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to prune stale edges of movie %d: %w", group[0].SourceMovieID, err)
		}
	}
	if db.afterEdgePrune != nil {
		db.afterEdgePrune()
	}

	for lo := 0; lo < len(edges); lo += maxEdgesPerStatement {
		hi := lo + maxEdgesPerStatement
		if hi > len(edges) {
			hi = len(edges)
		}
		query, args := buildEdgeUpsert(edges[lo:hi])
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert similarity edges: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit similarity edges: %w", err)
	}
	return nil
}

func buildEdgeUpsert(edges []models.SimilarityEdge) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO movie_similarities (source_movie_id, target_movie_id, similarity_score) VALUES `)

	args := make([]interface{}, 0, len(edges)*3)
	for i, e := range edges {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, e.SourceMovieID, e.TargetMovieID, e.Score)
	}
	sb.WriteString(` ON CONFLICT (source_movie_id, target_movie_id)
		DO UPDATE SET similarity_score = EXCLUDED.similarity_score`)
	return sb.String(), args
}

// groupBySource splits edges into runs sharing a source, in first-seen order.
func groupBySource(edges []models.SimilarityEdge) [][]models.SimilarityEdge {
	index := make(map[int64]int)
	var groups [][]models.SimilarityEdge
	for _, e := range edges {
		i, ok := index[e.SourceMovieID]
		if !ok {
			i = len(groups)
			index[e.SourceMovieID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return groups
}

func buildStaleEdgeDelete(group []models.SimilarityEdge) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`DELETE FROM movie_similarities WHERE source_movie_id = $1 AND target_movie_id NOT IN (`)

	args := make([]interface{}, 0, len(group)+1)
	args = append(args, group[0].SourceMovieID)
	for i, e := range group {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", i+2)
		args = append(args, e.TargetMovieID)
	}
	sb.WriteString(")")
	return sb.String(), args
}

// GetTopSimilar returns up to limit neighbors of movieID, highest score first.
func (db *DB) GetTopSimilar(ctx context.Context, movieID int64, limit int) (similar []models.SimilarMovie, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "movie_similarities", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.movie_id, m.tmdb_id, m.title, m.release_date, m.overview, m.vote_average,
			m.budget, m.revenue, m.runtime, m.collection_name, m.genres, ms.similarity_score
		FROM movie_similarities ms
		JOIN movies m ON ms.target_movie_id = m.movie_id
		WHERE ms.source_movie_id = $1
		ORDER BY ms.similarity_score DESC, ms.target_movie_id ASC
		LIMIT $2`, movieID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	similar = []models.SimilarMovie{}
	for rows.Next() {
		var sm models.SimilarMovie
		m, err := scanMovie(rows, &sm.SimilarityScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan similar movie: %w", err)
		}
		sm.Movie = m
		similar = append(similar, sm)
	}
	return similar, rows.Err()
}

// EdgesFrom returns the stored outgoing edges of source, highest score first.
func (db *DB) EdgesFrom(ctx context.Context, source int64) (edges []models.SimilarityEdge, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "movie_similarities", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT source_movie_id, target_movie_id, similarity_score
		FROM movie_similarities
		WHERE source_movie_id = $1
		ORDER BY similarity_score DESC, target_movie_id ASC`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var e models.SimilarityEdge
		if err := rows.Scan(&e.SourceMovieID, &e.TargetMovieID, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// CountEdges returns the number of stored similarity edges.
func (db *DB) CountEdges(ctx context.Context) (int, error) {
	return db.count(ctx, "movie_similarities")
}
