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

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

const movieColumns = `movie_id, tmdb_id, title, release_date, overview, vote_average,
	budget, revenue, runtime, collection_name, genres`

// InsertMovie persists a catalog record. A record whose tmdb_id already
// exists is left untouched and reported with inserted=false.
func (db *DB) InsertMovie(ctx context.Context, rec *models.MovieRecord) (movieID int64, inserted bool, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("insert", "movies", start, err) }()

	genres := rec.Genres
	if genres == nil {
		genres = []models.Genre{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode genres: %w", err)
	}

	var releaseDate interface{}
	if rec.ReleaseDate != nil {
		releaseDate = *rec.ReleaseDate
	}

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO movies (tmdb_id, title, release_date, overview, vote_average,
			budget, revenue, runtime, collection_name, genres)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tmdb_id) DO NOTHING
		RETURNING movie_id`,
		rec.ExternalID, rec.Title, releaseDate, rec.Overview, nullableFloat(rec.VoteAverage),
		nullableFloat(rec.Budget), nullableFloat(rec.Revenue), nullableFloat(rec.Runtime),
		nullableString(rec.CollectionName), string(genresJSON),
	)

	if err := row.Scan(&movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to insert movie %d: %w", rec.ExternalID, err)
	}
	return movieID, true, nil
}

// ListStoredMovies returns every (movie_id, tmdb_id) pair ordered by movie_id.
func (db *DB) ListStoredMovies(ctx context.Context) (refs []models.StoredRef, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "movies", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT movie_id, tmdb_id FROM movies ORDER BY movie_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var ref models.StoredRef
		if err := rows.Scan(&ref.MovieID, &ref.ExternalID); err != nil {
			return nil, fmt.Errorf("failed to scan movie ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// CountMovies returns the number of stored movies.
func (db *DB) CountMovies(ctx context.Context) (int, error) {
	return db.count(ctx, "movies")
}

// GetMovie returns one movie by internal id or ErrNotFound.
func (db *DB) GetMovie(ctx context.Context, movieID int64) (movie *models.Movie, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "movies", start, err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE movie_id = $1`, movieID)

	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", movieID, err)
	}
	return &m, nil
}

// FindMoviesByTitle returns movies whose title equals title, ignoring case.
func (db *DB) FindMoviesByTitle(ctx context.Context, title string) ([]models.Movie, error) {
	return db.queryMovies(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE LOWER(title) = LOWER($1) ORDER BY movie_id`,
		title)
}

// SearchMoviesByTitle returns up to limit movies whose title contains fragment, ignoring case.
func (db *DB) SearchMoviesByTitle(ctx context.Context, fragment string, limit int) ([]models.Movie, error) {
	return db.queryMovies(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE LOWER(title) LIKE LOWER($1) ORDER BY movie_id LIMIT $2`,
		"%"+fragment+"%", limit)
}

func (db *DB) queryMovies(ctx context.Context, query string, args ...interface{}) (movies []models.Movie, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("select", "movies", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	movies = []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMovie reads movieColumns followed by any extra destinations.
func scanMovie(row rowScanner, extra ...interface{}) (models.Movie, error) {
	var (
		m              models.Movie
		releaseDate    sql.NullTime
		overview       sql.NullString
		voteAverage    sql.NullFloat64
		budget         sql.NullFloat64
		revenue        sql.NullFloat64
		runtime        sql.NullFloat64
		collectionName sql.NullString
		genres         sql.NullString
	)

	dest := []interface{}{
		&m.MovieID, &m.TMDBID, &m.Title, &releaseDate, &overview, &voteAverage,
		&budget, &revenue, &runtime, &collectionName, &genres,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return m, err
	}

	if releaseDate.Valid {
		t := releaseDate.Time
		m.ReleaseDate = &t
	}
	m.Overview = overview.String
	m.VoteAverage = floatPtr(voteAverage)
	m.Budget = floatPtr(budget)
	m.Revenue = floatPtr(revenue)
	m.Runtime = floatPtr(runtime)
	if collectionName.Valid {
		name := collectionName.String
		m.CollectionName = &name
	}

	m.Genres = []models.Genre{}
	if genres.Valid && genres.String != "" {
		if err := json.Unmarshal([]byte(genres.String), &m.Genres); err != nil {
			return m, fmt.Errorf("failed to decode genres of movie %d: %w", m.MovieID, err)
		}
	}
	return m, nil
}

func (db *DB) count(ctx context.Context, table string) (n int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observe("count", table, start, err) }()

	// table is always a package constant
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
