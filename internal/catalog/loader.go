// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Column names of the catalog header.
const (
	ColumnID          = "id"
	ColumnTitle       = "title"
	ColumnReleaseDate = "release_date"
	ColumnOverview    = "overview"
	ColumnGenres      = "genres"
	ColumnCollection  = "belongs_to_collection"
	ColumnBudget      = "budget"
	ColumnRevenue     = "revenue"
	ColumnRuntime     = "runtime"
	ColumnVoteAverage = "vote_average"
)

const releaseDateLayout = "2006-01-02"

// ctxCheckInterval is how many rows are read between cancellation checks.
const ctxCheckInterval = 1000

// ErrMissingIDColumn is returned when the header has no id column.
var ErrMissingIDColumn = errors.New("catalog header has no id column")

// LoadStats counts what the loader had to repair or drop.
type LoadStats struct {
	Rows                 int `json:"rows"`
	MalformedRows        int `json:"malformed_rows"`
	InvalidIDs           int `json:"invalid_ids"`
	MalformedGenres      int `json:"malformed_genres"`
	MalformedCollections int `json:"malformed_collections"`
	InvalidDates         int `json:"invalid_dates"`
	MissingOverviews     int `json:"missing_overviews"`
}

// LoadFile opens path and loads it with Load.
func LoadFile(ctx context.Context, path string) ([]models.MovieRecord, LoadStats, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied catalog path
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Ctx(ctx).Warn().Err(cerr).Str("path", path).Msg("Failed to close catalog file")
		}
	}()
	return Load(ctx, f)
}

// Load parses a catalog CSV stream. Records are returned in source order,
// duplicates included; deduplication is left to persistence.
func Load(ctx context.Context, r io.Reader) ([]models.MovieRecord, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fmt.Errorf("catalog is empty: %w", err)
		}
		return nil, stats, fmt.Errorf("failed to read catalog header: %w", err)
	}

	cols := indexColumns(header)
	if _, ok := cols[ColumnID]; !ok {
		return nil, stats, ErrMissingIDColumn
	}

	var records []models.MovieRecord
	for {
		if stats.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.MalformedRows++
				logging.Ctx(ctx).Debug().Err(err).Int("line", parseErr.Line).Msg("Skipping malformed catalog row")
				continue
			}
			return nil, stats, fmt.Errorf("failed to read catalog: %w", err)
		}

		stats.Rows++
		records = append(records, parseRow(cols, row, &stats))
	}

	logging.Ctx(ctx).Info().
		Int("rows", stats.Rows).
		Int("malformed_rows", stats.MalformedRows).
		Int("malformed_genres", stats.MalformedGenres).
		Int("invalid_ids", stats.InvalidIDs).
		Msg("Catalog loaded")

	return records, stats, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func parseRow(cols map[string]int, row []string, stats *LoadStats) models.MovieRecord {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := models.MovieRecord{
		Title:    cleanText(field(ColumnTitle)),
		Overview: cleanText(field(ColumnOverview)),
	}

	id, ok := parseExternalID(field(ColumnID))
	if !ok {
		stats.InvalidIDs++
	}
	rec.ExternalID = id

	if rec.Overview == "" {
		stats.MissingOverviews++
	}

	genres, ok := parseGenres(field(ColumnGenres))
	if !ok {
		stats.MalformedGenres++
	}
	rec.Genres = genres

	name, ok := parseCollectionName(field(ColumnCollection))
	if !ok {
		stats.MalformedCollections++
	}
	rec.CollectionName = name

	rec.Budget = parsePositive(field(ColumnBudget))
	rec.Revenue = parsePositive(field(ColumnRevenue))
	rec.Runtime = parsePositive(field(ColumnRuntime))
	rec.VoteAverage = parseNumber(field(ColumnVoteAverage))

	date, ok := parseReleaseDate(field(ColumnReleaseDate))
	if !ok {
		stats.InvalidDates++
	}
	rec.ReleaseDate = date

	return rec
}

// cleanText replaces line breaks with spaces and trims the result.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// parseExternalID coerces an id to an integer. Values that are not integers
// yield 0 and ok=false. Integral floats such as "862.0" are accepted.
func parseExternalID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// parseNumber returns nil for empty, non-numeric, NaN and infinite values.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parsePositive is parseNumber with zero treated as missing.
func parsePositive(s string) *float64 {
	f := parseNumber(s)
	if f == nil || *f == 0 {
		return nil
	}
	return f
}

// parseReleaseDate returns ok=false only when a non-empty value fails to parse.
func parseReleaseDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(releaseDateLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// parseGenres decodes a genre list. Empty input is an empty list; input that
// does not decode is an empty list with ok=false.
func parseGenres(s string) ([]models.Genre, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []models.Genre{}, true
	}

	data, err := pythonLiteralToJSON(s)
	if err != nil {
		return []models.Genre{}, false
	}

	var genres []models.Genre
	if err := json.Unmarshal(data, &genres); err != nil {
		return []models.Genre{}, false
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	return genres, true
}

// parseCollectionName extracts the name of a collection object. Empty and
// NaN values are nil with ok=true; undecodable values are nil with ok=false.
func parseCollectionName(s string) (*string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" || s == "nan" {
		return nil, true
	}

	data, err := pythonLiteralToJSON(s)
	if err != nil {
		return nil, false
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	name, ok := obj["name"].(string)
	if !ok {
		return nil, true
	}
	return &name, true
}
