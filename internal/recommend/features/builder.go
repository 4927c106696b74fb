// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package features

import (
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// DefaultCollectionWeight scales the collection block.
const DefaultCollectionWeight = 2.0

// ErrNoText is returned when the working set's overviews yield no vocabulary.
var ErrNoText = errors.New("no text available")

// ErrNoRecords is returned when Build is called with an empty working set.
var ErrNoRecords = errors.New("no records to encode")

// Options configures Build.
type Options struct {
	CollectionWeight float64
}

// Matrix is the fused feature matrix and the column layout of its blocks.
type Matrix struct {
	*CSR

	Genres      []string // genre block column names
	Vocabulary  []string // text block column names
	Collections []string // collection block column names, "no collection" excluded
}

// Block widths, in concatenation order.
func (m *Matrix) GenreColumns() int      { return len(m.Genres) }
func (m *Matrix) TextColumns() int       { return len(m.Vocabulary) }
func (m *Matrix) NumericColumns() int    { return len(NumericColumns) }
func (m *Matrix) CollectionColumns() int { return len(m.Collections) + 1 }

// Build encodes records into one fused row per record, in record order.
func Build(records []models.MovieRecord, opts Options) (*Matrix, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	weight := opts.CollectionWeight
	if weight <= 0 {
		weight = DefaultCollectionWeight
	}

	docs := make([]string, len(records))
	for i := range records {
		docs[i] = records[i].Overview
	}
	tfidf := FitTFIDF(docs)
	if len(tfidf.Vocabulary) == 0 {
		return nil, ErrNoText
	}

	genres, genreNames := encodeGenres(records)
	text := tfidf.Transform(docs)
	numeric := encodeNumeric(records)
	collections, collectionNames := encodeCollections(records, weight)

	fused, err := HStack(genres, text, numeric, collections)
	if err != nil {
		return nil, fmt.Errorf("failed to fuse feature blocks: %w", err)
	}

	m := &Matrix{
		CSR:         fused,
		Genres:      genreNames,
		Vocabulary:  tfidf.Vocabulary,
		Collections: collectionNames,
	}

	rows, cols := fused.Dims()
	logging.Debug().
		Int("rows", rows).
		Int("cols", cols).
		Int("nnz", fused.NNZ()).
		Int("genre_columns", m.GenreColumns()).
		Int("text_columns", m.TextColumns()).
		Int("collection_columns", m.CollectionColumns()).
		Msg("Feature matrix built")

	return m, nil
}
