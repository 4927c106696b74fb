// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models defines the records passed between pipeline stages and the
// shapes returned by the HTTP API.
//
// Stage boundaries are typed: the catalog loader produces MovieRecord,
// persistence produces StoredRef, and the similarity computer produces
// SimilarityEdge. The serving layer reads Movie and SimilarMovie.
package models

import (
	"time"
)

// Genre is one entry of a catalog genre list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieRecord is a normalized catalog row. Nil numeric fields are missing;
// zero budget, revenue and runtime are loaded as nil.
type MovieRecord struct {
	ExternalID     int64
	Title          string
	ReleaseDate    *time.Time
	Overview       string
	Genres         []Genre
	Budget         *float64
	Revenue        *float64
	Runtime        *float64
	VoteAverage    *float64
	CollectionName *string
}

// GenreNames returns the genre names in catalog order.
func (m *MovieRecord) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// StoredRef pairs the internal movie id with the external (TMDB) id it was
// persisted under.
type StoredRef struct {
	MovieID    int64
	ExternalID int64
}

// SimilarityEdge is a directed, scored neighbor relation. Score is in [0,1]
// and SourceMovieID never equals TargetMovieID.
type SimilarityEdge struct {
	SourceMovieID int64   `json:"source_movie_id"`
	TargetMovieID int64   `json:"target_movie_id"`
	Score         float64 `json:"similarity_score"`
}

// Movie is a persisted movie as returned by the API.
type Movie struct {
	MovieID        int64      `json:"movie_id"`
	TMDBID         int64      `json:"tmdb_id"`
	Title          string     `json:"title"`
	ReleaseDate    *time.Time `json:"release_date"`
	Overview       string     `json:"overview"`
	VoteAverage    *float64   `json:"vote_average"`
	Budget         *float64   `json:"budget"`
	Revenue        *float64   `json:"revenue"`
	Runtime        *float64   `json:"runtime"`
	CollectionName *string    `json:"collection_name"`
	Genres         []Genre    `json:"genres"`
}

// GenreNames returns the genre names of the movie.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// SimilarMovie is a neighbor of some source movie with its similarity score.
type SimilarMovie struct {
	Movie
	SimilarityScore float64 `json:"similarity_score"`
}
