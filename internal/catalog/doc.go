// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package catalog reads the raw movie catalog and normalizes it into
models.MovieRecord values.

# Input Format

The loader is header-driven and expects the movies_metadata.csv layout. Only
these columns are read; any others are ignored:

	id, title, release_date, overview, genres, belongs_to_collection,
	budget, revenue, runtime, vote_average

The id column is required. Every other column may be absent, in which case the
field takes its missing value.

# Normalization

  - title and overview: carriage returns and newlines become spaces, then trimmed
  - genres: a list of {id, name} objects written either as JSON or as a Python
    literal ([{'id': 16, 'name': 'Animation'}]); malformed lists load as empty
  - belongs_to_collection: the "name" key of the object, or nil
  - budget, revenue, runtime: non-numeric and zero load as nil
  - vote_average: non-numeric loads as nil
  - release_date: YYYY-MM-DD, anything else loads as nil
  - id: integer coercion, non-integer ids load as 0

Per-row problems never abort a load; they are counted in LoadStats. An
unreadable source or a missing id column is an error.
*/
package catalog
