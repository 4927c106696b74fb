// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package features turns working-set movie records into one sparse feature row
per movie.

# Blocks

The matrix is the horizontal concatenation of four blocks, in this order:

 1. Genre: binary multi-label encoding, one column per distinct genre name,
    columns sorted by name.
 2. Text: TF-IDF over overviews. Text is lowercased, split into tokens of two
    or more word characters, English stop words are dropped, idf is smoothed
    as ln((1+n)/(1+df))+1 and every row is L2-normalized. The vocabulary is fit
    on the working set only and sorted.
 3. Numeric: budget, revenue and runtime. Missing values are replaced by the
    column median (0 when the whole column is missing), then standardized with
    the population standard deviation (a zero deviation is treated as 1).
 4. Collection: one-hot over collection names plus a trailing "no collection"
    column, every entry scaled by the collection weight.

Rows are aligned with the input records. A working set whose overviews produce
no vocabulary fails with ErrNoText.
*/
package features
