// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package features

import (
	"math"
	"sort"

	"github.com/tomtom215/marquee/internal/models"
)

// encodeGenres returns a binary row per record with one column per distinct
// genre name, plus the sorted column names.
func encodeGenres(records []models.MovieRecord) (*CSR, []string) {
	set := make(map[string]struct{})
	for i := range records {
		for _, g := range records[i].Genres {
			set[g.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)

	col := make(map[string]int, len(names))
	for j, n := range names {
		col[n] = j
	}

	b := newCSRBuilder(len(names), len(records))
	for i := range records {
		seen := make(map[int]struct{}, len(records[i].Genres))
		idx := make([]int, 0, len(records[i].Genres))
		for _, g := range records[i].Genres {
			j := col[g.Name]
			if _, dup := seen[j]; dup {
				continue
			}
			seen[j] = struct{}{}
			idx = append(idx, j)
		}
		sort.Ints(idx)
		b.addRow(idx, ones(len(idx)))
	}
	return b.build(), names
}

// NumericColumns names the numeric attributes in column order.
var NumericColumns = []string{"budget", "revenue", "runtime"}

func numericValue(rec *models.MovieRecord, col int) *float64 {
	switch col {
	case 0:
		return rec.Budget
	case 1:
		return rec.Revenue
	default:
		return rec.Runtime
	}
}

// encodeNumeric imputes missing values with the column median and
// standardizes every column to zero mean and unit variance.
func encodeNumeric(records []models.MovieRecord) *CSR {
	n := len(records)
	cols := make([][]float64, len(NumericColumns))
	for c := range cols {
		present := make([]float64, 0, n)
		for i := range records {
			if v := numericValue(&records[i], c); v != nil {
				present = append(present, *v)
			}
		}
		fill := Median(present)

		col := make([]float64, n)
		for i := range records {
			if v := numericValue(&records[i], c); v != nil {
				col[i] = *v
			} else {
				col[i] = fill
			}
		}
		standardize(col)
		cols[c] = col
	}

	b := newCSRBuilder(len(NumericColumns), n)
	idx := []int{0, 1, 2}
	row := make([]float64, len(NumericColumns))
	for i := 0; i < n; i++ {
		for c := range cols {
			row[c] = cols[c][i]
		}
		b.addRow(idx, row)
	}
	return b.build()
}

// Median returns the median of values, or 0 for an empty slice. values is
// not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// standardize rescales col in place using the population standard
// deviation. A constant column becomes all zeros.
func standardize(col []float64) {
	if len(col) == 0 {
		return
	}
	var mean float64
	for _, v := range col {
		mean += v
	}
	mean /= float64(len(col))

	var variance float64
	for _, v := range col {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(col)))
	if std == 0 {
		std = 1
	}
	for i, v := range col {
		col[i] = (v - mean) / std
	}
}

// encodeCollections one-hot encodes collection names with a trailing
// "no collection" column, scaled by weight.
func encodeCollections(records []models.MovieRecord, weight float64) (*CSR, []string) {
	set := make(map[string]struct{})
	for i := range records {
		if c := records[i].CollectionName; c != nil {
			set[*c] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)

	col := make(map[string]int, len(names))
	for j, n := range names {
		col[n] = j
	}
	none := len(names)

	b := newCSRBuilder(len(names)+1, len(records))
	for i := range records {
		j := none
		if c := records[i].CollectionName; c != nil {
			j = col[*c]
		}
		b.addRow([]int{j}, []float64{weight})
	}
	return b.build(), names
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
