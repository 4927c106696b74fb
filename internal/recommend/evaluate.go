// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"math"
	"strings"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend/features"
)

// Evaluate scores a recommendation list against its source movie:
//
//   - genre overlap: mean Jaccard index of the genre name sets, as a percentage
//   - rating difference: mean absolute vote_average difference, missing as 0
//   - content relevance: mean cosine between tf-idf vectors of the space-joined
//     genre names, fitted over the source and its recommendations, as a percentage
//
// An empty list scores zero on every metric.
func Evaluate(source *models.Movie, recs []models.SimilarMovie) models.EvaluationMetrics {
	if len(recs) == 0 {
		return models.EvaluationMetrics{}
	}

	sourceGenres := source.GenreNames()
	sourceRating := ratingOf(source)

	docs := make([]string, 0, len(recs)+1)
	docs = append(docs, strings.Join(sourceGenres, " "))

	var overlap, ratingDiff float64
	for i := range recs {
		recGenres := recs[i].GenreNames()
		overlap += jaccard(sourceGenres, recGenres)
		ratingDiff += math.Abs(sourceRating - ratingOf(&recs[i].Movie))
		docs = append(docs, strings.Join(recGenres, " "))
	}

	n := float64(len(recs))
	return models.EvaluationMetrics{
		AverageGenreOverlap:     overlap / n * 100,
		AverageRatingDifference: ratingDiff / n,
		AverageContentRelevance: genreRelevance(docs) * 100,
	}
}

// genreRelevance returns the mean cosine between docs[0] and every other doc.
func genreRelevance(docs []string) float64 {
	model := features.FitTFIDF(docs)
	if len(model.Vocabulary) == 0 {
		return 0
	}
	m := model.Transform(docs)
	si, sv := m.Row(0)

	var sum float64
	for i := 1; i < len(docs); i++ {
		ri, rv := m.Row(i)
		sum += features.CosineSparse(si, sv, ri, rv)
	}
	return sum / float64(len(docs)-1)
}

// jaccard is |a∩b| / |a∪b| over distinct names, 0 when either side is empty.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, g := range a {
		setA[g] = struct{}{}
	}
	union := len(setA)
	inter := 0
	seenB := make(map[string]struct{}, len(b))
	for _, g := range b {
		if _, dup := seenB[g]; dup {
			continue
		}
		seenB[g] = struct{}{}
		if _, ok := setA[g]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func ratingOf(m *models.Movie) float64 {
	if m.VoteAverage == nil {
		return 0
	}
	return *m.VoteAverage
}
