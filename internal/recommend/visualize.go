// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend/features"
)

const (
	// VisualizationNeighbors is how many neighbors a visualization covers.
	VisualizationNeighbors = 5

	// MaxWordCloudWords caps the terms of a word cloud.
	MaxWordCloudWords = 200

	// placeholderOverview marks catalog rows without a synopsis.
	placeholderOverview = "no overview found"
)

// ErrUnknownVisualization is returned for a kind other than the supported two.
var ErrUnknownVisualization = errors.New("unknown visualization type")

// ValidVisualization reports whether kind is a supported visualization.
func ValidVisualization(kind string) bool {
	return kind == models.VisualizationSimilarityChart || kind == models.VisualizationWordCloud
}

// BuildVisualization computes the data of a chart of kind for source and its
// neighbors, best first. Only the first VisualizationNeighbors are used.
func BuildVisualization(kind string, source *models.Movie, neighbors []models.SimilarMovie, now time.Time) (*models.Visualization, error) {
	if len(neighbors) > VisualizationNeighbors {
		neighbors = neighbors[:VisualizationNeighbors]
	}
	viz := &models.Visualization{
		MovieID:   source.MovieID,
		Type:      kind,
		CreatedAt: now.UTC(),
	}

	switch kind {
	case models.VisualizationSimilarityChart:
		viz.Title = fmt.Sprintf("Movies Similar to %q", source.Title)
		viz.Bars = make([]models.ChartBar, 0, len(neighbors))
		for _, n := range neighbors {
			viz.Bars = append(viz.Bars, models.ChartBar{
				MovieID: n.MovieID,
				Title:   n.Title,
				Score:   n.SimilarityScore,
			})
		}
		if len(viz.Bars) == 0 {
			viz.Message = "No similarity data available"
		}
	case models.VisualizationWordCloud:
		viz.Title = fmt.Sprintf("Themes of %q and similar movies", source.Title)
		texts := []string{source.Overview}
		for _, n := range neighbors {
			texts = append(texts, n.Overview)
		}
		viz.Words = WordFrequencies(texts, MaxWordCloudWords)
		if len(viz.Words) == 0 {
			viz.Message = "No meaningful text available for wordcloud"
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVisualization, kind)
	}
	return viz, nil
}

// WordFrequencies counts the non-stop-word terms of texts, skipping empty
// and placeholder overviews, and returns the max most frequent, ties in
// alphabetical order.
func WordFrequencies(texts []string, max int) []models.WordWeight {
	counts := make(map[string]int)
	for _, text := range texts {
		if strings.TrimSpace(text) == "" || strings.EqualFold(strings.TrimSpace(text), placeholderOverview) {
			continue
		}
		for _, tok := range features.Tokenize(text) {
			counts[tok]++
		}
	}

	words := make([]models.WordWeight, 0, len(counts))
	for w, c := range counts {
		words = append(words, models.WordWeight{Word: w, Count: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if max > 0 && len(words) > max {
		words = words[:max]
	}
	return words
}
