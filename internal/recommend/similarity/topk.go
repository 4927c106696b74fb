// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package similarity

// Neighbor is a candidate row with its clamped score.
type Neighbor struct {
	Index int
	Score float64
}

// better orders by score descending, then index ascending.
func better(a, b Neighbor) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// TopK returns the k best entries of scores excluding index self, best
// first. Scores are clamped to [0, 1] before ranking so rounding noise and
// anti-correlated rows cannot leave the valid range.
func TopK(scores []float64, self, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	top := make([]Neighbor, 0, k)
	for i, s := range scores {
		if i == self {
			continue
		}
		n := Neighbor{Index: i, Score: clamp(s)}
		if len(top) == k && !better(n, top[k-1]) {
			continue
		}
		if len(top) < k {
			top = append(top, n)
		} else {
			top[k-1] = n
		}
		// insertion step keeps top sorted
		for j := len(top) - 1; j > 0 && better(top[j], top[j-1]); j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	return top
}

func clamp(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
