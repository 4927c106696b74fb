// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/recommend/features"
	"github.com/tomtom215/marquee/internal/recommend/reduce"
	"github.com/tomtom215/marquee/internal/recommend/similarity"
)

// DefaultMinWorkingSet is the smallest working set worth scoring.
const DefaultMinWorkingSet = 10

// Config contains the constants of one similarity pipeline run.
type Config struct {
	// BatchSize is the number of rows scored and written per transaction.
	BatchSize int `json:"batch_size"`

	// TargetRank is the requested latent dimensionality; the reducer clamps
	// it to the matrix shape.
	TargetRank int `json:"target_rank"`

	// NeighborK is the number of neighbors kept per movie.
	NeighborK int `json:"neighbor_k"`

	// MinWorkingSet aborts runs whose reconciled working set is smaller.
	MinWorkingSet int `json:"min_working_set"`

	// CollectionWeight scales the collection one-hot block.
	CollectionWeight float64 `json:"collection_weight"`

	// Seed makes the projection reproducible.
	Seed int64 `json:"seed"`

	// Oversample and PowerIterations tune the randomized SVD.
	Oversample      int `json:"oversample"`
	PowerIterations int `json:"power_iterations"`

	// WriteRate caps similarity batch writes per second; 0 disables it.
	WriteRate float64 `json:"write_rate"`
}

// DefaultConfig returns the constants the graph is normally computed with.
func DefaultConfig() Config {
	return Config{
		BatchSize:        similarity.DefaultBatchSize,
		TargetRank:       reduce.DefaultRank,
		NeighborK:        similarity.DefaultK,
		MinWorkingSet:    DefaultMinWorkingSet,
		CollectionWeight: features.DefaultCollectionWeight,
		Seed:             reduce.DefaultSeed,
		Oversample:       reduce.DefaultOversample,
		PowerIterations:  reduce.DefaultPowerIterations,
	}
}

// FromPipelineConfig converts the application configuration section.
func FromPipelineConfig(p *config.PipelineConfig) Config {
	return Config{
		BatchSize:        p.BatchSize,
		TargetRank:       p.TargetRank,
		NeighborK:        p.NeighborK,
		MinWorkingSet:    p.MinWorkingSet,
		CollectionWeight: p.CollectionWeight,
		Seed:             p.Seed,
		Oversample:       p.Oversample,
		PowerIterations:  p.PowerIterations,
		WriteRate:        p.WriteRate,
	}
}

// Validate checks that every constant is usable.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.TargetRank < 1 {
		return fmt.Errorf("target rank must be positive, got %d", c.TargetRank)
	}
	if c.NeighborK < 1 {
		return fmt.Errorf("neighbor count must be positive, got %d", c.NeighborK)
	}
	if c.MinWorkingSet < 1 {
		return fmt.Errorf("minimum working set must be positive, got %d", c.MinWorkingSet)
	}
	if c.CollectionWeight <= 0 {
		return fmt.Errorf("collection weight must be positive, got %v", c.CollectionWeight)
	}
	if c.Oversample < 0 || c.PowerIterations < 0 {
		return fmt.Errorf("oversample and power iterations must not be negative")
	}
	if c.WriteRate < 0 {
		return fmt.Errorf("write rate must not be negative, got %v", c.WriteRate)
	}
	return nil
}

// FeatureOptions returns the feature builder options.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) FeatureOptions() features.Options {
	return features.Options{CollectionWeight: c.CollectionWeight}
}

// ReduceOptions returns the reducer options. Zero power iterations are
// passed as negative so the reducer does not substitute its default.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) ReduceOptions() reduce.Options {
	power := c.PowerIterations
	if power == 0 {
		power = -1
	}
	return reduce.Options{
		Rank:            c.TargetRank,
		Seed:            c.Seed,
		Oversample:      c.Oversample,
		PowerIterations: power,
	}
}
