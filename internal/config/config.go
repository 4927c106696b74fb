// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee configuration from defaults, an optional YAML
// file and environment variables (in that order of precedence, lowest first).
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Import   ImportConfig   `koanf:"import"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver                 string `koanf:"driver" validate:"oneof=duckdb postgres"`
	Path                   string `koanf:"path"`       // DuckDB file, ":memory:" for tests
	DSN                    string `koanf:"dsn"`        // Postgres connection string
	MaxMemory              string `koanf:"max_memory"` // DuckDB memory cap, e.g. "2GB"
	Threads                int    `koanf:"threads" validate:"min=0"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// CacheConfig configures the fast cache in front of recommendations and visualizations.
type CacheConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Backend     string        `koanf:"backend" validate:"oneof=redis memory"`
	Addr        string        `koanf:"addr"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db" validate:"min=0,max=15"`
	DefaultTTL  time.Duration `koanf:"default_ttl"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// PipelineConfig holds the similarity pipeline constants.
type PipelineConfig struct {
	BatchSize        int     `koanf:"batch_size" validate:"min=1"`
	TargetRank       int     `koanf:"target_rank" validate:"min=1"`
	NeighborK        int     `koanf:"neighbor_k" validate:"min=1"`
	MinWorkingSet    int     `koanf:"min_working_set" validate:"min=1"`
	CollectionWeight float64 `koanf:"collection_weight" validate:"gt=0"`
	Seed             int64   `koanf:"seed"`
	Oversample       int     `koanf:"oversample" validate:"min=0"`
	PowerIterations  int     `koanf:"power_iterations" validate:"min=0"`
	// WriteRate caps similarity batch writes per second; 0 disables throttling.
	WriteRate float64 `koanf:"write_rate" validate:"min=0"`
}

// ImportConfig configures catalog imports.
type ImportConfig struct {
	CatalogPath   string `koanf:"catalog_path"`
	ProgressStore string `koanf:"progress_store" validate:"oneof=badger memory"`
	ProgressPath  string `koanf:"progress_path"`
	RunOnStartup  bool   `koanf:"run_on_startup"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// CacheEnabled reports whether a cache backend should be constructed.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled
}
