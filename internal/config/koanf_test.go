// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"REDIS_ADDR", "cache.addr"},
		{"PIPELINE_BATCH_SIZE", "pipeline.batch_size"},
		{"CATALOG_PATH", "import.catalog_path"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadWithKoanfLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  path: /tmp/from-file.duckdb
pipeline:
  neighbor_k: 5
  batch_size: 50
cache:
  default_ttl: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PIPELINE_BATCH_SIZE", "25")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-file.duckdb" {
		t.Errorf("Database.Path = %q, want file value", cfg.Database.Path)
	}
	if cfg.Pipeline.NeighborK != 5 {
		t.Errorf("Pipeline.NeighborK = %d, want 5", cfg.Pipeline.NeighborK)
	}
	if cfg.Pipeline.BatchSize != 25 {
		t.Errorf("Pipeline.BatchSize = %d, want env override 25", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.TargetRank != 2000 {
		t.Errorf("Pipeline.TargetRank = %d, want default 2000", cfg.Pipeline.TargetRank)
	}
	if cfg.Cache.DefaultTTL != time.Hour {
		t.Errorf("Cache.DefaultTTL = %v, want 1h", cfg.Cache.DefaultTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanfRejectsInvalid(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PIPELINE_NEIGHBOR_K", "0")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() error = nil, want validation error")
	}
}
