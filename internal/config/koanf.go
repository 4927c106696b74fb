// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. The pipeline constants match the
// values the similarity graph has always been computed with.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:                 "duckdb",
			Path:                   "/data/marquee.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Cache: CacheConfig{
			Enabled:     true,
			Backend:     "redis",
			Addr:        "localhost:6379",
			DB:          0,
			DefaultTTL:  24 * time.Hour,
			DialTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Port:    5000,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Pipeline: PipelineConfig{
			BatchSize:        100,
			TargetRank:       2000,
			NeighborK:        10,
			MinWorkingSet:    10,
			CollectionWeight: 2,
			Seed:             42,
			Oversample:       10,
			PowerIterations:  5,
		},
		Import: ImportConfig{
			CatalogPath:   "data/movies_metadata.csv",
			ProgressStore: "badger",
			ProgressPath:  "/data/import-progress",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default path found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Database
	"db_driver":         "database.driver",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"database_url":      "database.dsn",

	// Cache
	"cache_enabled":     "cache.enabled",
	"cache_backend":     "cache.backend",
	"redis_addr":        "cache.addr",
	"redis_password":    "cache.password",
	"redis_db":          "cache.db",
	"redis_default_ttl": "cache.default_ttl",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Pipeline
	"pipeline_batch_size":        "pipeline.batch_size",
	"pipeline_target_rank":       "pipeline.target_rank",
	"pipeline_neighbor_k":        "pipeline.neighbor_k",
	"pipeline_min_working_set":   "pipeline.min_working_set",
	"pipeline_collection_weight": "pipeline.collection_weight",
	"pipeline_seed":              "pipeline.seed",
	"pipeline_oversample":        "pipeline.oversample",
	"pipeline_power_iterations":  "pipeline.power_iterations",
	"pipeline_write_rate":        "pipeline.write_rate",

	// Import
	"catalog_path":          "import.catalog_path",
	"import_progress_store": "import.progress_store",
	"import_progress_path":  "import.progress_path",
	"import_run_on_startup": "import.run_on_startup",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps REDIS_ADDR to cache.addr and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
