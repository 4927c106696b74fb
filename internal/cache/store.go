// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
)

// Backend names.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultTTL is used when the configuration leaves the TTL unset.
const DefaultTTL = 24 * time.Hour

// Key prefixes of the two cached families.
const (
	RecommendationsPrefix = "recommendations:"
	VisualizationPrefix   = "viz:"
)

// Store is a byte-valued cache with per-entry TTL.
type Store interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. A non-positive ttl uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and returns how many.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Backend returns the backend name.
	Backend() string

	Close() error
}

// New creates the store selected by cfg. It returns nil, nil when caching is
// disabled; callers treat a nil Store as "no cache".
func New(cfg *config.CacheConfig) (Store, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(ttl), nil
	case BackendRedis, "":
		return NewRedisStore(RedisOptions{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DefaultTTL:  ttl,
			DialTimeout: cfg.DialTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// RecommendationsKey is the key of a movie's cached recommendations.
func RecommendationsKey(movieID int64) string {
	return RecommendationsPrefix + strconv.FormatInt(movieID, 10)
}

// VisualizationKey is the key of a movie's cached visualization of kind.
func VisualizationKey(movieID int64, kind string) string {
	return VisualizationPrefix + strconv.FormatInt(movieID, 10) + ":" + kind
}

// GetJSON decodes the cached value of key into dest. A nil store, a miss and
// an undecodable value all report false.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) (bool, error) {
	if s == nil {
		return false, nil
	}
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key. A nil store is a no-op.
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
