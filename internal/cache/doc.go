// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides the fast key-value cache in front of recommendations
and visualizations.

Two backends implement Store:

  - RedisStore: Redis through go-redis, guarded by a circuit breaker. While
    the breaker is open every lookup is a miss and every write is dropped,
    so the API keeps serving from the database.
  - MemoryStore: a thread-safe in-process TTL map, used when Redis is not
    configured and in tests.

Values are opaque bytes; GetJSON and SetJSON encode with goccy/go-json.

# Keys

	recommendations:{movie_id}   top-N similar movies
	viz:{movie_id}:{type}        visualization payloads

Clearing visualizations deletes every key under VisualizationPrefix.

# Usage

	store, err := cache.New(&cfg.Cache)
	if err != nil {
	    return err
	}
	defer store.Close()

	var recs []models.SimilarMovie
	if ok, _ := cache.GetJSON(ctx, store, cache.RecommendationsKey(id), &recs); !ok {
	    // load from the database, then cache.SetJSON(...)
	}
*/
package cache
