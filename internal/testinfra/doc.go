// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag and uses
// testcontainers-go:
//
//	func TestRedis(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, redis) })
//
//	    store := cache.NewRedisStore(cache.RedisOptions{Addr: redis.Addr})
//	    // ...
//	}
//
// Run with:
//
//	go test -tags integration ./...
package testinfra
