// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// breakerName labels the Redis circuit breaker in metrics and logs.
const breakerName = "redis-cache"

// scanCount is the COUNT hint of each SCAN page in DeletePrefix.
const scanCount = 500

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DefaultTTL  time.Duration
	DialTimeout time.Duration

	// Breaker overrides the circuit breaker settings. Zero values use the
	// defaults of NewRedisStore.
	BreakerTimeout  time.Duration
	BreakerMinCalls uint32
}

// RedisStore implements Store on Redis. Calls go through a circuit breaker:
// while it is open, Get reports a miss and Set/Delete are dropped.
type RedisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	ttl    time.Duration
}

type getResult struct {
	data []byte
	ok   bool
}

// NewRedisStore creates a store. The connection is established lazily;
// use Ping to check it.
//
// Circuit breaker configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewRedisStore(opts RedisOptions) *RedisStore {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 2 * time.Second
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.BreakerMinCalls == 0 {
		opts.BreakerMinCalls = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.DialTimeout,
		WriteTimeout: opts.DialTimeout,
	})

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	minCalls := opts.BreakerMinCalls
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minCalls {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening cache circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &RedisStore{client: client, cb: cb, ttl: opts.DefaultTTL}
}

// execute runs fn through the breaker. rejected is true when the breaker
// refused the call.
func (s *RedisStore) execute(fn func() (interface{}, error)) (result interface{}, rejected bool, err error) {
	result, err = s.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return nil, true, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).
			Set(float64(s.cb.Counts().ConsecutiveFailures))
	}
	return result, false, err
}

// Get reads key. A missing key and an open breaker are both misses.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, rejected, err := s.execute(func() (interface{}, error) {
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return getResult{}, nil
		}
		if err != nil {
			return nil, err
		}
		return getResult{data: data, ok: true}, nil
	})
	if rejected {
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	r := res.(getResult)
	return r.data, r.ok, nil
}

// Set writes key with ttl, or the default TTL when ttl is not positive.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	_, rejected, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	if rejected {
		return nil
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, rejected, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	if rejected {
		return nil
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeletePrefix removes keys matching prefix* using SCAN so the server is
// never blocked by KEYS.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	res, rejected, err := s.execute(func() (interface{}, error) {
		deleted := 0
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", scanCount).Result()
			if err != nil {
				return deleted, err
			}
			if len(keys) > 0 {
				n, err := s.client.Del(ctx, keys...).Result()
				if err != nil {
					return deleted, err
				}
				deleted += int(n)
			}
			if next == 0 {
				return deleted, nil
			}
			cursor = next
		}
	})
	if rejected {
		return 0, fmt.Errorf("redis unavailable: %w", err)
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("delete_prefix").Inc()
		n, _ := res.(int)
		return n, fmt.Errorf("redis delete %s*: %w", prefix, err)
	}
	return res.(int), nil
}

// Ping checks the connection. It bypasses the breaker so a status check can
// observe a recovered server before the breaker half-opens.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Backend returns "redis".
func (s *RedisStore) Backend() string { return BackendRedis }

// BreakerState returns the current circuit breaker state.
func (s *RedisStore) BreakerState() gobreaker.State {
	return s.cb.State()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

var _ Store = (*RedisStore)(nil)
