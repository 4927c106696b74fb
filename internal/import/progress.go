// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package movieimport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	// progressKey is the BadgerDB key holding the stats of the last run.
	progressKey = "import:catalog:last_run"
)

// ProgressTracker persists run stats.
type ProgressTracker interface {
	// Save stores the stats of the current run.
	Save(ctx context.Context, stats *RunStats) error

	// Load returns the last saved stats, or nil if none were saved.
	Load(ctx context.Context) (*RunStats, error)

	// Clear removes the saved stats.
	Clear(ctx context.Context) error
}

// BadgerProgress implements ProgressTracker using BadgerDB so the last run
// survives restarts.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress creates a tracker on an open BadgerDB.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a BadgerDB at dir for progress only.
// The caller closes the returned DB.
func OpenBadgerProgress(dir string) (*BadgerProgress, *badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open progress store %s: %w", dir, err)
	}
	return NewBadgerProgress(db), db, nil
}

// Save persists the stats to BadgerDB.
func (p *BadgerProgress) Save(_ context.Context, stats *RunStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(progressKey), data)
	})
}

// Load retrieves the last saved stats from BadgerDB.
// Returns nil, nil if nothing has been saved.
func (p *BadgerProgress) Load(_ context.Context) (*RunStats, error) {
	var stats RunStats
	found := false

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})

	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes saved stats from BadgerDB.
func (p *BadgerProgress) Clear(_ context.Context) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// gcDiscardRatio is the stale fraction a value log file needs before it is rewritten.
const gcDiscardRatio = 0.5

// RunGC reclaims value log space until nothing more can be rewritten.
// In-memory stores have no value log and return nil.
func (p *BadgerProgress) RunGC() error {
	for {
		err := p.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run progress store GC: %w", err)
		}
	}
}

// InMemoryProgress implements ProgressTracker in memory.
// This is useful for testing or when persistence is not required.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats *RunStats
	saves int
}

// NewInMemoryProgress creates a new in-memory progress tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{}
}

// Save stores a copy of the stats.
func (p *InMemoryProgress) Save(_ context.Context, stats *RunStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	statsCopy := *stats
	p.stats = &statsCopy
	p.saves++
	return nil
}

// Load returns a copy of the stored stats.
func (p *InMemoryProgress) Load(_ context.Context) (*RunStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stats == nil {
		return nil, nil
	}
	statsCopy := *p.stats
	return &statsCopy, nil
}

// Clear removes the stored stats.
func (p *InMemoryProgress) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = nil
	return nil
}

// Saves returns how many times Save was called.
func (p *InMemoryProgress) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
