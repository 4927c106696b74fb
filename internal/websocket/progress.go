// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"

	movieimport "github.com/tomtom215/marquee/internal/import"
)

// Broadcaster queues a message for every connected client. *Hub satisfies it.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// ProgressBroadcaster is a movieimport.ProgressTracker that forwards to
// another tracker and broadcasts every saved snapshot.
type ProgressBroadcaster struct {
	next movieimport.ProgressTracker
	out  Broadcaster
}

var _ movieimport.ProgressTracker = (*ProgressBroadcaster)(nil)

// NewProgressBroadcaster wraps next. next may be nil, in which case Load
// always returns nil and only broadcasting happens.
func NewProgressBroadcaster(next movieimport.ProgressTracker, out Broadcaster) *ProgressBroadcaster {
	return &ProgressBroadcaster{next: next, out: out}
}

// Save persists stats and broadcasts a copy. The snapshot is broadcast even
// when persisting fails.
func (p *ProgressBroadcaster) Save(ctx context.Context, stats *movieimport.RunStats) error {
	if stats != nil && p.out != nil {
		snapshot := *stats
		p.out.Broadcast(MessageTypeImportProgress, &snapshot)
	}
	if p.next == nil {
		return nil
	}
	return p.next.Save(ctx, stats)
}

// Load returns the last saved stats from the wrapped tracker.
func (p *ProgressBroadcaster) Load(ctx context.Context) (*movieimport.RunStats, error) {
	if p.next == nil {
		return nil, nil
	}
	return p.next.Load(ctx)
}

// Clear clears the wrapped tracker.
func (p *ProgressBroadcaster) Clear(ctx context.Context) error {
	if p.next == nil {
		return nil
	}
	return p.next.Clear(ctx)
}
