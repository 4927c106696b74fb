// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	movieimport "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/websocket"
)

// Compile-time interface checks.
var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*ImportService)(nil)
	_ suture.Service = (*ProgressGCService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ fmt.Stringer   = (*HTTPServerService)(nil)

	_ Importer         = (*movieimport.Importer)(nil)
	_ GarbageCollector = (*movieimport.BadgerProgress)(nil)
	_ ContextHub       = (*websocket.Hub)(nil)
)

// mockHTTPServer blocks in ListenAndServe until Shutdown, unless listenErr is set.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("graceful shutdown runs hook first", func(t *testing.T) {
		server := newMockHTTPServer()
		var order []string
		svc := NewHTTPServerService(server, time.Second).OnShutdown(func(ctx context.Context) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("shutdown hook context has no deadline")
			}
			order = append(order, fmt.Sprintf("hook:%d", server.shutdownCount.Load()))
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		<-server.started
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if server.shutdownCount.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdownCount.Load())
		}
		if len(order) != 1 || order[0] != "hook:0" {
			t.Errorf("hook ran %v, want once before Shutdown", order)
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		server := newMockHTTPServer()
		server.listenErr = errors.New("address already in use")
		svc := NewHTTPServerService(server, time.Second)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, server.listenErr) {
			t.Errorf("Serve() = %v, want wrapped listen error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		server := newMockHTTPServer()
		server.shutdownErr = errors.New("deadline exceeded")
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		<-server.started
		cancel()

		if err := <-done; !errors.Is(err, server.shutdownErr) {
			t.Errorf("Serve() = %v, want shutdown error", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		svc := NewHTTPServerService(newMockHTTPServer(), 0)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q", svc.String())
		}
	})
}

// stubImporter blocks Run until its context is canceled or Stop is called.
type stubImporter struct {
	mu      sync.Mutex
	runs    []string
	running bool
	stops   int
	runErr  error
	block   bool
	stopCh  chan struct{}
	started chan struct{}
}

func newStubImporter(block bool) *stubImporter {
	return &stubImporter{block: block, stopCh: make(chan struct{}), started: make(chan struct{}, 1)}
}

func (s *stubImporter) Run(ctx context.Context, path string) (*movieimport.RunStats, error) {
	s.mu.Lock()
	s.runs = append(s.runs, path)
	s.running = true
	s.mu.Unlock()
	s.started <- struct{}{}

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.block {
		select {
		case <-ctx.Done():
			return &movieimport.RunStats{Status: movieimport.StatusCancelled}, ctx.Err()
		case <-s.stopCh:
			return &movieimport.RunStats{Status: movieimport.StatusCancelled}, context.Canceled
		}
	}
	if s.runErr != nil {
		return &movieimport.RunStats{Status: movieimport.StatusFailed}, s.runErr
	}
	return &movieimport.RunStats{Status: movieimport.StatusCompleted}, nil
}

func (s *stubImporter) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stubImporter) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	if !s.running {
		return movieimport.ErrNoImportRunning
	}
	close(s.stopCh)
	return nil
}

func (s *stubImporter) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func TestImportService(t *testing.T) {
	t.Run("startup import runs once", func(t *testing.T) {
		imp := newStubImporter(false)
		imp.runErr = errors.New("bad catalog")
		svc := NewImportService(imp, "/data/movies.csv")

		for i := 0; i < 2; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()
			if i == 0 {
				<-imp.started
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		}

		if imp.runCount() != 1 {
			t.Errorf("runs = %d, want 1 across restarts", imp.runCount())
		}
		if imp.runs[0] != "/data/movies.csv" {
			t.Errorf("path = %q", imp.runs[0])
		}
	})

	t.Run("completion hook runs after a completed startup import", func(t *testing.T) {
		imp := newStubImporter(false)
		completed := make(chan struct{}, 1)
		svc := NewImportService(imp, "/data/movies.csv").OnComplete(func(context.Context) {
			completed <- struct{}{}
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		select {
		case <-completed:
		case <-time.After(2 * time.Second):
			t.Fatal("completion hook not called")
		}
		cancel()
		<-done
	})

	t.Run("on-demand mode does not import", func(t *testing.T) {
		imp := newStubImporter(false)
		svc := NewImportService(imp, "")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
		if imp.runCount() != 0 {
			t.Errorf("runs = %d, want 0", imp.runCount())
		}
		if svc.String() != "catalog-import" {
			t.Errorf("String() = %q", svc.String())
		}
	})

	t.Run("shutdown cancels an API started import", func(t *testing.T) {
		imp := newStubImporter(true)
		svc := NewImportService(imp, "")

		runDone := make(chan error, 1)
		go func() {
			_, err := imp.Run(context.Background(), "/data/api.csv")
			runDone <- err
		}()
		<-imp.started

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}

		select {
		case err := <-runDone:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("run error = %v, want canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("running import was not stopped")
		}
	})
}

type countingGC struct {
	calls atomic.Int32
	err   error
}

func (g *countingGC) RunGC() error {
	g.calls.Add(1)
	return g.err
}

func TestProgressGCService(t *testing.T) {
	for _, gcErr := range []error{nil, errors.New("disk full")} {
		gc := &countingGC{err: gcErr}
		svc := NewProgressGCService(gc, 5*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		deadline := time.Now().Add(2 * time.Second)
		for gc.calls.Load() < 3 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if gc.calls.Load() < 3 {
			t.Errorf("GC runs = %d with err %v, want the loop to keep ticking", gc.calls.Load(), gcErr)
		}
	}

	if svc := NewProgressGCService(&countingGC{}, 0); svc.interval != DefaultGCInterval {
		t.Errorf("interval = %v, want default", svc.interval)
	}
}

func TestWebSocketHubService(t *testing.T) {
	svc := NewWebSocketHubService(websocket.NewHub())
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
