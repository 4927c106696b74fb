// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/websocket"
)

// shutdownTimeout bounds draining the HTTP server and background imports.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the recommendation API",
	Long:    "Serves the similarity graph over HTTP under a supervisor tree. Imports are triggered with POST /api/import, or at startup with IMPORT_RUN_ON_STARTUP=true.",
	PreRunE: loadConfig,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logging.Info().Str("version", version).Msg("Starting Marquee with supervisor tree")

	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	hub := websocket.NewHub()
	s.progress = websocket.NewProgressBroadcaster(s.progress, hub)

	importer := newImporter(cfg, s)
	handler := api.NewHandler(s.db, s.cache, importer, cfg)
	handler.SetHub(hub)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})
	if err != nil {
		return err
	}

	if s.badger != nil {
		tree.AddDataService(services.NewProgressGCService(s.badger, services.DefaultGCInterval))
	}

	startupPath := ""
	if cfg.Import.RunOnStartup {
		startupPath = cfg.Import.CatalogPath
	}
	tree.AddPipelineService(services.NewImportService(importer, startupPath).OnComplete(func(ctx context.Context) {
		api.InvalidateDerived(ctx, s.db, s.cache)
	}))

	tree.AddAPIService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout).OnShutdown(func(ctx context.Context) {
		if importer.IsRunning() {
			_ = importer.Stop()
		}
		waitWithContext(ctx, handler.Wait)
	}))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Marquee stopped gracefully")
	return nil
}

// waitWithContext runs wait and returns when it does or when ctx is done.
func waitWithContext(ctx context.Context, wait func()) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn().Msg("Background imports did not finish before the shutdown deadline")
	}
}
