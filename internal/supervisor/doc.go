// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs the long-lived parts of `marquee serve` under a
suture v4 supervisor tree.

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── ProgressGCService (Badger progress store only)
	├── PipelineSupervisor ("pipeline-layer")
	│   └── ImportService (startup import, cancels runs on shutdown)
	└── APISupervisor ("api-layer")
	    ├── WebSocketHubService (import progress stream)
	    └── HTTPServerService

Each layer restarts independently: a crash in the progress store GC loop
does not take the HTTP server down. Supervisor events are logged through
sutureslog on the slog adapter of the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
