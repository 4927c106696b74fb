// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package websocket streams import progress to connected clients.

A Hub owns the set of connected clients and fans messages out to them. It
runs under the supervisor as the "websocket-hub" service:

	hub := websocket.NewHub()
	tree.AddAPIService(services.NewWebSocketHubService(hub))

ProgressBroadcaster wraps the importer's ProgressTracker. Every snapshot the
importer saves (stage transitions, similarity batches, the final status) is
also broadcast as an "import_progress" message, so a client connected to
GET /api/ws sees the same RunStats that GET /api/import/status returns.

# Message Format

	{"type": "import_progress", "data": {"run_id": "...", "status": "running", "stage": "...", ...}}

Clients may send {"type": "ping"} and receive {"type": "pong"}.

# Delivery

Broadcasts never block the importer. When the broadcast queue is full the
message is dropped; when a client's send buffer is full the client is
disconnected. Clients are served in connection order.
*/
package websocket
