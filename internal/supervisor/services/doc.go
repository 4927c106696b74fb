// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services adapts Marquee components to suture.Service.

  - HTTPServerService: ListenAndServe/Shutdown to Serve, with a drain hook
    that runs before the listener closes
  - ImportService: optional startup import; cancels a running import on shutdown
  - ProgressGCService: periodic value log GC of the Badger progress store
  - WebSocketHubService: runs the import progress hub

Every service returns ctx.Err() on a clean shutdown and implements
fmt.Stringer so supervisor events name it.
*/
package services
