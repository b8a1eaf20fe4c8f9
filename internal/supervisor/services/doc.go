// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package services provides suture.Service wrappers for destination components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve
  - http.ErrServerClosed is treated as a clean stop

Event Pipeline (PipelineService):
  - Wraps the NATS components (router, subscribers, publisher, connection,
    embedded server) behind a Start/Shutdown lifecycle
  - Start runs the Watermill router; Shutdown drains it and closes the rest
    within the configured timeout

Services return ctx.Err() on cancellation so the supervisor can tell a
requested stop from a crash.
*/
package services
