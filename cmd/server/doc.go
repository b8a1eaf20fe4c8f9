// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package main is the entry point for the Adobe destination server.

The server accepts identify, track, screen and reset events over HTTP,
routes them through NATS JetStream and hands them to the Adobe Analytics
plugin, which translates them into Adobe Analytics and Media calls.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("adobe-destination")
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-pipeline (Watermill router, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Settings store: Badger snapshot of the accepted initial settings
 4. NATS: embedded server, JetStream stream, breaker-guarded publisher
 5. Sink: log, bus or in-memory recorder
 6. Plugin: Adobe Analytics plugin, initial settings replayed
 7. Ingest: bus publisher, or the handler called in-process without NATS
 8. Supervisor Tree: event pipeline and HTTP server

# Event Flow

With NATS enabled:

	POST /v1/events -> destination.events.<type> -> router -> plugin -> sink
	POST /v1/settings -> destination.settings -> router -> plugin (+ store)

Without NATS the HTTP handlers call the plugin directly and the response
carries the outcome (sent, dropped or ignored).

# Configuration

Common environment variables:

	ADOBE_SINK=log|bus|recorder
	ADOBE_TRACKING_SERVER=example.hb.omtrdc.net
	ADOBE_SETTINGS_FILE=/etc/adobe-destination/settings.yaml
	NATS_ENABLED=true
	STORE_PATH=/data/settings
	HTTP_PORT=8080
	LOG_LEVEL=info

See internal/config for the full list.

# Graceful Shutdown

SIGINT or SIGTERM cancels the supervisor tree. The HTTP server drains, the
router stops and its subscribers close, then the publisher, the NATS
connection, the embedded server and the settings store are closed in that
order.
*/
package main
