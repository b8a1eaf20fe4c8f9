// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package api provides the HTTP surface of the destination.

Routes:

  - POST /v1/events: validate an event envelope and hand it to the ingestor
  - POST /v1/settings: offer a settings update to the plugin
  - GET /v1/video/session: state of the live media session
  - GET /v1/debug/calls: calls captured by the recorder sink
  - GET /health: component health from the event processor
  - GET /metrics: Prometheus exposition

The ingest routes are rate limited per client IP with go-chi/httprate. With
the bus enabled an accepted event is reported as "queued"; without it the
plugin runs in-process and the response carries the plugin's outcome
(sent, dropped or ignored).

All JSON responses share the models.APIResponse envelope:

	{
	  "status": "success",
	  "data": {"message_id": "...", "accepted": true, "outcome": "queued"},
	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"}
	}
*/
package api
