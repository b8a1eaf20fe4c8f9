// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package supervisor provides process supervision for the destination using
suture v4.

The tree isolates the event pipeline from the HTTP API:

	RootSupervisor ("adobe-destination")
	├── MessagingSupervisor ("messaging-layer")
	│   └── PipelineService (when NATS is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the pipeline restarts only the messaging layer; the API keeps
answering health and video session queries meanwhile. Supervisor events are
logged through sutureslog on top of the zerolog slog adapter.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFromConfig(cfg.Supervisor))
	tree.AddMessagingService(services.NewPipelineService(pipeline, timeout))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout))
	err = tree.Serve(ctx)
*/
package supervisor
