// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package eventprocessor carries destination events over NATS JetStream with
Watermill.

# Subjects

	destination.events.<type>   inbound envelopes (identify, track, screen, reset)
	destination.settings        settings updates
	adobe.sdk.<op>              outbound SDK calls when the bus sink is selected
	destination.poison          messages that failed after all retries

All subjects live in one stream (DESTINATION by default) created by
StreamInitializer before any publisher or subscriber starts.

# Components

  - EmbeddedServer: in-process nats-server for single-node runs and tests
  - Publisher: Watermill NATS publisher behind a gobreaker circuit breaker
  - Subscriber: durable JetStream subscriber bound to the stream
  - Router: Watermill router with poison queue, retry, throttle and recoverer
  - DestinationHandler: decodes envelopes, drops redeliveries and calls the plugin
  - BusIngestor / DirectIngestor: how the HTTP API hands work to the pipeline
  - HealthChecker: aggregates component health for /health

# Ordering

The video session tracker is a state machine, so events must reach the plugin
in publish order. The default subscriber runs a single worker with
MaxAckPending=1. Raising either trades ordering for throughput.

# Example

	router, _ := eventprocessor.NewRouter(&routerCfg, pub.WatermillPublisher(), nil)
	handler, _ := eventprocessor.NewDestinationHandler(plugin, eventprocessor.DefaultHandlerConfig())
	router.AddConsumerHandler(eventprocessor.HandlerEvents, eventprocessor.TopicEventsAll, eventsSub, handler.HandleEvent)
	router.AddConsumerHandler(eventprocessor.HandlerSettings, eventprocessor.TopicSettings, settingsSub, handler.HandleSettings)
	go router.Run(ctx)
*/
package eventprocessor
