// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
updated through the Record* helpers so call sites never touch label ordering.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8088/metrics

# Available Metrics

Destination Metrics:
  - destination_events_received_total: Events handed to the plugin (counter)
    Labels: type
  - destination_event_outcomes_total: Plugin outcomes (counter)
    Labels: status (sent, dropped, ignored), reason
  - destination_event_mapping_duration_seconds: Mapping latency (histogram)
  - destination_settings_updates_total: Settings updates (counter)
    Labels: type (initial, refresh), result (accepted, ignored)

Sink Metrics:
  - adobe_sink_calls_total: Calls issued against the sink (counter)
    Labels: op (trackAction, trackState, sessionStart, ...)
  - adobe_sink_errors_total: Undeliverable sink calls (counter)
    Labels: op

Video Metrics:
  - video_session_transitions_total: State machine transitions (counter)
    Labels: from, to
  - video_sessions_active: 1 while a media session is live (gauge)

Bus Metrics:
  - nats_messages_published_total / nats_publish_failures_total
    Labels: topic
  - nats_messages_consumed_total / nats_messages_processed_total
    Labels: handler (events, settings)
  - nats_messages_deduplicated_total
  - nats_messages_parse_failed_total
  - nats_processing_duration_seconds

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total
    Labels: name, result
  - circuit_breaker_state_transitions_total
    Labels: name, from_state, to_state

# Usage Example

	start := time.Now()
	outcome := plugin.Handle(ctx, event)
	metrics.RecordOutcome(string(outcome.Status), outcome.Reason, time.Since(start))

# Testing

Tests read collector values with prometheus/testutil:

	before := testutil.ToFloat64(metrics.SinkCalls.WithLabelValues("trackAction"))
*/
package metrics
