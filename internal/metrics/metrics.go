// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the destination:
// - event intake and mapping outcomes
// - calls issued against the analytics sink
// - video session state transitions
// - bus consumption and publishing
// - HTTP surface

var (
	// Destination Metrics
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "destination_events_received_total",
			Help: "Total number of events handed to the destination plugin",
		},
		[]string{"type"}, // identify, track, screen, reset
	)

	EventOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "destination_event_outcomes_total",
			Help: "Total number of plugin outcomes by status and reason",
		},
		[]string{"status", "reason"}, // status: sent, dropped, ignored
	)

	EventMappingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "destination_event_mapping_duration_seconds",
			Help:    "Time spent mapping one event onto sink calls",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		},
	)

	SettingsUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "destination_settings_updates_total",
			Help: "Total number of settings updates by type and result",
		},
		[]string{"type", "result"}, // result: accepted, ignored
	)

	// Sink Metrics
	SinkCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adobe_sink_calls_total",
			Help: "Total number of calls issued against the analytics sink",
		},
		[]string{"op"},
	)

	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adobe_sink_errors_total",
			Help: "Total number of sink calls that could not be delivered",
		},
		[]string{"op"},
	)

	// Video Metrics
	VideoTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_session_transitions_total",
			Help: "Total number of video session state transitions",
		},
		[]string{"from", "to"},
	)

	VideoSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_sessions_active",
			Help: "Whether a video session is currently live (0 or 1)",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Event Processing Metrics
	NATSMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
		[]string{"topic"},
	)

	NATSPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_failures_total",
			Help: "Total number of failed NATS publishes",
		},
		[]string{"topic"},
	)

	NATSMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
		[]string{"handler"},
	)

	NATSMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
		[]string{"handler"},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of redelivered messages skipped by message id",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
		[]string{"handler"},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Store Metrics
	SettingsStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_store_operations_total",
			Help: "Total number of settings store operations",
		},
		[]string{"operation", "result"}, // operation: save, load
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAppInfo publishes the running version once at boot.
func RecordAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordEventReceived records an event handed to the plugin
func RecordEventReceived(eventType string) {
	EventsReceived.WithLabelValues(eventType).Inc()
}

// RecordOutcome records the result of one plugin entry point
func RecordOutcome(status, reason string, duration time.Duration) {
	if reason == "" {
		reason = "none"
	}
	EventOutcomes.WithLabelValues(status, reason).Inc()
	EventMappingDuration.Observe(duration.Seconds())
}

// RecordSettingsUpdate records a settings update and whether it was applied
func RecordSettingsUpdate(updateType string, accepted bool) {
	result := "ignored"
	if accepted {
		result = "accepted"
	}
	SettingsUpdates.WithLabelValues(updateType, result).Inc()
}

// RecordSinkCall records a call issued against the analytics sink
func RecordSinkCall(op string) {
	SinkCalls.WithLabelValues(op).Inc()
}

// RecordSinkError records a sink call that could not be delivered
func RecordSinkError(op string) {
	SinkErrors.WithLabelValues(op).Inc()
}

// RecordVideoTransition records a video session state change
func RecordVideoTransition(from, to string) {
	VideoTransitions.WithLabelValues(from, to).Inc()
	if to == "idle" {
		VideoSessionsActive.Set(0)
	} else {
		VideoSessionsActive.Set(1)
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCircuitBreakerState records the current state of a named breaker
func RecordCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition records a breaker state change
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordCircuitBreakerRequest records a request outcome through a breaker
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish(topic string) {
	NATSMessagesPublished.WithLabelValues(topic).Inc()
}

// RecordNATSPublishFailure records a failed publish
func RecordNATSPublishFailure(topic string) {
	NATSPublishFailures.WithLabelValues(topic).Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume(handler string) {
	NATSMessagesConsumed.WithLabelValues(handler).Inc()
}

// RecordNATSProcessed records a message being successfully processed
func RecordNATSProcessed(handler string, duration time.Duration) {
	NATSMessagesProcessed.WithLabelValues(handler).Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSDeduplicated records a message being skipped due to deduplication
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed(handler string) {
	NATSMessagesParseFailed.WithLabelValues(handler).Inc()
}

// RecordSettingsStore records a settings store operation
func RecordSettingsStore(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SettingsStoreOperations.WithLabelValues(operation, result).Inc()
}
