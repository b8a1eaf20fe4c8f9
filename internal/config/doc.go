// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package config provides centralized configuration management for the Adobe
destination service.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/adobe-destination/config.yaml
  - Environment variables mapped explicitly by envTransformFunc

Unmapped environment variables are ignored.

# Sections

  - destination: app id, media tracking server, sink mode (log, bus, recorder),
    outbound subject prefix, seed settings file
  - nats: embedded server, JetStream stream, consumers, router middleware,
    redelivery dedupe, publish circuit breaker
  - store: Badger settings snapshot
  - server: HTTP listener, timeouts, ingest rate limit
  - logging: level, format, caller
  - supervisor: suture failure threshold, decay, backoff, shutdown timeout

# Environment Variables

Destination:
  - ADOBE_APP_ID, ADOBE_TRACKING_SERVER, ADOBE_SINK, ADOBE_SUBJECT_PREFIX
  - ADOBE_SETTINGS_FILE, ADOBE_RECORDER_LIMIT, ADOBE_EMIT_TIMEOUT

NATS:
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR
  - NATS_MAX_MEMORY, NATS_MAX_STORE, NATS_STREAM_NAME, NATS_STREAM_RETENTION
  - NATS_DUPLICATE_WINDOW, NATS_DURABLE_NAME, NATS_QUEUE_GROUP
  - NATS_ACK_WAIT, NATS_MAX_DELIVER
  - NATS_ROUTER_RETRY_COUNT, NATS_ROUTER_RETRY_INTERVAL, NATS_ROUTER_RETRY_MAX_INTERVAL
  - NATS_ROUTER_THROTTLE, NATS_ROUTER_POISON_ENABLED, NATS_ROUTER_POISON_TOPIC
  - NATS_ROUTER_CLOSE_TIMEOUT, NATS_DEDUPE_TTL, NATS_DEDUPE_SIZE
  - NATS_BREAKER_THRESHOLD, NATS_BREAKER_TIMEOUT

Store:
  - STORE_ENABLED, STORE_PATH

HTTP Server:
  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Supervisor:
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY
  - SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT

# Validation

Validate runs the struct tags through the shared validator (internal/validation)
and then the cross-field checks: bus sink mode requires NATS, JetStream
limits apply only to the embedded server, the retry backoff must be ordered,
and the poison topic must be a plain subject.

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
*/
package config
