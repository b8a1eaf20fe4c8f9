// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package config

import (
	"fmt"
	"time"
)

// Sink modes select where the plugin's analytics calls go.
const (
	SinkLog      = "log"
	SinkBus      = "bus"
	SinkRecorder = "recorder"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Destination: plugin identity, sink mode, initial settings file
//  2. Infrastructure: NATS JetStream bus, settings store, HTTP server
//  3. Operations: logging and the supervisor tree
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	addr := cfg.Server.Address()
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Destination DestinationConfig `koanf:"destination"`
	NATS        NATSConfig        `koanf:"nats"`
	Store       StoreConfig       `koanf:"store"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Supervisor  SupervisorConfig  `koanf:"supervisor"`
}

// DestinationConfig describes the Adobe destination itself.
type DestinationConfig struct {
	// AppID identifies the host application in logs and sink calls.
	AppID string `koanf:"app_id" validate:"required,max=128"`

	// TrackingServer is the media collection host (e.g. "example.hb.omtrdc.net").
	// Empty disables video tracking: the media tracker cannot be created.
	TrackingServer string `koanf:"tracking_server" validate:"omitempty,hostname|hostname_port"`

	// Sink selects where analytics calls go: log, bus or recorder.
	Sink string `koanf:"sink" validate:"required,oneof=log bus recorder"`

	// SubjectPrefix prefixes outbound calls in bus mode: <prefix>.<op>.
	SubjectPrefix string `koanf:"subject_prefix" validate:"required,subject_token"`

	// SettingsFile seeds the initial settings (YAML or JSON) when the store
	// has no snapshot.
	SettingsFile string `koanf:"settings_file"`

	// RecorderLimit bounds the calls kept by the recorder sink (0 = default).
	RecorderLimit int `koanf:"recorder_limit" validate:"gte=0"`

	// EmitTimeout bounds delivery of a single sink call.
	EmitTimeout time.Duration `koanf:"emit_timeout" validate:"gte=0"`
}

// NATSConfig holds the event bus settings.
type NATSConfig struct {
	// Enabled routes ingested events through JetStream. When false the HTTP
	// API calls the plugin directly and bus sink mode is unavailable.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server.
	// If false, expects external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the maximum memory for JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the maximum disk storage for JetStream in bytes.
	MaxStore int64 `koanf:"max_store"`

	// StreamName is the JetStream stream holding destination subjects.
	StreamName string `koanf:"stream_name" validate:"required,subject_token"`

	// StreamRetention is how long messages stay in the stream.
	StreamRetention time.Duration `koanf:"stream_retention"`

	// DuplicateWindow is JetStream's publish-side dedupe window.
	DuplicateWindow time.Duration `koanf:"duplicate_window"`

	// DurableName prefixes the consumer durable names.
	DurableName string `koanf:"durable_name" validate:"required,subject_token"`

	// QueueGroup prefixes the consumer queue groups.
	QueueGroup string `koanf:"queue_group" validate:"required,subject_token"`

	// AckWait is how long JetStream waits for an ack before redelivering.
	AckWait time.Duration `koanf:"ack_wait"`

	// MaxDeliver caps redeliveries of one message.
	MaxDeliver int `koanf:"max_deliver"`

	// Router configuration (Watermill Router middleware stack)

	// RouterRetryCount is the maximum number of retries for failed messages.
	RouterRetryCount int `koanf:"router_retry_count"`

	// RouterRetryInitialInterval is the initial backoff interval for retries.
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`

	// RouterRetryMaxInterval caps the retry backoff.
	RouterRetryMaxInterval time.Duration `koanf:"router_retry_max_interval"`

	// RouterThrottlePerSecond limits messages processed per second (0 = unlimited).
	RouterThrottlePerSecond int `koanf:"router_throttle_per_second"`

	// RouterPoisonQueueEnabled routes permanently failed messages to a poison queue.
	RouterPoisonQueueEnabled bool `koanf:"router_poison_queue_enabled"`

	// RouterPoisonQueueTopic is the topic for permanently failed messages.
	RouterPoisonQueueTopic string `koanf:"router_poison_queue_topic"`

	// RouterCloseTimeout is the maximum time to wait for graceful router shutdown.
	RouterCloseTimeout time.Duration `koanf:"router_close_timeout"`

	// DedupeTTL is how long a handled messageId is remembered.
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`

	// DedupeSize bounds the number of remembered messageIds.
	DedupeSize int `koanf:"dedupe_size"`

	// BreakerFailureThreshold trips the publish circuit breaker after this
	// many consecutive failures.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// StoreConfig configures the settings snapshot store.
type StoreConfig struct {
	// Enabled persists the accepted initial settings in Badger.
	Enabled bool `koanf:"enabled"`

	// Path is the Badger directory.
	Path string `koanf:"path"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitReqs requests per RateLimitWindow are allowed per client IP
	// on the ingest routes.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Address returns host:port for http.Server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller adds file:line to log entries.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig holds suture tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration with the following precedence (highest last):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
