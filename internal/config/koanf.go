// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/adobe-destination/config.yaml",
	"/etc/adobe-destination/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Destination: DestinationConfig{
			AppID:          "adobe-destination",
			TrackingServer: "",
			Sink:           SinkLog, // dry run until a real sink is chosen
			SubjectPrefix:  "adobe.sdk",
			SettingsFile:   "",
			RecorderLimit:  1000,
			EmitTimeout:    5 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:         true,
			URL:             "nats://127.0.0.1:4222",
			EmbeddedServer:  true,
			StoreDir:        "/data/nats/jetstream",
			MaxMemory:       256 << 20, // 256MB
			MaxStore:        1 << 30,   // 1GB
			StreamName:      "DESTINATION",
			StreamRetention: 24 * time.Hour,
			DuplicateWindow: 2 * time.Minute,
			DurableName:     "adobe-destination",
			QueueGroup:      "adobe-destination",
			AckWait:         30 * time.Second,
			MaxDeliver:      5,
			// Router defaults (Watermill Router middleware)
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 500 * time.Millisecond,
			RouterRetryMaxInterval:     10 * time.Second,
			RouterThrottlePerSecond:    0, // Unlimited
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "destination.poison",
			RouterCloseTimeout:         30 * time.Second,
			DedupeTTL:                  5 * time.Minute,
			DedupeSize:                 10000,
			BreakerFailureThreshold:    5,
			BreakerTimeout:             10 * time.Second,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "/data/settings",
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitReqs:     600,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// ADOBE_TRACKING_SERVER -> destination.tracking_server
	// NATS_URL -> nats.url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Destination mappings
	"adobe_app_id":          "destination.app_id",
	"adobe_tracking_server": "destination.tracking_server",
	"adobe_sink":            "destination.sink",
	"adobe_subject_prefix":  "destination.subject_prefix",
	"adobe_settings_file":   "destination.settings_file",
	"adobe_recorder_limit":  "destination.recorder_limit",
	"adobe_emit_timeout":    "destination.emit_timeout",

	// NATS mappings
	"nats_enabled":          "nats.enabled",
	"nats_url":              "nats.url",
	"nats_embedded":         "nats.embedded_server",
	"nats_store_dir":        "nats.store_dir",
	"nats_max_memory":       "nats.max_memory",
	"nats_max_store":        "nats.max_store",
	"nats_stream_name":      "nats.stream_name",
	"nats_stream_retention": "nats.stream_retention",
	"nats_duplicate_window": "nats.duplicate_window",
	"nats_durable_name":     "nats.durable_name",
	"nats_queue_group":      "nats.queue_group",
	"nats_ack_wait":         "nats.ack_wait",
	"nats_max_deliver":      "nats.max_deliver",
	// Router configuration environment mappings
	"nats_router_retry_count":        "nats.router_retry_count",
	"nats_router_retry_interval":     "nats.router_retry_initial_interval",
	"nats_router_retry_max_interval": "nats.router_retry_max_interval",
	"nats_router_throttle":           "nats.router_throttle_per_second",
	"nats_router_poison_enabled":     "nats.router_poison_queue_enabled",
	"nats_router_poison_topic":       "nats.router_poison_queue_topic",
	"nats_router_close_timeout":      "nats.router_close_timeout",
	"nats_dedupe_ttl":                "nats.dedupe_ttl",
	"nats_dedupe_size":               "nats.dedupe_size",
	"nats_breaker_threshold":         "nats.breaker_failure_threshold",
	"nats_breaker_timeout":           "nats.breaker_timeout",

	// Store mappings
	"store_enabled": "store.enabled",
	"store_path":    "store.path",

	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor mappings
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - ADOBE_TRACKING_SERVER -> destination.tracking_server
//   - NATS_URL -> nats.url
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped variables are skipped so the process environment cannot
	// pollute the config.
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronizing access to configuration
// reloaded from the callback.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
