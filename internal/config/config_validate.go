// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/adobe-destination/internal/validation"
)

// Validate checks that the configuration is complete and consistent.
// Struct tags are checked first through the shared validator, then the
// cross-field rules below.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateDestination,
		c.validateNATS,
		c.validateStore,
		c.validateServer,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateDestination validates the sink mode against the bus settings.
func (c *Config) validateDestination() error {
	if c.Destination.Sink == SinkBus && !c.NATS.Enabled {
		return fmt.Errorf("ADOBE_SINK=bus requires NATS_ENABLED=true")
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}

	return c.validateNATSLimits()
}

// NATS limit constants
const (
	natsMinMemory    = 16 * 1024 * 1024 // 16MB
	natsMinStore     = 64 * 1024 * 1024 // 64MB
	natsMinRetention = time.Minute
	natsMaxDeliver   = 100
	natsMinAckWait   = time.Second
)

// validateNATSLimits validates NATS storage and processing limits
func (c *Config) validateNATSLimits() error {
	validators := []func() error{
		c.validateNATSStorage,
		c.validateNATSRetention,
		c.validateNATSDelivery,
		c.validateNATSRouter,
		c.validateNATSDedupe,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateNATSStorage validates JetStream memory and disk limits. They only
// apply to the embedded server.
func (c *Config) validateNATSStorage() error {
	if !c.NATS.EmbeddedServer {
		return nil
	}
	if c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 16MB (16777216 bytes)")
	}
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 64MB (67108864 bytes)")
	}
	return nil
}

// validateNATSRetention validates stream retention and the dedupe window
func (c *Config) validateNATSRetention() error {
	if c.NATS.StreamRetention < natsMinRetention {
		return fmt.Errorf("NATS_STREAM_RETENTION must be at least 1m")
	}
	if c.NATS.DuplicateWindow <= 0 || c.NATS.DuplicateWindow > c.NATS.StreamRetention {
		return fmt.Errorf("NATS_DUPLICATE_WINDOW must be positive and no longer than the stream retention")
	}
	return nil
}

// validateNATSDelivery validates consumer ack and redelivery settings
func (c *Config) validateNATSDelivery() error {
	if c.NATS.AckWait < natsMinAckWait {
		return fmt.Errorf("NATS_ACK_WAIT must be at least 1s")
	}
	if c.NATS.MaxDeliver < 1 || c.NATS.MaxDeliver > natsMaxDeliver {
		return fmt.Errorf("NATS_MAX_DELIVER must be between 1 and 100")
	}
	return nil
}

// validateNATSRouter validates the router middleware settings
func (c *Config) validateNATSRouter() error {
	if c.NATS.RouterRetryCount < 0 {
		return fmt.Errorf("NATS_ROUTER_RETRY_COUNT must not be negative")
	}
	if c.NATS.RouterRetryInitialInterval <= 0 || c.NATS.RouterRetryMaxInterval < c.NATS.RouterRetryInitialInterval {
		return fmt.Errorf("NATS_ROUTER_RETRY_MAX_INTERVAL must be at least NATS_ROUTER_RETRY_INTERVAL")
	}
	if c.NATS.RouterThrottlePerSecond < 0 {
		return fmt.Errorf("NATS_ROUTER_THROTTLE must not be negative")
	}
	if c.NATS.RouterPoisonQueueEnabled {
		if verr := validation.GetValidator().Var(c.NATS.RouterPoisonQueueTopic, "required,subject_token"); verr != nil {
			return fmt.Errorf("NATS_ROUTER_POISON_TOPIC must be a plain subject: %q", c.NATS.RouterPoisonQueueTopic)
		}
	}
	return nil
}

// validateNATSDedupe validates the redelivery dedupe cache
func (c *Config) validateNATSDedupe() error {
	if c.NATS.DedupeSize < 1 {
		return fmt.Errorf("NATS_DEDUPE_SIZE must be at least 1")
	}
	if c.NATS.DedupeTTL <= 0 {
		return fmt.Errorf("NATS_DEDUPE_TTL must be positive")
	}
	return nil
}

// validateStore validates the settings store (only if enabled)
func (c *Config) validateStore() error {
	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required when STORE_ENABLED=true")
	}
	return nil
}

// validateServer validates HTTP server timeouts and rate limits
func (c *Config) validateServer() error {
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Server.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
