// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger writes the bus pipeline's lines. The handler and the router
// share it so every line about an envelope uses the same field names.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates an EventLogger on top of the global logger.
func NewEventLogger() *EventLogger {
	return newEventLogger(Logger())
}

//nolint:gocritic // zerolog.Logger is passed by value
func newEventLogger(base zerolog.Logger) *EventLogger {
	return &EventLogger{logger: base.With().Str("component", "eventprocessor").Logger()}
}

func (e *EventLogger) at(ctx context.Context, level zerolog.Level, messageID string) *zerolog.Event {
	l := withContextIDs(ctx, e.logger.With()).Logger()
	ev := l.WithLevel(level)
	if messageID != "" {
		ev = ev.Str("message_id", messageID)
	}
	return ev
}

// LogEventReceived logs an envelope taken off the bus.
func (e *EventLogger) LogEventReceived(ctx context.Context, messageID, eventType string) {
	e.at(ctx, zerolog.DebugLevel, messageID).Str("type", eventType).Msg("event received")
}

// LogEventHandled logs the outcome the plugin reported.
func (e *EventLogger) LogEventHandled(ctx context.Context, messageID, status, reason string, took time.Duration) {
	ev := e.at(ctx, zerolog.DebugLevel, messageID).Str("status", status)
	if reason != "" {
		ev = ev.Str("reason", reason)
	}
	ev.Int64("duration_ms", took.Milliseconds()).Msg("event handled")
}

func (e *EventLogger) LogEventFailed(ctx context.Context, messageID string, err error) {
	e.at(ctx, zerolog.ErrorLevel, messageID).Err(err).Msg("event processing failed")
}

// LogDuplicate logs a redelivery the dedupe cache recognised.
func (e *EventLogger) LogDuplicate(ctx context.Context, messageID string) {
	e.at(ctx, zerolog.DebugLevel, messageID).Msg("duplicate event skipped")
}

func (e *EventLogger) LogSettingsUpdate(ctx context.Context, updateType string, applied bool) {
	e.at(ctx, zerolog.InfoLevel, "").Str("type", updateType).Bool("applied", applied).Msg("settings update received")
}

func (e *EventLogger) LogPoisoned(ctx context.Context, messageID, topic string, err error) {
	e.at(ctx, zerolog.WarnLevel, messageID).Str("poison_topic", topic).Err(err).Msg("event sent to poison queue")
}

func (e *EventLogger) LogSubscriptionStarted(topic, queue string) {
	e.logger.Info().Str("topic", topic).Str("queue", queue).Msg("subscription started")
}

func (e *EventLogger) LogRouterStarted() { e.logger.Info().Msg("router started") }
func (e *EventLogger) LogRouterStopped() { e.logger.Info().Msg("router stopped") }
