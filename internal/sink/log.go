// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"context"

	"github.com/rs/zerolog"
)

// LogEmitter writes each call as one structured log line. It is the dry-run
// mode of the destination.
type LogEmitter struct {
	logger zerolog.Logger
}

// NewLogEmitter creates a LogEmitter writing to logger.
func NewLogEmitter(logger zerolog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger.With().Str("component", "adobe-sink").Logger()}
}

// Emit implements Emitter.
func (e *LogEmitter) Emit(_ context.Context, c Call) error {
	ev := e.logger.Info().Str("op", string(c.Op))
	if c.Name != "" {
		ev = ev.Str("name", c.Name)
	}
	if c.Data != nil {
		ev = ev.Interface("data", c.Data.Interface())
	}
	if c.Metadata != nil {
		ev = ev.Interface("metadata", c.Metadata)
	}
	if c.Object != nil {
		ev = ev.Str("object_type", c.ObjectType).Interface("object", c.Object)
	}
	if c.Position != nil {
		ev = ev.Float64("position", *c.Position)
	}
	if c.Config != nil {
		ev = ev.Interface("config", c.Config)
	}
	if c.Session != "" {
		ev = ev.Str("session", c.Session)
	}
	ev.Msg("Adobe SDK call")
	return nil
}
