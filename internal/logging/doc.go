// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

// Package logging provides centralized zerolog-based structured logging.
//
// The package keeps one global zerolog logger, configured once at startup
// from the logging section of the configuration, and exposes level helpers
// that write to it. JSON is the default output; console output is available
// for local runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:   "info",
//	    Format:  "json",
//	    Service: "adobe-destination",
//	})
//
//	logging.Info().Str("topic", topic).Msg("Subscription started")
//	logging.Error().Err(err).Str("op", "trackAction").Msg("Failed to deliver sink call")
//
// # Context
//
// Request ids set by the HTTP layer and message ids set by the bus handlers
// travel on the context. Ctx and the CtxDebug family attach them:
//
//	ctx = logging.ContextWithMessageID(ctx, env.MessageID)
//	logging.CtxDebug(ctx).Str("event", name).Msg("Event ignored")
//
// # Adapters
//
// Third-party libraries get the same logger through two adapters:
//   - NewSlogLogger for suture (via sutureslog)
//   - NewWatermillAdapter for the Watermill router, publisher and subscriber
//
// # Log Levels
//
//	trace  - Watermill internals
//	debug  - Per-event outcomes and ignored video events
//	info   - Settings applied, lifecycle (default)
//	warn   - Poisoned messages, rejected settings
//	error  - Sink and bus failures
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
