// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

// Each key doubles as the log field name Ctx writes.
const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	messageIDKey     contextKey = "message_id"
)

var contextKeys = []contextKey{correlationIDKey, requestIDKey, messageIDKey}

// GenerateRequestID returns a fresh UUID for an HTTP request without one.
func GenerateRequestID() string {
	return uuid.New().String()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithNewCorrelationID tags ctx with a short random id that follows
// the request into the plugin when it is ingested directly.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return context.WithValue(ctx, correlationIDKey, uuid.New().String()[:8])
}

// ContextWithMessageID tags ctx with the envelope's message id.
func ContextWithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string     { return stringValue(ctx, requestIDKey) }
func CorrelationIDFromContext(ctx context.Context) string { return stringValue(ctx, correlationIDKey) }
func MessageIDFromContext(ctx context.Context) string     { return stringValue(ctx, messageIDKey) }

func stringValue(ctx context.Context, key contextKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

// withContextIDs adds every id found on ctx to logCtx.
//
//nolint:gocritic // zerolog.Context is a value type
func withContextIDs(ctx context.Context, logCtx zerolog.Context) zerolog.Context {
	for _, key := range contextKeys {
		if id := stringValue(ctx, key); id != "" {
			logCtx = logCtx.Str(string(key), id)
		}
	}
	return logCtx
}

// Ctx returns the global logger with the ids carried by ctx attached.
//
//	logging.Ctx(ctx).Info().Msg("Settings applied")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	l = withContextIDs(ctx, l.With()).Logger()
	return &l
}

func CtxDebug(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Debug()
}

func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}
