// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/validation"
)

// Handler names used for metrics labels and router registration.
const (
	HandlerEvents   = "destination-events"
	HandlerSettings = "destination-settings"
)

// ReasonInvalidEnvelope is the drop reason for well-formed JSON that fails validation.
const ReasonInvalidEnvelope = "invalid_envelope"

// EventPlugin is the part of the Adobe plugin the handler drives.
type EventPlugin interface {
	Handle(ctx context.Context, event models.Event) adobe.Outcome
	Update(raw models.Map, updateType models.UpdateType) bool
}

// SettingsSaver persists the accepted initial settings.
type SettingsSaver interface {
	Save(ctx context.Context, settings models.Map) error
}

// DestinationHandler feeds bus messages into the plugin.
//
// Error handling:
//   - Malformed JSON returns an error (retried, then poison queue)
//   - Well-formed but invalid payloads are acked and counted as dropped
//   - Redelivered message ids are acked without reaching the plugin
type DestinationHandler struct {
	plugin     EventPlugin
	store      SettingsSaver
	serializer *Serializer
	seen       *expirable.LRU[string, struct{}]
	events     *logging.EventLogger

	messagesReceived  atomic.Int64
	messagesProcessed atomic.Int64
	duplicatesSkipped atomic.Int64
	parseErrors       atomic.Int64
	lastMessageTime   atomic.Int64 // unix nanos
}

// HandlerStats is a snapshot of handler counters.
type HandlerStats struct {
	MessagesReceived  int64
	MessagesProcessed int64
	DuplicatesSkipped int64
	ParseErrors       int64
	LastMessageTime   time.Time
}

// NewDestinationHandler creates a handler for plugin.
func NewDestinationHandler(plugin EventPlugin, cfg HandlerConfig) (*DestinationHandler, error) {
	if plugin == nil {
		return nil, ErrNilPlugin
	}
	if cfg.DedupeSize <= 0 {
		cfg.DedupeSize = DefaultHandlerConfig().DedupeSize
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = DefaultHandlerConfig().DedupeTTL
	}

	return &DestinationHandler{
		plugin:     plugin,
		serializer: NewSerializer(),
		seen:       expirable.NewLRU[string, struct{}](cfg.DedupeSize, nil, cfg.DedupeTTL),
		events:     logging.NewEventLogger(),
	}, nil
}

// SetSettingsStore enables persistence of accepted initial settings.
func (h *DestinationHandler) SetSettingsStore(store SettingsSaver) {
	h.store = store
}

// HandleEvent processes one destination.events.<type> message.
func (h *DestinationHandler) HandleEvent(msg *message.Message) error {
	start := time.Now()
	h.messagesReceived.Add(1)
	h.lastMessageTime.Store(start.UnixNano())
	metrics.RecordNATSConsume(HandlerEvents)

	ctx := messageContext(msg)
	env, err := h.serializer.UnmarshalEnvelope(msg.Payload)
	if err != nil {
		h.parseErrors.Add(1)
		metrics.RecordNATSParseFailed(HandlerEvents)
		h.events.LogEventFailed(ctx, msg.UUID, err)
		return err
	}
	if env.MessageID == "" {
		env.MessageID = msg.UUID
	}

	ctx = logging.ContextWithMessageID(ctx, env.MessageID)
	h.events.LogEventReceived(ctx, env.MessageID, string(env.Type))

	if h.seen.Contains(env.MessageID) {
		h.duplicatesSkipped.Add(1)
		metrics.RecordNATSDeduplicated()
		h.events.LogDuplicate(ctx, env.MessageID)
		return nil
	}

	outcome, err := h.ProcessEnvelope(ctx, env)
	if err != nil {
		// Semantically invalid: nothing a retry could fix.
		h.events.LogEventFailed(ctx, env.MessageID, err)
	}
	h.seen.Add(env.MessageID, struct{}{})

	h.messagesProcessed.Add(1)
	metrics.RecordNATSProcessed(HandlerEvents, time.Since(start))
	h.events.LogEventHandled(ctx, env.MessageID, string(outcome.Status), outcome.Reason, time.Since(start))
	return nil
}

// ProcessEnvelope validates env and hands it to the plugin. A validation
// failure is reported as a dropped outcome together with the error.
func (h *DestinationHandler) ProcessEnvelope(ctx context.Context, env *models.Envelope) (adobe.Outcome, error) {
	start := time.Now()
	if verr := validation.ValidateStruct(env); verr != nil {
		metrics.RecordOutcome(string(adobe.StatusDropped), ReasonInvalidEnvelope, time.Since(start))
		return adobe.Dropped(ReasonInvalidEnvelope), verr
	}

	event, err := env.ToEvent()
	if err != nil {
		metrics.RecordOutcome(string(adobe.StatusDropped), ReasonInvalidEnvelope, time.Since(start))
		return adobe.Dropped(ReasonInvalidEnvelope), err
	}

	return h.plugin.Handle(ctx, event), nil
}

// HandleSettings processes one destination.settings message.
func (h *DestinationHandler) HandleSettings(msg *message.Message) error {
	start := time.Now()
	h.messagesReceived.Add(1)
	h.lastMessageTime.Store(start.UnixNano())
	metrics.RecordNATSConsume(HandlerSettings)

	ctx := messageContext(msg)
	update, err := h.serializer.UnmarshalSettings(msg.Payload)
	if err != nil {
		h.parseErrors.Add(1)
		metrics.RecordNATSParseFailed(HandlerSettings)
		h.events.LogEventFailed(ctx, msg.UUID, err)
		return err
	}

	if _, err := h.ProcessSettings(ctx, update); err != nil {
		h.events.LogEventFailed(ctx, msg.UUID, err)
	}

	h.messagesProcessed.Add(1)
	metrics.RecordNATSProcessed(HandlerSettings, time.Since(start))
	return nil
}

// ProcessSettings validates update and offers it to the plugin. Accepted
// initial settings are persisted when a store is configured; a store
// failure is logged but does not undo the update.
func (h *DestinationHandler) ProcessSettings(ctx context.Context, update *models.SettingsUpdate) (bool, error) {
	if verr := validation.ValidateStruct(update); verr != nil {
		return false, verr
	}

	applied := h.plugin.Update(update.Settings, update.Type)
	h.events.LogSettingsUpdate(ctx, string(update.Type), applied)

	if applied && update.Type == models.UpdateInitial && h.store != nil {
		if err := h.store.Save(ctx, update.Settings); err != nil {
			logging.CtxErr(ctx, err).Msg("Failed to persist settings snapshot")
		}
	}
	return applied, nil
}

// Stats returns a snapshot of the handler counters.
func (h *DestinationHandler) Stats() HandlerStats {
	stats := HandlerStats{
		MessagesReceived:  h.messagesReceived.Load(),
		MessagesProcessed: h.messagesProcessed.Load(),
		DuplicatesSkipped: h.duplicatesSkipped.Load(),
		ParseErrors:       h.parseErrors.Load(),
	}
	if ns := h.lastMessageTime.Load(); ns != 0 {
		stats.LastMessageTime = time.Unix(0, ns)
	}
	return stats
}

// HealthCheck implements HealthCheckable. The handler is degraded when more
// than 10% of at least 100 messages failed to parse.
func (h *DestinationHandler) HealthCheck(_ context.Context) ComponentHealth {
	stats := h.Stats()
	details := map[string]interface{}{
		"messages_received":  stats.MessagesReceived,
		"messages_processed": stats.MessagesProcessed,
		"duplicates_skipped": stats.DuplicatesSkipped,
		"parse_errors":       stats.ParseErrors,
	}
	if !stats.LastMessageTime.IsZero() {
		details["last_message_time"] = stats.LastMessageTime.Format(time.RFC3339)
	}

	if stats.MessagesReceived >= 100 {
		if float64(stats.ParseErrors)/float64(stats.MessagesReceived) > 0.1 {
			return ComponentHealth{
				Healthy:  true,
				Degraded: true,
				Message:  "high parse error rate",
				Details:  details,
			}
		}
	}

	return ComponentHealth{Healthy: true, Message: "handler is operational", Details: details}
}

func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
