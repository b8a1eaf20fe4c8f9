// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Status is the result class of a plugin entry point.
type Status string

const (
	StatusSent    Status = "sent"
	StatusDropped Status = "dropped"
	StatusIgnored Status = "ignored"
)

// Drop and ignore reasons.
const (
	ReasonUnconfiguredEvent  = "unconfigured_event"
	ReasonProductFormat      = "product_format"
	ReasonTrackerUnavailable = "tracker_unavailable"
	ReasonNoVideoSession     = "no_video_session"
	ReasonUnknownVideoEvent  = "unknown_video_event"
	ReasonUnknownEvent       = "unknown_event"
)

// Outcome reports what an entry point did with an event. Plugin entry points
// never return errors; a failed mapping is a dropped outcome.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Action string `json:"action,omitempty"`
}

// Sent is the outcome of an event forwarded as action.
func Sent(action string) Outcome { return Outcome{Status: StatusSent, Action: action} }

// Dropped is the outcome of an event that could not be mapped.
func Dropped(reason string) Outcome { return Outcome{Status: StatusDropped, Reason: reason} }

// Ignored is the outcome of an event the plugin has nothing to do for.
func Ignored(reason string) Outcome { return Outcome{Status: StatusIgnored, Reason: reason} }

// Plugin maps identify, track, screen and reset events onto a Sink.
//
// Entry points are serialized by a mutex, so settings updates and events may
// arrive from different goroutines.
type Plugin struct {
	mu       sync.Mutex
	sink     Sink
	settings SettingsGuard
	video    *VideoTracker
}

// New creates a plugin driving sink.
func New(sink Sink) *Plugin {
	video := NewVideoTracker(sink)
	video.OnTransition = func(from, to VideoState) {
		metrics.RecordVideoTransition(from.String(), to.String())
	}
	return &Plugin{sink: sink, video: video}
}

// Key returns the integration key the plugin reads settings from.
func (p *Plugin) Key() string { return PluginKey }

// Update applies a settings blob. Only the first initial update carrying
// destination settings is applied; it reports whether raw was accepted.
func (p *Plugin) Update(raw models.Map, updateType models.UpdateType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !HasSettings(raw) {
		metrics.RecordSettingsUpdate(string(updateType), false)
		logging.Warn().Str("type", string(updateType)).Str("key", PluginKey).Msg("Settings update without destination settings ignored")
		return false
	}

	accepted := p.settings.Apply(Resolve(raw), updateType)
	metrics.RecordSettingsUpdate(string(updateType), accepted)
	if accepted {
		s, _ := p.settings.Current()
		logging.Info().
			Int("context_values", len(s.ContextValues)).
			Int("events_v2", len(s.EventsV2)).
			Str("product_identifier", s.ProductIdentifier).
			Msg("Destination settings applied")
	} else {
		logging.Debug().Str("type", string(updateType)).Msg("Settings update ignored")
	}
	return accepted
}

// Settings returns the applied settings and whether an update was accepted.
func (p *Plugin) Settings() (Settings, bool) {
	return p.settings.Current()
}

// VideoState returns the media session state and when the live session
// started. The time is zero when no session is live.
func (p *Plugin) VideoState() (VideoState, bool, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video.State(), p.video.Live(), p.video.StartedAt()
}

// Handle dispatches event to the matching entry point and records metrics.
func (p *Plugin) Handle(ctx context.Context, event models.Event) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	var outcome Outcome
	switch e := event.(type) {
	case models.IdentifyEvent:
		outcome = p.identify(e)
	case models.TrackEvent:
		outcome = p.track(e)
	case models.ScreenEvent:
		outcome = p.screen(e)
	case models.ResetEvent:
		outcome = p.reset()
	default:
		outcome = Ignored(ReasonUnknownEvent)
	}

	kind := "unknown"
	if event != nil {
		kind = string(event.Kind())
	}
	metrics.RecordEventReceived(kind)
	metrics.RecordOutcome(string(outcome.Status), outcome.Reason, time.Since(start))

	logging.CtxDebug(ctx).
		Str("type", kind).
		Str("status", string(outcome.Status)).
		Str("reason", outcome.Reason).
		Str("action", outcome.Action).
		Msg("Event handled")
	return outcome
}

// Identify sets the visitor identifier.
func (p *Plugin) Identify(event models.IdentifyEvent) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identify(event)
}

// Track forwards a track event as an ecommerce action, a video session call
// or a plain action.
func (p *Plugin) Track(event models.TrackEvent) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track(event)
}

// Screen forwards a screen event as a state.
func (p *Plugin) Screen(event models.ScreenEvent) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screen(event)
}

// Reset clears the sink's pending queue.
func (p *Plugin) Reset() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reset()
}

func (p *Plugin) identify(event models.IdentifyEvent) Outcome {
	p.sink.SetVisitorIdentifier(event.UserID)
	return Sent("setVisitorIdentifier")
}

func (p *Plugin) track(event models.TrackEvent) Outcome {
	settings, _ := p.settings.Current()

	// Ecommerce and video events bypass the eventsV2 table.
	if tag, ok := EcommerceTag(event.Event); ok {
		bundle, err := FormatProducts(tag, event.Properties, event.Context, event.TopLevel(), settings)
		if err != nil {
			logging.Warn().Err(err).Str("event", event.Event).Msg("Ecommerce event dropped")
			return Dropped(ReasonProductFormat)
		}
		p.sink.TrackAction(tag, bundle)
		return Sent(tag)
	}

	if IsVideoEvent(event.Event) {
		return p.video.Handle(event, settings.ContextValues)
	}

	name, ok := ResolveEventName(event.Event, settings.EventsV2)
	if !ok {
		logging.Warn().Str("event", event.Event).Msg(UnconfiguredEventMessage)
		return Dropped(ReasonUnconfiguredEvent)
	}

	data := event.Properties
	if event.Properties != nil && event.Context != nil {
		if bundle := MapContext(event.Properties, event.Context, event.TopLevel(), settings.ContextValues); bundle != nil {
			data = bundle
		}
	}
	p.sink.TrackAction(name, data)
	return Sent(name)
}

func (p *Plugin) screen(event models.ScreenEvent) Outcome {
	settings, _ := p.settings.Current()
	topLevel := event.TopLevel()

	var data models.Map
	switch {
	case event.Properties != nil && event.Context != nil:
		data = MapContext(event.Properties, event.Context, topLevel, settings.ContextValues)
	case !topLevel.IsEmpty():
		data = topLevel
	}
	p.sink.TrackState(event.Name, data)
	return Sent(event.Name)
}

func (p *Plugin) reset() Outcome {
	p.sink.ClearQueue()
	return Sent("clearQueue")
}
