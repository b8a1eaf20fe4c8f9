// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates the four inbound call shapes.
type EventKind string

const (
	KindIdentify EventKind = "identify"
	KindTrack    EventKind = "track"
	KindScreen   EventKind = "screen"
	KindReset    EventKind = "reset"
)

// Valid reports whether k is one of the supported kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindIdentify, KindTrack, KindScreen, KindReset:
		return true
	}
	return false
}

// Event is the discriminated union of inbound events. The concrete types are
// IdentifyEvent, TrackEvent, ScreenEvent and ResetEvent.
type Event interface {
	Kind() EventKind
}

// IdentifyEvent associates the current visitor with a user id.
type IdentifyEvent struct {
	UserID string
}

// TrackEvent records a named user action.
type TrackEvent struct {
	Event       string
	Properties  Map
	Context     Map
	MessageID   string
	AnonymousID string
}

// ScreenEvent records a screen view.
type ScreenEvent struct {
	Name        string
	Properties  Map
	Context     Map
	MessageID   string
	AnonymousID string
}

// ResetEvent clears visitor state.
type ResetEvent struct{}

func (IdentifyEvent) Kind() EventKind { return KindIdentify }
func (TrackEvent) Kind() EventKind    { return KindTrack }
func (ScreenEvent) Kind() EventKind   { return KindScreen }
func (ResetEvent) Kind() EventKind    { return KindReset }

// TopLevel returns the top-level pseudo-fields exposed to context mapping:
// event, messageId and anonymousId. Empty values are left out.
func (e TrackEvent) TopLevel() Map {
	return topLevel("event", e.Event, e.MessageID, e.AnonymousID)
}

// TopLevel returns the top-level pseudo-fields exposed to context mapping:
// name, messageId and anonymousId. Empty values are left out.
func (e ScreenEvent) TopLevel() Map {
	return topLevel("name", e.Name, e.MessageID, e.AnonymousID)
}

func topLevel(nameKey, name, messageID, anonymousID string) Map {
	out := Map{}
	if name != "" {
		out[nameKey] = String(name)
	}
	if messageID != "" {
		out["messageId"] = String(messageID)
	}
	if anonymousID != "" {
		out["anonymousId"] = String(anonymousID)
	}
	return out
}

// Envelope is the wire shape of an inbound event on the bus and the HTTP API.
type Envelope struct {
	Type        EventKind `json:"type" validate:"required,oneof=identify track screen reset"`
	UserID      string    `json:"userId,omitempty"`
	Event       string    `json:"event,omitempty" validate:"required_if=Type track,max=512"`
	Name        string    `json:"name,omitempty" validate:"max=512"`
	Properties  Map       `json:"properties,omitempty"`
	Context     Map       `json:"context,omitempty"`
	MessageID   string    `json:"messageId,omitempty" validate:"max=256"`
	AnonymousID string    `json:"anonymousId,omitempty" validate:"max=256"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// ErrUnknownEventKind is returned when an envelope type is not supported.
var ErrUnknownEventKind = errors.New("unknown event type")

// EnsureMessageID assigns a fresh message id when the envelope has none.
func (e *Envelope) EnsureMessageID() string {
	if e.MessageID == "" {
		e.MessageID = uuid.New().String()
	}
	return e.MessageID
}

// ToEvent converts the envelope into the matching Event variant.
func (e *Envelope) ToEvent() (Event, error) {
	switch e.Type {
	case KindIdentify:
		return IdentifyEvent{UserID: e.UserID}, nil
	case KindTrack:
		return TrackEvent{
			Event:       e.Event,
			Properties:  e.Properties,
			Context:     e.Context,
			MessageID:   e.MessageID,
			AnonymousID: e.AnonymousID,
		}, nil
	case KindScreen:
		return ScreenEvent{
			Name:        e.Name,
			Properties:  e.Properties,
			Context:     e.Context,
			MessageID:   e.MessageID,
			AnonymousID: e.AnonymousID,
		}, nil
	case KindReset:
		return ResetEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Type)
	}
}

// Topic returns the bus subject suffix for the envelope, e.g. "track".
func (e *Envelope) Topic() string {
	return string(e.Type)
}

// UpdateType distinguishes the first settings delivery from later refreshes.
type UpdateType string

const (
	UpdateInitial UpdateType = "initial"
	UpdateRefresh UpdateType = "refresh"
)

// SettingsUpdate carries a settings blob on the bus and the HTTP API.
type SettingsUpdate struct {
	Settings Map        `json:"settings" validate:"required"`
	Type     UpdateType `json:"type" validate:"required,oneof=initial refresh"`
}
