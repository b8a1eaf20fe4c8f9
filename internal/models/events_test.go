// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package models

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestEnvelopeToEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		envelope Envelope
		wantKind EventKind
	}{
		{"identify", Envelope{Type: KindIdentify, UserID: "u1"}, KindIdentify},
		{"track", Envelope{Type: KindTrack, Event: "Signed Up"}, KindTrack},
		{"screen", Envelope{Type: KindScreen, Name: "Home"}, KindScreen},
		{"reset", Envelope{Type: KindReset}, KindReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := tt.envelope.ToEvent()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if event.Kind() != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, event.Kind())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		env := Envelope{Type: "alias"}
		if _, err := env.ToEvent(); !errors.Is(err, ErrUnknownEventKind) {
			t.Errorf("Expected ErrUnknownEventKind, got %v", err)
		}
	})
}

func TestEnvelopeDecodeTrack(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"type": "track",
		"event": "Product Added",
		"messageId": "m-1",
		"anonymousId": "anon",
		"properties": {"price": 21.99},
		"context": {"traits": {"email": "a@b.com"}}
	}`)

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("Failed to unmarshal envelope: %v", err)
	}
	event, err := env.ToEvent()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	track, ok := event.(TrackEvent)
	if !ok {
		t.Fatalf("Expected TrackEvent, got %T", event)
	}
	if track.Event != "Product Added" {
		t.Errorf("Expected event 'Product Added', got %q", track.Event)
	}
	if v, ok := track.Context.Lookup("traits", "email"); !ok || !v.Equal(String("a@b.com")) {
		t.Errorf("Expected traits.email in context, got %#v", track.Context)
	}
}

func TestEnsureMessageID(t *testing.T) {
	t.Parallel()

	env := Envelope{Type: KindTrack, Event: "x"}
	id := env.EnsureMessageID()
	if id == "" || env.MessageID != id {
		t.Errorf("Expected generated message id, got %q", env.MessageID)
	}
	if again := env.EnsureMessageID(); again != id {
		t.Errorf("Expected existing id %q to be kept, got %q", id, again)
	}
}

func TestTopLevel(t *testing.T) {
	t.Parallel()

	track := TrackEvent{Event: "Signed Up", MessageID: "m-1"}
	top := track.TopLevel()
	if !top.Equal(Map{"event": String("Signed Up"), "messageId": String("m-1")}) {
		t.Errorf("Expected event and messageId only, got %#v", top)
	}

	screen := ScreenEvent{Name: "Home", AnonymousID: "a-1"}
	if !screen.TopLevel().Equal(Map{"name": String("Home"), "anonymousId": String("a-1")}) {
		t.Errorf("Expected name and anonymousId only, got %#v", screen.TopLevel())
	}

	if !(ScreenEvent{}).TopLevel().IsEmpty() {
		t.Error("Expected empty top level for empty screen")
	}
}
