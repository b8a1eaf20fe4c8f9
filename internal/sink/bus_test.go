// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// goChannelPublisher adapts the in-memory watermill pub/sub to Publisher.
type goChannelPublisher struct {
	pubsub *gochannel.GoChannel
}

func (p goChannelPublisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	return p.pubsub.Publish(topic, msg)
}

func TestBusEmitterPublishesOnOpSubject(t *testing.T) {
	t.Parallel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, "adobe.sdk.trackAction")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	emitter := NewBusEmitter(goChannelPublisher{pubsub: pubsub}, "")
	if got := emitter.Subject(OpTrackAction); got != "adobe.sdk.trackAction" {
		t.Errorf("Expected subject adobe.sdk.trackAction, got %s", got)
	}

	s := New(emitter, Options{})
	s.TrackAction("Registration", models.Map{"evar1": models.String("a@b.com")})

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.Metadata.Get("op") != "trackAction" {
			t.Errorf("Expected op metadata, got %q", msg.Metadata.Get("op"))
		}
		decoded, err := DecodeCall(msg.Payload)
		if err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if decoded.Name != "Registration" {
			t.Errorf("Expected Registration, got %q", decoded.Name)
		}
		if decoded.Data.StringOr("evar1", "") != "a@b.com" {
			t.Errorf("Expected evar1 in data, got %#v", decoded.Data)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for published call")
	}
}
