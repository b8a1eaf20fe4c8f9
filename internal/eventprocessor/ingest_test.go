// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/sink"
)

func newDirectIngestor(t *testing.T) (*DirectIngestor, *sink.Recorder) {
	t.Helper()
	recorder := sink.NewRecorder(0)
	plugin := adobe.New(sink.New(recorder, sink.Options{}))
	handler, err := NewDestinationHandler(plugin, DefaultHandlerConfig())
	if err != nil {
		t.Fatalf("NewDestinationHandler() error = %v", err)
	}
	return NewDirectIngestor(handler), recorder
}

func TestDirectIngestor_Settings(t *testing.T) {
	t.Parallel()

	ingestor, _ := newDirectIngestor(t)
	ctx := context.Background()

	first, err := ingestor.IngestSettings(ctx, &models.SettingsUpdate{
		Settings: adobeSettings(map[string]string{"Song Played": "songPlayed"}),
		Type:     models.UpdateInitial,
	})
	if err != nil {
		t.Fatalf("IngestSettings() error = %v", err)
	}
	if first.Outcome != OutcomeApplied {
		t.Errorf("Expected %s, got %s", OutcomeApplied, first.Outcome)
	}

	second, err := ingestor.IngestSettings(ctx, &models.SettingsUpdate{
		Settings: adobeSettings(nil),
		Type:     models.UpdateRefresh,
	})
	if err != nil {
		t.Fatalf("IngestSettings() error = %v", err)
	}
	if second.Outcome != OutcomeIgnored {
		t.Errorf("Expected %s, got %s", OutcomeIgnored, second.Outcome)
	}

	if _, err := ingestor.IngestSettings(ctx, &models.SettingsUpdate{Type: "later"}); err == nil {
		t.Error("Expected validation error")
	}
}

func TestDirectIngestor_Events(t *testing.T) {
	t.Parallel()

	ingestor, recorder := newDirectIngestor(t)
	ctx := context.Background()

	if _, err := ingestor.IngestSettings(ctx, &models.SettingsUpdate{
		Settings: adobeSettings(map[string]string{"Song Played": "songPlayed"}),
		Type:     models.UpdateInitial,
	}); err != nil {
		t.Fatalf("IngestSettings() error = %v", err)
	}

	tests := []struct {
		name       string
		env        models.Envelope
		wantStatus string
		wantReason string
		wantErr    bool
	}{
		{
			name:       "configured track is sent",
			env:        models.Envelope{Type: models.KindTrack, Event: "Song Played"},
			wantStatus: string(adobe.StatusSent),
		},
		{
			name:       "unconfigured track is dropped",
			env:        models.Envelope{Type: models.KindTrack, Event: "Song Skipped"},
			wantStatus: string(adobe.StatusDropped),
			wantReason: adobe.ReasonUnconfiguredEvent,
		},
		{
			name:       "video event without session is ignored",
			env:        models.Envelope{Type: models.KindTrack, Event: "Video Playback Paused"},
			wantStatus: string(adobe.StatusIgnored),
			wantReason: adobe.ReasonNoVideoSession,
		},
		{
			name:    "track without event name is rejected",
			env:     models.Envelope{Type: models.KindTrack},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env
			result, err := ingestor.IngestEvent(ctx, &env)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("IngestEvent() error = %v", err)
			}
			if result.MessageID == "" {
				t.Error("Expected a message id to be assigned")
			}
			if result.Outcome != tt.wantStatus || result.Reason != tt.wantReason {
				t.Errorf("Expected %s/%s, got %s/%s", tt.wantStatus, tt.wantReason, result.Outcome, result.Reason)
			}
		})
	}

	ops := recorder.Ops()
	if len(ops) != 1 || ops[0] != sink.OpTrackAction {
		t.Errorf("Expected a single trackAction, got %v", ops)
	}
}

func TestNewBusIngestor_NilPublisher(t *testing.T) {
	t.Parallel()

	if _, err := NewBusIngestor(nil); !errors.Is(err, ErrNilPublisher) {
		t.Errorf("Expected ErrNilPublisher, got %v", err)
	}
}

func TestBusIngestor_PublishesOnTypedSubject(t *testing.T) {
	t.Parallel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, EventTopic(models.KindScreen))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ingestor, err := NewBusIngestor(NewPublisherFrom(pubSub, watermill.NopLogger{}))
	if err != nil {
		t.Fatalf("NewBusIngestor() error = %v", err)
	}

	result, err := ingestor.IngestEvent(ctx, &models.Envelope{Type: models.KindScreen, Name: "Home", MessageID: "bus-1"})
	if err != nil {
		t.Fatalf("IngestEvent() error = %v", err)
	}
	if !result.Accepted || result.Outcome != OutcomeQueued || result.MessageID != "bus-1" {
		t.Errorf("Expected queued bus-1, got %+v", result)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.UUID != "bus-1" {
			t.Errorf("Expected UUID bus-1, got %s", msg.UUID)
		}
		if got := msg.Metadata.Get("type"); got != "screen" {
			t.Errorf("Expected type metadata screen, got %s", got)
		}
		env, err := NewSerializer().UnmarshalEnvelope(msg.Payload)
		if err != nil {
			t.Fatalf("UnmarshalEnvelope() error = %v", err)
		}
		if env.Name != "Home" {
			t.Errorf("Expected Home, got %s", env.Name)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for published envelope")
	}

	if _, err := ingestor.IngestEvent(ctx, &models.Envelope{Type: "alias"}); err == nil {
		t.Error("Expected validation error for unknown type")
	}
}

func TestPublisher_ClosedRejectsPublish(t *testing.T) {
	t.Parallel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherFrom(pubSub, watermill.NopLogger{})

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got %v", err)
	}

	err := publisher.PublishSettings(context.Background(), &models.SettingsUpdate{
		Settings: models.Map{},
		Type:     models.UpdateInitial,
	})
	if !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Expected ErrPublisherClosed, got %v", err)
	}

	health := publisher.HealthCheck(context.Background())
	if health.Healthy {
		t.Error("Expected closed publisher to be unhealthy")
	}
}
