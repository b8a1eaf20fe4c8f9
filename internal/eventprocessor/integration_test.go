// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/sink"
)

func TestEmbeddedPipeline_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS round trip in short mode")
	}

	srv, err := NewEmbeddedServer(&ServerConfig{
		Host:              "127.0.0.1",
		Port:              -1,
		StoreDir:          t.TempDir(),
		JetStreamMaxMem:   64 << 20,
		JetStreamMaxStore: 256 << 20,
		NoLog:             true,
	})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	if health := srv.HealthCheck(context.Background()); !health.Healthy {
		t.Fatalf("Expected healthy server, got %+v", health)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nc, err := natsgo.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream.New() error = %v", err)
	}
	streamCfg := DefaultStreamConfig()
	initializer, err := NewStreamInitializer(js, &streamCfg)
	if err != nil {
		t.Fatalf("NewStreamInitializer() error = %v", err)
	}
	if _, err := initializer.EnsureStream(ctx); err != nil {
		t.Fatalf("EnsureStream() error = %v", err)
	}

	logger := watermill.NopLogger{}
	publisher, err := NewPublisher(DefaultPublisherConfig(srv.ClientURL()), logger)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer publisher.Close()

	newSub := func(durable string) *Subscriber {
		cfg := DefaultSubscriberConfig(srv.ClientURL())
		cfg.DurableName = durable
		cfg.QueueGroup = durable
		cfg.StreamName = streamCfg.Name
		cfg.CloseTimeout = 2 * time.Second
		sub, err := NewSubscriber(&cfg, logger)
		if err != nil {
			t.Fatalf("NewSubscriber() error = %v", err)
		}
		t.Cleanup(func() { _ = sub.Close() })
		return sub
	}

	recorder := sink.NewRecorder(0)
	plugin := adobe.New(sink.New(recorder, sink.Options{TrackingServer: "media.example.com"}))
	handler, err := NewDestinationHandler(plugin, DefaultHandlerConfig())
	if err != nil {
		t.Fatalf("NewDestinationHandler() error = %v", err)
	}

	routerCfg := testRouterConfig()
	router, err := NewRouter(routerCfg, publisher.WatermillPublisher(), logger)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	router.AddConsumerHandler(HandlerSettings, TopicSettings, newSub("it-settings"), handler.HandleSettings)
	router.AddConsumerHandler(HandlerEvents, TopicEventsAll, newSub("it-events"), handler.HandleEvent)
	startRouter(t, router)

	if err := publisher.PublishSettings(ctx, &models.SettingsUpdate{
		Settings: adobeSettings(map[string]string{"Song Played": "songPlayed"}),
		Type:     models.UpdateInitial,
	}); err != nil {
		t.Fatalf("PublishSettings() error = %v", err)
	}
	waitFor(t, func() bool {
		_, ok := plugin.Settings()
		return ok
	})

	for _, env := range []*models.Envelope{
		{Type: models.KindTrack, Event: "Song Played", MessageID: "it-1"},
		{Type: models.KindScreen, Name: "Library", MessageID: "it-2"},
		{Type: models.KindReset, MessageID: "it-3"},
	} {
		if err := publisher.PublishEnvelope(ctx, env); err != nil {
			t.Fatalf("PublishEnvelope(%s) error = %v", env.MessageID, err)
		}
	}

	waitFor(t, func() bool { return len(recorder.Ops()) >= 3 })

	want := []sink.Op{sink.OpTrackAction, sink.OpTrackState, sink.OpClearQueue}
	ops := recorder.Ops()
	for i, op := range want {
		if ops[i] != op {
			t.Errorf("Expected op %d to be %s, got %s", i, op, ops[i])
		}
	}
	if calls := recorder.Calls(); calls[0].Name != "songPlayed" {
		t.Errorf("Expected mapped action songPlayed, got %s", calls[0].Name)
	}
}
