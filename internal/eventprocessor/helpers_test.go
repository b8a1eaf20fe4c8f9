// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// fakePlugin records what the handler forwards.
type fakePlugin struct {
	mu      sync.Mutex
	events  []models.Event
	updates []models.UpdateType
	accept  bool
	outcome adobe.Outcome
}

func newFakePlugin() *fakePlugin {
	return &fakePlugin{accept: true, outcome: adobe.Sent("trackAction")}
}

func (f *fakePlugin) Handle(_ context.Context, event models.Event) adobe.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.outcome
}

func (f *fakePlugin) Update(_ models.Map, updateType models.UpdateType) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateType)
	return f.accept
}

func (f *fakePlugin) handled() []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event(nil), f.events...)
}

// fakeStore records saved settings.
type fakeStore struct {
	mu    sync.Mutex
	saved []models.Map
	err   error
}

func (s *fakeStore) Save(_ context.Context, settings models.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, settings)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

var errStoreDown = errors.New("store down")

func envelopeMessage(t interface{ Fatalf(string, ...any) }, env models.Envelope) *message.Message {
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Failed to marshal envelope: %v", err)
	}
	id := env.MessageID
	if id == "" {
		id = "uuid-" + string(env.Type)
	}
	return message.NewMessage(id, data)
}

func settingsMessage(t interface{ Fatalf(string, ...any) }, update models.SettingsUpdate) *message.Message {
	data, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("Failed to marshal settings: %v", err)
	}
	return message.NewMessage("settings-"+string(update.Type), data)
}

// adobeSettings builds the settings blob the host delivers.
func adobeSettings(eventsV2 map[string]string) models.Map {
	table := models.Map{}
	for k, v := range eventsV2 {
		table[k] = models.String(v)
	}
	return models.Map{
		"integrations": models.Object(models.Map{
			adobe.PluginKey: models.Object(models.Map{
				"eventsV2": models.Object(table),
			}),
		}),
	}
}
