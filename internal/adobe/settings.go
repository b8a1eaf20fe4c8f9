// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"sync/atomic"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// PluginKey is the integration key under which the destination reads its
// settings sub-object.
const PluginKey = "Adobe Analytics"

// DefaultProductIdentifier is used when productIdentifier is not configured.
const DefaultProductIdentifier = "name"

// Settings is the resolved, immutable configuration of the destination.
type Settings struct {
	// ContextValues maps a payload key (flat or "prefix.field") to the
	// vendor context variable it is reported under.
	ContextValues map[string]string

	// EventsV2 restricts and renames the track events forwarded as actions.
	EventsV2 map[string]string

	// ProductIdentifier names the product field used as the identifier in
	// ecommerce product strings.
	ProductIdentifier string

	APIKey string
	SSL    bool
}

// DefaultSettings returns the settings used before any update is applied.
func DefaultSettings() Settings {
	return Settings{
		ContextValues:     map[string]string{},
		EventsV2:          map[string]string{},
		ProductIdentifier: DefaultProductIdentifier,
	}
}

// Resolve extracts the destination settings from a raw settings blob.
//
// The blob is expected to look like {"integrations": {"Adobe Analytics": {...}}}.
// A bare sub-object (a map holding contextValues/eventsV2 directly) is also
// accepted. Missing or mistyped fields fall back to defaults; Resolve never
// fails.
func Resolve(raw models.Map) Settings {
	s := DefaultSettings()

	cfg, ok := pluginConfig(raw)
	if !ok {
		return s
	}

	s.ContextValues = stringTable(cfg, "contextValues")
	s.EventsV2 = stringTable(cfg, "eventsV2")
	if id := cfg.StringOr("productIdentifier", ""); id != "" {
		s.ProductIdentifier = id
	}
	s.APIKey = cfg.StringOr("apiKey", "")
	s.SSL = cfg.BoolOr("ssl", false)
	return s
}

// HasSettings reports whether raw carries a destination settings object at
// all. Blobs without one are not applied, so they cannot lock in defaults.
func HasSettings(raw models.Map) bool {
	_, ok := pluginConfig(raw)
	return ok
}

func pluginConfig(raw models.Map) (models.Map, bool) {
	if sub, ok := raw.Lookup("integrations", PluginKey); ok {
		return sub.AsMap()
	}
	if raw.Has("contextValues") || raw.Has("eventsV2") || raw.Has("productIdentifier") {
		return raw, true
	}
	return nil, false
}

// stringTable reads a string-to-string table, skipping non-string entries.
func stringTable(cfg models.Map, key string) map[string]string {
	out := map[string]string{}
	v, ok := cfg.Get(key)
	if !ok {
		return out
	}
	m, ok := v.AsMap()
	if !ok {
		return out
	}
	for k, item := range m {
		if s, ok := item.AsString(); ok {
			out[k] = s
		}
	}
	return out
}

// SettingsGuard holds settings that can be set exactly once. The first
// initial update wins; refreshes and later initial updates are ignored since
// the vendor SDK cannot be reconfigured after registration.
type SettingsGuard struct {
	current atomic.Pointer[Settings]
}

// Apply stores s when updateType is initial and nothing has been applied yet.
// It reports whether s was accepted.
func (g *SettingsGuard) Apply(s Settings, updateType models.UpdateType) bool {
	if updateType != models.UpdateInitial {
		return false
	}
	return g.current.CompareAndSwap(nil, &s)
}

// Current returns the applied settings, or DefaultSettings and false when
// no initial update has been accepted.
func (g *SettingsGuard) Current() (Settings, bool) {
	s := g.current.Load()
	if s == nil {
		return DefaultSettings(), false
	}
	return *s, true
}

// Applied reports whether an initial update has been accepted.
func (g *SettingsGuard) Applied() bool {
	return g.current.Load() != nil
}
