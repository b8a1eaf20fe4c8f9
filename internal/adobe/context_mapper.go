// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"sort"
	"strings"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// nestedContextPrefixes are the context objects a dotted key may reach into.
var nestedContextPrefixes = map[string]struct{}{
	"traits":  {},
	"app":     {},
	"device":  {},
	"library": {},
	"os":      {},
	"network": {},
	"screen":  {},
}

// topLevelFields are payload fields outside properties/context that a
// mapping key may name directly.
var topLevelFields = map[string]struct{}{
	"event":       {},
	"messageId":   {},
	"anonymousId": {},
	"name":        {},
}

// MapContext resolves the configured context-variable mapping against one
// event and returns the context data bundle.
//
// For every contextValues entry key -> outKey:
//   - "prefix.field" keys read context[prefix][field] when prefix is one of
//     traits, app, device, library, os, network or screen
//   - flat keys read properties[key], falling back to context[key]
//   - event, messageId, anonymousId and name also read the top-level payload
//     field, which takes precedence over a property of the same name
//
// Values are copied verbatim. A nil result means no bundle should be sent:
// the mapping is empty, both bags are empty, or nothing matched.
func MapContext(properties, context, topLevel models.Map, contextValues map[string]string) models.Map {
	if len(contextValues) == 0 {
		return nil
	}
	if properties.IsEmpty() && context.IsEmpty() {
		return nil
	}

	keys := make([]string, 0, len(contextValues))
	for k := range contextValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bundle := models.Map{}
	for _, key := range keys {
		outKey := contextValues[key]
		if outKey == "" {
			outKey = key
		}

		if prefix, field, dotted := strings.Cut(key, "."); dotted {
			if _, allowed := nestedContextPrefixes[prefix]; allowed {
				if v, ok := context.Lookup(prefix, field); ok {
					bundle[outKey] = v
				}
			}
		} else if v, ok := lookupPayload(properties, context, key); ok {
			bundle[outKey] = v
		}

		if _, ok := topLevelFields[key]; ok {
			if v, ok := topLevel.Get(key); ok && !v.IsNull() {
				bundle[outKey] = v
			}
		}
	}

	if len(bundle) == 0 {
		return nil
	}
	return bundle
}

// lookupPayload finds key in properties first, then in context.
func lookupPayload(properties, context models.Map, key string) (models.Value, bool) {
	if v, ok := properties.Get(key); ok && !v.IsNull() {
		return v, true
	}
	if v, ok := context.Get(key); ok && !v.IsNull() {
		return v, true
	}
	return models.Value{}, false
}
