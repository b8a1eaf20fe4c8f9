// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

// UnconfiguredEventMessage is logged when a track event is not listed in
// the eventsV2 table.
const UnconfiguredEventMessage = "Event must be configured in Adobe and in the EventsV2 setting before sending."

// ResolveEventName returns the action name a track event is forwarded under.
// Events missing from eventsV2 are not forwarded. A configured entry forwards
// its mapped name; an empty mapping keeps the original name.
func ResolveEventName(name string, eventsV2 map[string]string) (string, bool) {
	mapped, ok := eventsV2[name]
	if !ok {
		return "", false
	}
	if mapped == "" {
		return name, true
	}
	return mapped, true
}
