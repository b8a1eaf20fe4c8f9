// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package adobe maps identify, track, screen and reset events onto the Adobe
Analytics and Media call shapes.

The package is the mapping engine of the destination. It has no transport or
storage of its own: events come in through the Plugin entry points and leave
as calls on a Sink.

Components:

  - Resolve / SettingsGuard: reads the "Adobe Analytics" settings sub-object
    and applies it once, on the first initial update
  - MapContext: resolves contextValues into a context data bundle
  - FormatProduct / FormatProducts: ecommerce product strings and the
    &&products / &&events bundle
  - ResolveEventName: the eventsV2 allow list and rename table
  - VideoTracker: a table-driven state machine over the video event vocabulary
  - Plugin: the facade orchestrating the above

Track routing:

	Product Added, Order Completed, ...  -> TrackAction(tag, products bundle)
	Video Playback Started, ...          -> VideoTracker
	names listed in eventsV2             -> TrackAction(mapped name, bundle or properties)
	anything else                        -> dropped

Usage:

	plugin := adobe.New(sink)
	plugin.Update(settings, models.UpdateInitial)
	outcome := plugin.Handle(ctx, models.TrackEvent{Event: "Signed Up"})

Thread Safety:

Plugin serializes its entry points with a mutex. VideoTracker and
SettingsGuard are owned by the plugin and are not meant to be shared.
*/
package adobe
