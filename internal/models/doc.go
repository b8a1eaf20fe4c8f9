// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package models defines the data structures shared across the destination.

Key Components:

  - Value / Map: dynamically-typed property bags with explicit, fallible accessors
  - Event: the identify/track/screen/reset union consumed by the mapping engine
  - Envelope: the wire shape of an event on the bus and the HTTP API
  - SettingsUpdate: a settings blob plus its initial/refresh update type
  - APIResponse: standardized HTTP response wrapper

Usage Example:

	var env models.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
	    return err
	}
	event, err := env.ToEvent()
	if err != nil {
	    return err
	}
	outcome := plugin.Handle(ctx, event)

Values never convert implicitly between variants. A track property holding
the string "21.99" is a string; callers that accept numeric text (ecommerce
prices and quantities) use Value.Numeric explicitly.
*/
package models
