// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the HTTP API, the bus handlers and
// the configuration loader. Field names in errors are taken from the json (or
// koanf) tag so a message such as "event is required" names the payload key
// the caller actually sent.
//
// Custom tags:
//   - subject_token: a dot-separated NATS subject with no wildcards
//
//	if err := validation.ValidateStruct(&env); err != nil {
//	    apiErr := err.ToAPIError()
//	    // apiErr.Code == "VALIDATION_ERROR"
//	}
package validation
