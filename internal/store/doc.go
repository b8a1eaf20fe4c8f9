// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

// Package store keeps the settings snapshot in BadgerDB.
//
// The plugin accepts settings exactly once per process. The snapshot lets a
// restarted service replay the same settings as its initial update; a seed
// file (LoadSettingsFile) covers the very first boot.
package store
