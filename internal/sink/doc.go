// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

// Package sink provides the concrete analytics sinks driven by the plugin.
//
// CallSink turns every adobe.Sink and adobe.MediaTracker operation into a
// Call and hands it to an Emitter:
//
//   - LogEmitter: one structured zerolog line per call (dry run)
//   - BusEmitter: JSON on the subject adobe.sdk.<op> through the bus publisher
//   - Recorder: in-memory, for tests and the debug endpoint
package sink
