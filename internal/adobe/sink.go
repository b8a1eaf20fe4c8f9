// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Sink is the analytics backend the plugin drives. Implementations must not
// block for long; delivery failures are theirs to log and count.
type Sink interface {
	TrackAction(name string, data models.Map)
	TrackState(name string, data models.Map)
	SetVisitorIdentifier(id string)
	ClearQueue()

	// CreateTracker returns a media tracker for a new session. It fails when
	// the backend is not configured for media tracking.
	CreateTracker(cfg TrackerConfig) (MediaTracker, error)
}

// MediaTracker receives the calls of one media session.
type MediaTracker interface {
	SessionStart(info PlaybackInfo, metadata Metadata)
	Play()
	Pause()
	Complete()
	SessionEnd()
	UpdatePlayhead(position float64)

	// TrackEvent reports a media sub-event. info and metadata may be nil.
	TrackEvent(event MediaEvent, info MediaObject, metadata Metadata)
	UpdateQoE(qoe QoEInfo)
}
