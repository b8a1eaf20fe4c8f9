// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"time"

	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Video lifecycle event names.
const (
	VideoPlaybackStarted        = "Video Playback Started"
	VideoPlaybackPaused         = "Video Playback Paused"
	VideoPlaybackInterrupted    = "Video Playback Interrupted"
	VideoPlaybackBufferStarted  = "Video Playback Buffer Started"
	VideoPlaybackBufferComplete = "Video Playback Buffer Completed"
	VideoPlaybackSeekStarted    = "Video Playback Seek Started"
	VideoPlaybackSeekCompleted  = "Video Playback Seek Completed"
	VideoPlaybackResumed        = "Video Playback Resumed"
	VideoPlaybackCompleted      = "Video Playback Completed"
	VideoContentStarted         = "Video Content Started"
	VideoContentCompleted       = "Video Content Completed"
	VideoAdBreakStarted         = "Video Ad Break Started"
	VideoAdBreakCompleted       = "Video Ad Break Completed"
	VideoAdStarted              = "Video Ad Started"
	VideoAdSkipped              = "Video Ad Skipped"
	VideoAdCompleted            = "Video Ad Completed"
	VideoQualityUpdated         = "Video Quality Updated"
)

// VideoState is the state of the media session owned by a plugin.
type VideoState uint8

const (
	VideoIdle VideoState = iota
	VideoPlaying
	VideoPaused
	VideoBuffering
	VideoSeeking
	VideoAdBreak
	VideoAd
)

var videoStateNames = [...]string{
	VideoIdle:      "idle",
	VideoPlaying:   "playing",
	VideoPaused:    "paused",
	VideoBuffering: "buffering",
	VideoSeeking:   "seeking",
	VideoAdBreak:   "ad_break",
	VideoAd:        "ad",
}

func (s VideoState) String() string {
	if int(s) < len(videoStateNames) {
		return videoStateNames[s]
	}
	return "unknown"
}

// videoInput is what a transition step reads from the event.
type videoInput struct {
	event         models.TrackEvent
	properties    models.Map
	contextValues map[string]string
}

func (in videoInput) bundle() models.Map {
	return MapContext(in.event.Properties, in.event.Context, in.event.TopLevel(), in.contextValues)
}

type videoTransition struct {
	target VideoState
	// hold keeps the current state instead of moving to target.
	hold  bool
	opens bool
	ends  bool
	step  func(t MediaTracker, in videoInput)
}

var videoTransitions = map[string]videoTransition{
	VideoPlaybackStarted: {target: VideoPlaying, opens: true, step: func(t MediaTracker, in videoInput) {
		metadata := mergeMetadata(standardMetadata(in.properties, objectPlayback), in.bundle())
		t.SessionStart(playbackInfo(in.properties), metadata)
	}},
	VideoPlaybackPaused: {target: VideoPaused, step: func(t MediaTracker, _ videoInput) {
		t.Pause()
	}},
	VideoPlaybackInterrupted: {target: VideoPaused, step: func(t MediaTracker, _ videoInput) {
		t.Pause()
	}},
	VideoPlaybackResumed: {target: VideoPlaying, step: func(t MediaTracker, _ videoInput) {
		t.Play()
	}},
	VideoPlaybackCompleted: {target: VideoIdle, ends: true, step: func(t MediaTracker, _ videoInput) {
		t.Complete()
		t.SessionEnd()
	}},
	VideoPlaybackBufferStarted: {target: VideoBuffering, step: func(t MediaTracker, _ videoInput) {
		t.Pause()
		t.TrackEvent(MediaBufferStart, nil, nil)
	}},
	VideoPlaybackBufferComplete: {target: VideoPlaying, step: func(t MediaTracker, in videoInput) {
		t.Play()
		t.UpdatePlayhead(in.properties.FloatOr("position", 0))
		t.TrackEvent(MediaBufferComplete, nil, nil)
	}},
	VideoPlaybackSeekStarted: {target: VideoSeeking, step: func(t MediaTracker, _ videoInput) {
		t.Pause()
		t.TrackEvent(MediaSeekStart, nil, nil)
	}},
	VideoPlaybackSeekCompleted: {target: VideoPlaying, step: func(t MediaTracker, in videoInput) {
		t.Play()
		t.UpdatePlayhead(in.properties.FloatOr("position", 0))
		t.TrackEvent(MediaSeekComplete, nil, nil)
	}},
	VideoContentStarted: {target: VideoPlaying, step: func(t MediaTracker, in videoInput) {
		t.Play()
		metadata := mergeMetadata(standardMetadata(in.properties, objectContent), in.bundle())
		t.TrackEvent(MediaChapterStart, chapterInfo(in.properties), metadata)
	}},
	VideoContentCompleted: {hold: true, step: func(t MediaTracker, _ videoInput) {
		t.TrackEvent(MediaChapterComplete, nil, nil)
	}},
	VideoAdBreakStarted: {target: VideoAdBreak, step: func(t MediaTracker, in videoInput) {
		t.TrackEvent(MediaAdBreakStart, adBreakInfo(in.properties), nil)
	}},
	VideoAdBreakCompleted: {target: VideoPlaying, step: func(t MediaTracker, _ videoInput) {
		t.TrackEvent(MediaAdBreakComplete, nil, nil)
	}},
	VideoAdStarted: {target: VideoAd, step: func(t MediaTracker, in videoInput) {
		metadata := mergeMetadata(standardMetadata(in.properties, objectAd), in.bundle())
		t.TrackEvent(MediaAdStart, adInfo(in.properties), metadata)
	}},
	VideoAdSkipped: {target: VideoAdBreak, step: func(t MediaTracker, _ videoInput) {
		t.TrackEvent(MediaAdSkip, nil, nil)
	}},
	VideoAdCompleted: {target: VideoAdBreak, step: func(t MediaTracker, _ videoInput) {
		t.TrackEvent(MediaAdComplete, nil, nil)
	}},
	VideoQualityUpdated: {hold: true, step: func(t MediaTracker, in videoInput) {
		t.UpdateQoE(qoeInfo(in.bundle()))
	}},
}

// IsVideoEvent reports whether name belongs to the video vocabulary.
func IsVideoEvent(name string) bool {
	_, ok := videoTransitions[name]
	return ok
}

// VideoTracker owns the single live media session of a plugin.
type VideoTracker struct {
	sink      Sink
	tracker   MediaTracker
	state     VideoState
	startedAt time.Time

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to VideoState)
}

// NewVideoTracker creates an idle tracker creating sessions on sink.
func NewVideoTracker(sink Sink) *VideoTracker {
	return &VideoTracker{sink: sink}
}

// State returns the current session state.
func (v *VideoTracker) State() VideoState { return v.state }

// Live reports whether a session is open.
func (v *VideoTracker) Live() bool { return v.tracker != nil }

// StartedAt returns when the live session was opened.
func (v *VideoTracker) StartedAt() time.Time { return v.startedAt }

// Handle applies one video event. Events outside the vocabulary and events
// arriving without a live session are ignored.
func (v *VideoTracker) Handle(event models.TrackEvent, contextValues map[string]string) Outcome {
	tr, ok := videoTransitions[event.Event]
	if !ok {
		return Ignored(ReasonUnknownVideoEvent)
	}

	in := videoInput{event: event, properties: event.Properties, contextValues: contextValues}
	if in.properties == nil {
		in.properties = models.Map{}
	}

	if tr.opens {
		cfg := TrackerConfig{
			Channel:           in.properties.StringOr("channel", ""),
			DownloadedContent: true,
		}
		tracker, err := v.sink.CreateTracker(cfg)
		if err != nil {
			// A new start always replaces the prior session, even when the
			// replacement cannot be opened.
			logging.Warn().Err(err).Str("event", event.Event).Msg("Media tracker unavailable, video session not started")
			v.tracker = nil
			v.startedAt = time.Time{}
			v.transition(VideoIdle)
			return Dropped(ReasonTrackerUnavailable)
		}
		v.tracker = tracker
		v.startedAt = time.Now()
	} else if v.tracker == nil {
		logging.Debug().Str("event", event.Event).Msg("Video event without a live session ignored")
		return Ignored(ReasonNoVideoSession)
	}

	tr.step(v.tracker, in)

	to := tr.target
	if tr.hold {
		to = v.state
	}
	if tr.ends {
		v.tracker = nil
		v.startedAt = time.Time{}
	}
	v.transition(to)
	return Sent(event.Event)
}

func (v *VideoTracker) transition(to VideoState) {
	from := v.state
	v.state = to
	if from != to && v.OnTransition != nil {
		v.OnTransition(from, to)
	}
}
