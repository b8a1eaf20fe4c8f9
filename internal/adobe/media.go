// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

// Tracker configuration keys understood by the media SDK.
const (
	TrackerConfigChannel           = "config.channel"
	TrackerConfigDownloadedContent = "config.downloadedcontent"
)

// TrackerConfig configures a media tracker.
type TrackerConfig struct {
	// Channel overrides the channel configured for the property. Empty keeps
	// the configured one.
	Channel           string
	DownloadedContent bool
}

// Params renders the config in the SDK's key/value form.
func (c TrackerConfig) Params() map[string]any {
	out := map[string]any{
		TrackerConfigDownloadedContent: c.DownloadedContent,
	}
	if c.Channel != "" {
		out[TrackerConfigChannel] = c.Channel
	}
	return out
}

// StreamType distinguishes on-demand from live content.
type StreamType string

const (
	StreamVOD  StreamType = "vod"
	StreamLive StreamType = "live"
)

// MediaType is the media kind reported on session start.
type MediaType string

// MediaVideo is the only media type the destination reports.
const MediaVideo MediaType = "video"

// MediaEvent names a media sub-event passed to MediaTracker.TrackEvent.
type MediaEvent string

const (
	MediaAdBreakStart    MediaEvent = "AdBreakStart"
	MediaAdBreakComplete MediaEvent = "AdBreakComplete"
	MediaAdStart         MediaEvent = "AdStart"
	MediaAdComplete      MediaEvent = "AdComplete"
	MediaAdSkip          MediaEvent = "AdSkip"
	MediaChapterStart    MediaEvent = "ChapterStart"
	MediaChapterComplete MediaEvent = "ChapterComplete"
	MediaBufferStart     MediaEvent = "BufferStart"
	MediaBufferComplete  MediaEvent = "BufferComplete"
	MediaSeekStart       MediaEvent = "SeekStart"
	MediaSeekComplete    MediaEvent = "SeekComplete"
)

// Metadata is the stringified key/value metadata attached to media calls.
type Metadata map[string]string

// MediaObject is the info object attached to a media sub-event.
type MediaObject interface {
	ObjectType() string
}

// PlaybackInfo describes the main content of a media session.
type PlaybackInfo struct {
	Name       string     `json:"name"`
	ID         string     `json:"id"`
	Length     float64    `json:"length"`
	StreamType StreamType `json:"stream_type"`
	MediaType  MediaType  `json:"media_type"`
}

// ChapterInfo describes a content segment.
type ChapterInfo struct {
	Name      string  `json:"name"`
	Position  int     `json:"position"`
	Length    float64 `json:"length"`
	StartTime float64 `json:"start_time"`
}

// AdBreakInfo describes an ad pod.
type AdBreakInfo struct {
	Name      string  `json:"name"`
	Position  int     `json:"position"`
	StartTime float64 `json:"start_time"`
}

// AdInfo describes one ad inside a break.
type AdInfo struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Position int     `json:"position"`
	Length   float64 `json:"length"`
}

// QoEInfo is a quality-of-experience snapshot.
type QoEInfo struct {
	Bitrate       float64 `json:"bitrate"`
	StartupTime   float64 `json:"startup_time"`
	FPS           float64 `json:"fps"`
	DroppedFrames float64 `json:"dropped_frames"`
}

func (PlaybackInfo) ObjectType() string { return "playback" }
func (ChapterInfo) ObjectType() string  { return "chapter" }
func (AdBreakInfo) ObjectType() string  { return "adbreak" }
func (AdInfo) ObjectType() string       { return "ad" }
func (QoEInfo) ObjectType() string      { return "qoe" }
