// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"testing"

	"github.com/tomtom215/adobe-destination/internal/models"
)

func videoEvent(name string, properties models.Map) models.TrackEvent {
	return models.TrackEvent{Event: name, Properties: properties, Context: models.Map{}}
}

func TestVideoSessionSequence(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)

	for _, name := range []string{VideoPlaybackStarted, VideoPlaybackPaused, VideoPlaybackResumed, VideoPlaybackCompleted} {
		if out := tracker.Handle(videoEvent(name, models.Map{}), nil); out.Status != StatusSent {
			t.Fatalf("Expected %s to be sent, got %+v", name, out)
		}
	}

	want := "sessionStart,pause,play,complete,sessionEnd"
	if got := joinOps(sink.ops()); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if tracker.Live() {
		t.Error("Expected session to be closed after completion")
	}
	if tracker.State() != VideoIdle {
		t.Errorf("Expected idle state, got %s", tracker.State())
	}
}

func TestVideoTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event     string
		wantOps   string
		wantState VideoState
	}{
		{VideoPlaybackPaused, "pause", VideoPaused},
		{VideoPlaybackInterrupted, "pause", VideoPaused},
		{VideoPlaybackResumed, "play", VideoPlaying},
		{VideoPlaybackBufferStarted, "pause,trackEvent:BufferStart", VideoBuffering},
		{VideoPlaybackBufferComplete, "play,updatePlayhead,trackEvent:BufferComplete", VideoPlaying},
		{VideoPlaybackSeekStarted, "pause,trackEvent:SeekStart", VideoSeeking},
		{VideoPlaybackSeekCompleted, "play,updatePlayhead,trackEvent:SeekComplete", VideoPlaying},
		{VideoContentStarted, "play,trackEvent:ChapterStart", VideoPlaying},
		{VideoContentCompleted, "trackEvent:ChapterComplete", VideoPlaying},
		{VideoAdBreakStarted, "trackEvent:AdBreakStart", VideoAdBreak},
		{VideoAdBreakCompleted, "trackEvent:AdBreakComplete", VideoPlaying},
		{VideoAdStarted, "trackEvent:AdStart", VideoAd},
		{VideoAdSkipped, "trackEvent:AdSkip", VideoAdBreak},
		{VideoAdCompleted, "trackEvent:AdComplete", VideoAdBreak},
		{VideoQualityUpdated, "updateQoE", VideoPlaying},
		{VideoPlaybackCompleted, "complete,sessionEnd", VideoIdle},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			sink := &fakeSink{}
			tracker := NewVideoTracker(sink)
			tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)
			sink.calls = nil

			if out := tracker.Handle(videoEvent(tt.event, models.Map{"position": models.Number(12.5)}), nil); out.Status != StatusSent {
				t.Fatalf("Expected sent outcome, got %+v", out)
			}
			if got := joinOps(sink.ops()); got != tt.wantOps {
				t.Errorf("Expected calls %s, got %s", tt.wantOps, got)
			}
			if tracker.State() != tt.wantState {
				t.Errorf("Expected state %s, got %s", tt.wantState, tracker.State())
			}
		})
	}
}

func TestVideoVocabularySize(t *testing.T) {
	t.Parallel()

	if len(videoTransitions) != 17 {
		t.Errorf("Expected 17 video events, got %d", len(videoTransitions))
	}
	if IsVideoEvent("Video Playback Exited") {
		t.Error("Expected unknown video name to be outside the vocabulary")
	}
}

func TestVideoSessionStart(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)

	properties := models.Map{
		"title":            models.String("Pilot"),
		"content_asset_id": models.String("c-1"),
		"total_length":     models.Number(1800),
		"livestream":       models.Bool(true),
		"channel":          models.String("espn"),
		"program":          models.String("Show"),
		"season":           models.Int(2),
		"genre":            models.String("Drama"),
	}
	event := models.TrackEvent{
		Event:      VideoPlaybackStarted,
		Properties: properties,
		Context:    models.Map{"traits": models.Object(models.Map{"email": models.String("a@b.com")})},
	}
	contextValues := map[string]string{"traits.email": "evar1", "genre": MetaGenre}

	tracker.Handle(event, contextValues)

	created, ok := sink.find("createTracker")
	if !ok {
		t.Fatal("Expected a tracker to be created")
	}
	if created.config.Channel != "espn" || !created.config.DownloadedContent {
		t.Errorf("Expected channel override and downloaded content, got %+v", created.config)
	}

	start, ok := sink.find("sessionStart")
	if !ok {
		t.Fatal("Expected sessionStart")
	}
	info := start.info.(PlaybackInfo)
	want := PlaybackInfo{Name: "Pilot", ID: "c-1", Length: 1800, StreamType: StreamLive, MediaType: MediaVideo}
	if info != want {
		t.Errorf("Expected %+v, got %+v", want, info)
	}

	wantMeta := map[string]string{
		MetaShow:         "Show",
		MetaSeason:       "2",
		MetaGenre:        "Drama",
		MetaNetwork:      "espn",
		MetaStreamFormat: "live",
		"evar1":          "a@b.com",
	}
	for k, v := range wantMeta {
		if start.metadata[k] != v {
			t.Errorf("Expected metadata %s=%q, got %q", k, v, start.metadata[k])
		}
	}
}

func TestVideoContextOverridesStandardMetadata(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)
	event := models.TrackEvent{
		Event:      VideoPlaybackStarted,
		Properties: models.Map{"program": models.String("Standard"), "show_name": models.String("Mapped")},
		Context:    models.Map{},
	}

	tracker.Handle(event, map[string]string{"show_name": MetaShow})

	start, _ := sink.find("sessionStart")
	if got := start.metadata[MetaShow]; got != "Mapped" {
		t.Errorf("Expected context value to win, got %q", got)
	}
}

func TestVideoTrackerUnavailable(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{noTracker: true}
	tracker := NewVideoTracker(sink)

	out := tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)
	if out.Status != StatusDropped || out.Reason != ReasonTrackerUnavailable {
		t.Errorf("Expected dropped/tracker_unavailable, got %+v", out)
	}
	if len(sink.calls) != 0 {
		t.Errorf("Expected no calls, got %v", sink.ops())
	}
	if tracker.Live() {
		t.Error("Expected no live session")
	}
}

func TestVideoEventWithoutSession(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)

	out := tracker.Handle(videoEvent(VideoPlaybackPaused, nil), nil)
	if out.Status != StatusIgnored || out.Reason != ReasonNoVideoSession {
		t.Errorf("Expected ignored/no_video_session, got %+v", out)
	}
	if len(sink.calls) != 0 {
		t.Errorf("Expected no calls, got %v", sink.ops())
	}
}

func TestVideoStartReplacesSession(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)

	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)
	tracker.Handle(videoEvent(VideoPlaybackPaused, models.Map{}), nil)
	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)

	creates := 0
	for _, c := range sink.calls {
		if c.op == "createTracker" {
			creates++
		}
	}
	if creates != 2 {
		t.Errorf("Expected 2 trackers, got %d", creates)
	}
	if tracker.State() != VideoPlaying {
		t.Errorf("Expected playing after restart, got %s", tracker.State())
	}
}

func TestVideoFailedStartClearsPriorSession(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)

	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{"title": models.String("A")}), nil)
	before := len(sink.ops())

	sink.noTracker = true
	out := tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{"title": models.String("B")}), nil)
	if out.Status != StatusDropped || out.Reason != ReasonTrackerUnavailable {
		t.Errorf("Expected dropped/tracker_unavailable, got %+v", out)
	}
	if tracker.Live() {
		t.Error("Expected the prior session to be released")
	}
	if tracker.State() != VideoIdle {
		t.Errorf("Expected idle, got %s", tracker.State())
	}
	if !tracker.StartedAt().IsZero() {
		t.Errorf("Expected zero start time, got %v", tracker.StartedAt())
	}

	for _, name := range []string{VideoPlaybackPaused, VideoQualityUpdated, VideoPlaybackCompleted} {
		out = tracker.Handle(videoEvent(name, models.Map{}), nil)
		if out.Status != StatusIgnored || out.Reason != ReasonNoVideoSession {
			t.Errorf("Expected %s ignored/no_video_session, got %+v", name, out)
		}
	}
	if got := sink.ops(); len(got) != before {
		t.Errorf("Expected no calls on the old session, got %v", got[before:])
	}
}

func TestVideoPlayhead(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)
	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)

	tracker.Handle(videoEvent(VideoPlaybackSeekCompleted, models.Map{"position": models.Number(42)}), nil)
	playhead, _ := sink.find("updatePlayhead")
	if playhead.position != 42 {
		t.Errorf("Expected playhead 42, got %v", playhead.position)
	}

	sink.calls = nil
	tracker.Handle(videoEvent(VideoPlaybackBufferComplete, models.Map{"position": models.String("x")}), nil)
	playhead, _ = sink.find("updatePlayhead")
	if playhead.position != 0 {
		t.Errorf("Expected default playhead 0, got %v", playhead.position)
	}
}

func TestVideoQualityUpdated(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)
	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)

	event := models.TrackEvent{
		Event: VideoQualityUpdated,
		Properties: models.Map{
			"bitrate":        models.Int(500),
			"startup_time":   models.Int(2),
			"fps":            models.Int(30),
			"dropped_frames": models.Int(1),
		},
		Context: models.Map{},
	}
	contextValues := map[string]string{
		"bitrate":        "bitrate",
		"startup_time":   "startup_time",
		"fps":            "fps",
		"dropped_frames": "dropped_frames",
	}
	tracker.Handle(event, contextValues)

	c, ok := sink.find("updateQoE")
	if !ok {
		t.Fatal("Expected updateQoE call")
	}
	want := QoEInfo{Bitrate: 500, StartupTime: 2, FPS: 30, DroppedFrames: 1}
	if c.qoe != want {
		t.Errorf("Expected %+v, got %+v", want, c.qoe)
	}

	sink.calls = nil
	tracker.Handle(models.TrackEvent{Event: VideoQualityUpdated}, nil)
	c, _ = sink.find("updateQoE")
	if c.qoe != (QoEInfo{}) {
		t.Errorf("Expected zero QoE without a bundle, got %+v", c.qoe)
	}
}

func TestVideoMediaObjects(t *testing.T) {
	t.Parallel()

	properties := models.Map{
		"title":         models.String("Segment"),
		"asset_id":      models.String("ad-1"),
		"indexPosition": models.Int(3),
		"total_length":  models.Number(30),
		"start_time":    models.Number(600),
	}

	sink := &fakeSink{}
	tracker := NewVideoTracker(sink)
	tracker.Handle(videoEvent(VideoPlaybackStarted, models.Map{}), nil)

	tracker.Handle(videoEvent(VideoContentStarted, properties), nil)
	tracker.Handle(videoEvent(VideoAdBreakStarted, properties), nil)
	tracker.Handle(videoEvent(VideoAdStarted, properties), nil)

	var chapter, adBreak, ad call
	for _, c := range sink.calls {
		switch c.event {
		case MediaChapterStart:
			chapter = c
		case MediaAdBreakStart:
			adBreak = c
		case MediaAdStart:
			ad = c
		}
	}

	if got := chapter.info.(ChapterInfo); got != (ChapterInfo{Name: "Segment", Position: 3, Length: 30, StartTime: 600}) {
		t.Errorf("Unexpected chapter info %+v", got)
	}
	if got := adBreak.info.(AdBreakInfo); got != (AdBreakInfo{Name: "Segment", Position: 3, StartTime: 600}) {
		t.Errorf("Unexpected ad break info %+v", got)
	}
	if adBreak.metadata != nil {
		t.Errorf("Expected no ad break metadata, got %v", adBreak.metadata)
	}
	if got := ad.info.(AdInfo); got != (AdInfo{Name: "Segment", ID: "ad-1", Position: 3, Length: 30}) {
		t.Errorf("Unexpected ad info %+v", got)
	}
	if ad.metadata[MetaAsset] != "ad-1" {
		t.Errorf("Expected ad metadata asset 'ad-1', got %q", ad.metadata[MetaAsset])
	}
}

func TestStandardMetadataPublisher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		kind           objectKind
		publisher      models.Value
		wantAdvertiser string
		hasAdvertiser  bool
		wantOriginator string
		hasOriginator  bool
	}{
		{"ad with publisher", objectAd, models.String("Acme"), "Acme", true, "", false},
		{"ad with empty publisher still maps", objectAd, models.String(""), "", true, "", false},
		{"ad break with publisher", objectAdBreak, models.String("Acme"), "Acme", true, "", false},
		{"ad break with empty publisher", objectAdBreak, models.String(""), "", false, "", false},
		{"content with publisher", objectContent, models.String("Studio"), "", false, "Studio", true},
		{"content with empty publisher", objectContent, models.String(""), "", false, "", false},
		{"playback ignores publisher", objectPlayback, models.String("Studio"), "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := standardMetadata(models.Map{"publisher": tt.publisher}, tt.kind)

			advertiser, ok := meta[MetaAdvertiser]
			if ok != tt.hasAdvertiser || advertiser != tt.wantAdvertiser {
				t.Errorf("Expected advertiser (%q, %v), got (%q, %v)", tt.wantAdvertiser, tt.hasAdvertiser, advertiser, ok)
			}
			originator, ok := meta[MetaOriginator]
			if ok != tt.hasOriginator || originator != tt.wantOriginator {
				t.Errorf("Expected originator (%q, %v), got (%q, %v)", tt.wantOriginator, tt.hasOriginator, originator, ok)
			}
		})
	}
}

func TestStandardMetadataStreamFormat(t *testing.T) {
	t.Parallel()

	if got := standardMetadata(models.Map{}, objectPlayback)[MetaStreamFormat]; got != "vod" {
		t.Errorf("Expected default vod, got %q", got)
	}
	if got := standardMetadata(models.Map{"livestream": models.Bool(true)}, objectPlayback)[MetaStreamFormat]; got != "live" {
		t.Errorf("Expected live, got %q", got)
	}
	meta := standardMetadata(models.Map{"airdate": models.String("2026-01-01"), "episode": models.String("4")}, objectContent)
	if meta[MetaFirstAirDate] != "2026-01-01" || meta[MetaEpisode] != "4" {
		t.Errorf("Expected airdate and episode mapped, got %v", meta)
	}
}

func TestVideoStateString(t *testing.T) {
	t.Parallel()

	if VideoAdBreak.String() != "ad_break" {
		t.Errorf("Expected ad_break, got %s", VideoAdBreak.String())
	}
	if VideoState(99).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", VideoState(99).String())
	}
}
