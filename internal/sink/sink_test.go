// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
)

func TestCallSinkRecordsInOrder(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(0)
	s := New(rec, Options{TrackingServer: "media.example.com"})

	s.SetVisitorIdentifier("user-1")
	s.TrackAction("Registration", models.Map{"evar1": models.String("a@b.com")})
	s.TrackState("Home", nil)

	tr, err := s.CreateTracker(adobe.TrackerConfig{Channel: "espn", DownloadedContent: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tr.SessionStart(adobe.PlaybackInfo{Name: "Pilot", StreamType: adobe.StreamVOD, MediaType: adobe.MediaVideo}, adobe.Metadata{"a.media.show": "Show"})
	tr.Pause()
	tr.Play()
	tr.UpdatePlayhead(12)
	tr.TrackEvent(adobe.MediaBufferComplete, nil, nil)
	tr.Complete()
	tr.SessionEnd()
	s.ClearQueue()

	want := []Op{
		OpSetVisitorIdentifier, OpTrackAction, OpTrackState, OpCreateTracker,
		OpSessionStart, OpPause, OpPlay, OpUpdatePlayhead, OpTrackEvent,
		OpComplete, OpSessionEnd, OpClearQueue,
	}
	got := rec.Ops()
	if len(got) != len(want) {
		t.Fatalf("Expected %d calls, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	calls := rec.Calls()
	session := calls[3].Session
	if session == "" {
		t.Fatal("Expected tracker session id")
	}
	for _, c := range calls[4:11] {
		if c.Session != session {
			t.Errorf("Expected %s to carry session %s, got %q", c.Op, session, c.Session)
		}
	}
	if calls[3].Config[adobe.TrackerConfigChannel] != "espn" {
		t.Errorf("Expected channel in tracker config, got %v", calls[3].Config)
	}
	if calls[7].Position == nil || *calls[7].Position != 12 {
		t.Errorf("Expected playhead 12, got %v", calls[7].Position)
	}
	if calls[8].Name != string(adobe.MediaBufferComplete) || calls[8].Object != nil {
		t.Errorf("Expected BufferComplete without object, got %+v", calls[8])
	}
}

func TestCreateTrackerWithoutTrackingServer(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(0)
	s := New(rec, Options{})

	if _, err := s.CreateTracker(adobe.TrackerConfig{}); !errors.Is(err, ErrTrackingServerMissing) {
		t.Errorf("Expected ErrTrackingServerMissing, got %v", err)
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("Expected no calls, got %v", rec.Ops())
	}
}

func TestRecorderLimit(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(2)
	s := New(rec, Options{})
	s.TrackAction("a", nil)
	s.TrackAction("b", nil)
	s.TrackAction("c", nil)

	calls := rec.Calls()
	if len(calls) != 2 || calls[0].Name != "b" || calls[1].Name != "c" {
		t.Errorf("Expected the two newest calls, got %+v", calls)
	}

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Error("Expected reset to clear calls")
	}
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, Call) error { return errors.New("bus down") }

func TestCallSinkCountsErrors(t *testing.T) {
	t.Parallel()

	counter := metrics.SinkErrors.WithLabelValues(string(OpClearQueue))
	before := testutil.ToFloat64(counter)

	New(failingEmitter{}, Options{}).ClearQueue()

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("Expected sink error counter to increase by 1, got %v", got)
	}
}

func TestLogEmitter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s := New(NewLogEmitter(logger), Options{})

	s.TrackAction("purchase", models.Map{"&&products": models.String("Games;2013294;1;21.99")})

	out := buf.String()
	for _, want := range []string{`"op":"trackAction"`, `"name":"purchase"`, `Games;2013294;1;21.99`, `"component":"adobe-sink"`} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("Expected log line to contain %s, got %s", want, out)
		}
	}
}

func TestCallEncodeDecode(t *testing.T) {
	t.Parallel()

	position := 4.5
	c := Call{
		Op:         OpTrackEvent,
		Name:       string(adobe.MediaChapterStart),
		ObjectType: "chapter",
		Object:     adobe.ChapterInfo{Name: "Intro", Position: 1, Length: 60},
		Metadata:   adobe.Metadata{"a.media.show": "Show"},
		Position:   &position,
		Session:    "s-1",
	}
	data, err := c.Encode()
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := DecodeCall(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.Op != OpTrackEvent || decoded.Name != "ChapterStart" {
		t.Errorf("Unexpected op/name %s %s", decoded.Op, decoded.Name)
	}
	if decoded.Object.StringOr("name", "") != "Intro" || decoded.Object.FloatOr("length", 0) != 60 {
		t.Errorf("Unexpected object %#v", decoded.Object)
	}
	if decoded.Metadata["a.media.show"] != "Show" {
		t.Errorf("Unexpected metadata %v", decoded.Metadata)
	}
}
