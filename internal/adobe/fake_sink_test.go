// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"errors"
	"strings"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// call is one recorded sink invocation.
type call struct {
	op       string
	name     string
	data     models.Map
	event    MediaEvent
	info     any
	metadata Metadata
	position float64
	qoe      QoEInfo
	config   TrackerConfig
}

// fakeSink records calls in order. The tracker it hands out records into the
// same slice.
type fakeSink struct {
	calls     []call
	noTracker bool
}

var errNoTrackingServer = errors.New("tracking server not configured")

func (s *fakeSink) TrackAction(name string, data models.Map) {
	s.calls = append(s.calls, call{op: "trackAction", name: name, data: data})
}

func (s *fakeSink) TrackState(name string, data models.Map) {
	s.calls = append(s.calls, call{op: "trackState", name: name, data: data})
}

func (s *fakeSink) SetVisitorIdentifier(id string) {
	s.calls = append(s.calls, call{op: "setVisitorIdentifier", name: id})
}

func (s *fakeSink) ClearQueue() {
	s.calls = append(s.calls, call{op: "clearQueue"})
}

func (s *fakeSink) CreateTracker(cfg TrackerConfig) (MediaTracker, error) {
	if s.noTracker {
		return nil, errNoTrackingServer
	}
	s.calls = append(s.calls, call{op: "createTracker", config: cfg})
	return &fakeTracker{sink: s}, nil
}

// ops returns the recorded operation names, skipping createTracker.
func (s *fakeSink) ops() []string {
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		if c.op == "createTracker" {
			continue
		}
		if c.op == "trackEvent" {
			out = append(out, "trackEvent:"+string(c.event))
			continue
		}
		out = append(out, c.op)
	}
	return out
}

func (s *fakeSink) last() call {
	if len(s.calls) == 0 {
		return call{}
	}
	return s.calls[len(s.calls)-1]
}

func (s *fakeSink) find(op string) (call, bool) {
	for _, c := range s.calls {
		if c.op == op {
			return c, true
		}
	}
	return call{}, false
}

type fakeTracker struct {
	sink *fakeSink
}

func (t *fakeTracker) record(c call) { t.sink.calls = append(t.sink.calls, c) }

func (t *fakeTracker) SessionStart(info PlaybackInfo, metadata Metadata) {
	t.record(call{op: "sessionStart", info: info, metadata: metadata})
}
func (t *fakeTracker) Play()       { t.record(call{op: "play"}) }
func (t *fakeTracker) Pause()      { t.record(call{op: "pause"}) }
func (t *fakeTracker) Complete()   { t.record(call{op: "complete"}) }
func (t *fakeTracker) SessionEnd() { t.record(call{op: "sessionEnd"}) }
func (t *fakeTracker) UpdatePlayhead(position float64) {
	t.record(call{op: "updatePlayhead", position: position})
}
func (t *fakeTracker) TrackEvent(event MediaEvent, info MediaObject, metadata Metadata) {
	t.record(call{op: "trackEvent", event: event, info: info, metadata: metadata})
}
func (t *fakeTracker) UpdateQoE(qoe QoEInfo) {
	t.record(call{op: "updateQoE", qoe: qoe})
}

func joinOps(ops []string) string { return strings.Join(ops, ",") }
