// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"context"
	"sync"
)

// DefaultRecorderLimit bounds the calls kept by a Recorder.
const DefaultRecorderLimit = 1000

// Recorder keeps emitted calls in memory, oldest first. When full, the
// oldest calls are discarded.
type Recorder struct {
	mu    sync.RWMutex
	calls []Call
	limit int
}

// NewRecorder creates a Recorder keeping at most limit calls.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{limit: limit}
}

// Emit implements Emitter.
func (r *Recorder) Emit(_ context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if over := len(r.calls) - r.limit; over > 0 {
		r.calls = append(r.calls[:0:0], r.calls[over:]...)
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Op, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Op
	}
	return out
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
