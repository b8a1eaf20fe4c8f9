// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// ErrTrackingServerMissing is returned by CreateTracker when media tracking
// is not configured.
var ErrTrackingServerMissing = errors.New("media tracking server is not configured")

// Emitter delivers calls to their destination.
type Emitter interface {
	Emit(ctx context.Context, call Call) error
}

// Options configures a CallSink.
type Options struct {
	// TrackingServer is the media collection host. CreateTracker fails when
	// it is empty.
	TrackingServer string

	// EmitTimeout bounds a single Emit. Zero means no timeout.
	EmitTimeout time.Duration
}

// CallSink implements adobe.Sink by turning each operation into a Call and
// handing it to an Emitter. Delivery errors are logged and counted, never
// returned to the plugin.
type CallSink struct {
	emitter Emitter
	opts    Options
	now     func() time.Time
}

// New creates a CallSink over emitter.
func New(emitter Emitter, opts Options) *CallSink {
	return &CallSink{emitter: emitter, opts: opts, now: time.Now}
}

func (s *CallSink) emit(c Call) {
	c.Time = s.now().UTC()
	metrics.RecordSinkCall(string(c.Op))

	ctx := context.Background()
	if s.opts.EmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EmitTimeout)
		defer cancel()
	}
	if err := s.emitter.Emit(ctx, c); err != nil {
		metrics.RecordSinkError(string(c.Op))
		logging.Error().Err(err).Str("op", string(c.Op)).Str("name", c.Name).Msg("Failed to deliver sink call")
	}
}

// TrackAction implements adobe.Sink.
func (s *CallSink) TrackAction(name string, data models.Map) {
	s.emit(Call{Op: OpTrackAction, Name: name, Data: data})
}

// TrackState implements adobe.Sink.
func (s *CallSink) TrackState(name string, data models.Map) {
	s.emit(Call{Op: OpTrackState, Name: name, Data: data})
}

// SetVisitorIdentifier implements adobe.Sink.
func (s *CallSink) SetVisitorIdentifier(id string) {
	s.emit(Call{Op: OpSetVisitorIdentifier, Name: id})
}

// ClearQueue implements adobe.Sink.
func (s *CallSink) ClearQueue() {
	s.emit(Call{Op: OpClearQueue})
}

// CreateTracker implements adobe.Sink. Each tracker gets its own session id
// so consumers can group media calls.
func (s *CallSink) CreateTracker(cfg adobe.TrackerConfig) (adobe.MediaTracker, error) {
	if s.opts.TrackingServer == "" {
		return nil, ErrTrackingServerMissing
	}
	session := uuid.New().String()
	s.emit(Call{Op: OpCreateTracker, Config: cfg.Params(), Session: session})
	return &tracker{sink: s, session: session}, nil
}

type tracker struct {
	sink    *CallSink
	session string
}

func (t *tracker) emit(c Call) {
	c.Session = t.session
	t.sink.emit(c)
}

func (t *tracker) SessionStart(info adobe.PlaybackInfo, metadata adobe.Metadata) {
	t.emit(Call{Op: OpSessionStart, ObjectType: info.ObjectType(), Object: info, Metadata: metadata})
}

func (t *tracker) Play()       { t.emit(Call{Op: OpPlay}) }
func (t *tracker) Pause()      { t.emit(Call{Op: OpPause}) }
func (t *tracker) Complete()   { t.emit(Call{Op: OpComplete}) }
func (t *tracker) SessionEnd() { t.emit(Call{Op: OpSessionEnd}) }

func (t *tracker) UpdatePlayhead(position float64) {
	t.emit(Call{Op: OpUpdatePlayhead, Position: &position})
}

func (t *tracker) TrackEvent(event adobe.MediaEvent, info adobe.MediaObject, metadata adobe.Metadata) {
	c := Call{Op: OpTrackEvent, Name: string(event), Metadata: metadata}
	if info != nil {
		c.ObjectType = info.ObjectType()
		c.Object = info
	}
	t.emit(c)
}

func (t *tracker) UpdateQoE(qoe adobe.QoEInfo) {
	t.emit(Call{Op: OpUpdateQoE, ObjectType: qoe.ObjectType(), Object: qoe})
}
