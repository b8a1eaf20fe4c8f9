// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/eventprocessor"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/sink"
	"github.com/tomtom215/adobe-destination/internal/validation"
)

// VideoStateSource reports the plugin's media session.
type VideoStateSource interface {
	VideoState() (adobe.VideoState, bool, time.Time)
}

// CallLister exposes captured sink calls.
type CallLister interface {
	Calls() []sink.Call
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	CheckAll(ctx context.Context) eventprocessor.OverallHealth
}

// Handler contains dependencies for API handlers.
//
// The ingestor is required. The video source, recorder and health reporter
// are optional; routes that need a missing one answer NOT_AVAILABLE.
type Handler struct {
	ingestor  eventprocessor.Ingestor
	video     VideoStateSource
	recorder  CallLister
	health    HealthReporter
	startTime time.Time
}

// NewHandler creates a handler around ingestor.
func NewHandler(ingestor eventprocessor.Ingestor, video VideoStateSource) *Handler {
	return &Handler{
		ingestor:  ingestor,
		video:     video,
		startTime: time.Now(),
	}
}

// ConfigureRecorder enables GET /v1/debug/calls.
func (h *Handler) ConfigureRecorder(recorder CallLister) {
	h.recorder = recorder
}

// ConfigureHealth sets the component health source for GET /health.
func (h *Handler) ConfigureHealth(health HealthReporter) {
	h.health = health
}

// Events handles POST /v1/events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	var env models.Envelope
	if !decodeBody(w, r, &env) {
		return
	}
	if verr := validation.ValidateStruct(&env); verr != nil {
		respondValidationError(w, verr)
		return
	}

	env.EnsureMessageID()
	ctx := logging.ContextWithMessageID(r.Context(), env.MessageID)

	result, err := h.ingestor.IngestEvent(ctx, &env)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == eventprocessor.OutcomeQueued {
		status = http.StatusAccepted
	}
	respondSuccess(w, status, result, result.MessageID)
}

// Settings handles POST /v1/settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	var update models.SettingsUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	if verr := validation.ValidateStruct(&update); verr != nil {
		respondValidationError(w, verr)
		return
	}

	result, err := h.ingestor.IngestSettings(r.Context(), &update)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == eventprocessor.OutcomeQueued {
		status = http.StatusAccepted
	}
	respondSuccess(w, status, result, "")
}

// VideoSession handles GET /v1/video/session.
func (h *Handler) VideoSession(w http.ResponseWriter, r *http.Request) {
	if h.video == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotAvailable, "Video session state is not available", nil)
		return
	}

	state, live, started := h.video.VideoState()
	status := models.VideoSessionStatus{
		State: state.String(),
		Live:  live,
	}
	if !started.IsZero() {
		status.Started = started.UTC().Format(time.RFC3339)
	}
	respondSuccess(w, http.StatusOK, status, "")
}

// DebugCalls handles GET /v1/debug/calls.
func (h *Handler) DebugCalls(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotAvailable, "Call recording requires the recorder sink", nil)
		return
	}
	respondSuccess(w, http.StatusOK, h.recorder.Calls(), "")
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status     string                                    `json:"status"`
	Uptime     float64                                   `json:"uptime_seconds"`
	Components map[string]eventprocessor.ComponentHealth `json:"components,omitempty"`
}

// Health handles GET /health. It answers 503 when any component is
// unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := healthResponse{
		Status: string(eventprocessor.HealthStatusHealthy),
		Uptime: time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if h.health != nil {
		overall := h.health.CheckAll(r.Context())
		body.Status = string(overall.Status)
		body.Components = overall.Components
		if !overall.Healthy {
			code = http.StatusServiceUnavailable
		}
	}
	respondSuccess(w, code, body, "")
}

// respondIngestError maps ingest failures. A closed publisher or an open
// circuit breaker is a temporary condition the client may retry.
func (h *Handler) respondIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventprocessor.ErrPublisherClosed),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		w.Header().Set("Retry-After", "5")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Event bus is unavailable", err)
	default:
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondValidationError(w, verr)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeIngest, "Failed to ingest", err)
	}
}
