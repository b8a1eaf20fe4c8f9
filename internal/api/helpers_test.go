// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/eventprocessor"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/sink"
)

const songSettings = `{
  "type": "initial",
  "settings": {"integrations": {"Adobe Analytics": {"eventsV2": {"Song Played": "songPlayed"}}}}
}`

// testEnv is a router backed by a real plugin writing to a recorder.
type testEnv struct {
	handler  http.Handler
	plugin   *adobe.Plugin
	recorder *sink.Recorder
}

func newTestEnv(t *testing.T, mw *ChiMiddleware) *testEnv {
	t.Helper()

	recorder := sink.NewRecorder(0)
	plugin := adobe.New(sink.New(recorder, sink.Options{TrackingServer: "example.hb.omtrdc.net"}))
	dh, err := eventprocessor.NewDestinationHandler(plugin, eventprocessor.DefaultHandlerConfig())
	if err != nil {
		t.Fatalf("NewDestinationHandler() error = %v", err)
	}

	h := NewHandler(eventprocessor.NewDirectIngestor(dh), plugin)
	h.ConfigureRecorder(recorder)

	return &testEnv{
		handler:  NewRouter(h, mw).SetupChi(),
		plugin:   plugin,
		recorder: recorder,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.handler, method, path, body)
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded APIResponse with the payload left raw.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata models.Metadata `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return env
}

// stubIngestor returns fixed results.
type stubIngestor struct {
	result models.IngestResult
	err    error
}

func (s *stubIngestor) IngestEvent(_ context.Context, env *models.Envelope) (models.IngestResult, error) {
	r := s.result
	r.MessageID = env.MessageID
	return r, s.err
}

func (s *stubIngestor) IngestSettings(_ context.Context, _ *models.SettingsUpdate) (models.IngestResult, error) {
	return s.result, s.err
}

// stubHealth returns a fixed aggregate.
type stubHealth struct {
	overall eventprocessor.OverallHealth
}

func (s stubHealth) CheckAll(context.Context) eventprocessor.OverallHealth {
	return s.overall
}
