// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package services

import (
	"context"
	"fmt"
	"time"
)

// PipelineRunner is the lifecycle of the NATS event pipeline.
type PipelineRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// PipelineService runs the event pipeline under supervision: Start, wait
// for cancellation, then Shutdown with a fresh deadline.
type PipelineService struct {
	pipeline        PipelineRunner
	shutdownTimeout time.Duration
	name            string
}

// NewPipelineService wraps pipeline. A non-positive shutdownTimeout uses 30s,
// which covers the router's default close timeout.
func NewPipelineService(pipeline PipelineRunner, shutdownTimeout time.Duration) *PipelineService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &PipelineService{
		pipeline:        pipeline,
		shutdownTimeout: shutdownTimeout,
		name:            "event-pipeline",
	}
}

// Serve implements suture.Service. A Start failure is returned so the
// supervisor restarts the service with backoff.
func (s *PipelineService) Serve(ctx context.Context) error {
	if err := s.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("event pipeline start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.pipeline.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *PipelineService) String() string {
	return s.name
}
