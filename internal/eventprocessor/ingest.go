// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// Ingest outcomes reported for settings and queued events.
const (
	OutcomeQueued  = "queued"
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// Ingestor accepts events and settings from the HTTP API.
type Ingestor interface {
	IngestEvent(ctx context.Context, env *models.Envelope) (models.IngestResult, error)
	IngestSettings(ctx context.Context, update *models.SettingsUpdate) (models.IngestResult, error)
}

// BusIngestor publishes onto the bus; the router's handlers do the rest.
type BusIngestor struct {
	publisher *Publisher
}

// NewBusIngestor creates a BusIngestor.
func NewBusIngestor(publisher *Publisher) (*BusIngestor, error) {
	if publisher == nil {
		return nil, ErrNilPublisher
	}
	return &BusIngestor{publisher: publisher}, nil
}

// IngestEvent publishes env. The outcome is not known until a handler runs.
func (b *BusIngestor) IngestEvent(ctx context.Context, env *models.Envelope) (models.IngestResult, error) {
	if err := b.publisher.PublishEnvelope(ctx, env); err != nil {
		return models.IngestResult{MessageID: env.MessageID}, err
	}
	return models.IngestResult{MessageID: env.MessageID, Accepted: true, Outcome: OutcomeQueued}, nil
}

// IngestSettings publishes update.
func (b *BusIngestor) IngestSettings(ctx context.Context, update *models.SettingsUpdate) (models.IngestResult, error) {
	if err := b.publisher.PublishSettings(ctx, update); err != nil {
		return models.IngestResult{}, err
	}
	return models.IngestResult{Accepted: true, Outcome: OutcomeQueued}, nil
}

// DirectIngestor calls the handler in-process. It is used when the bus is
// disabled and reports the plugin's outcome synchronously.
type DirectIngestor struct {
	handler *DestinationHandler
}

// NewDirectIngestor creates a DirectIngestor.
func NewDirectIngestor(handler *DestinationHandler) *DirectIngestor {
	return &DirectIngestor{handler: handler}
}

// IngestEvent hands env straight to the plugin.
func (d *DirectIngestor) IngestEvent(ctx context.Context, env *models.Envelope) (models.IngestResult, error) {
	env.EnsureMessageID()
	outcome, err := d.handler.ProcessEnvelope(ctx, env)
	if err != nil {
		return models.IngestResult{MessageID: env.MessageID}, err
	}
	return models.IngestResult{
		MessageID: env.MessageID,
		Accepted:  true,
		Outcome:   string(outcome.Status),
		Reason:    outcome.Reason,
	}, nil
}

// IngestSettings offers update to the plugin.
func (d *DirectIngestor) IngestSettings(ctx context.Context, update *models.SettingsUpdate) (models.IngestResult, error) {
	applied, err := d.handler.ProcessSettings(ctx, update)
	if err != nil {
		return models.IngestResult{}, err
	}
	outcome := OutcomeIgnored
	if applied {
		outcome = OutcomeApplied
	}
	return models.IngestResult{Accepted: true, Outcome: outcome}, nil
}

var (
	_ Ingestor = (*BusIngestor)(nil)
	_ Ingestor = (*DirectIngestor)(nil)
)
