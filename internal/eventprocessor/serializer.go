// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/validation"
)

// Serializer handles envelope and settings encoding for bus messages.
//
// Marshal validates before encoding so nothing invalid is ever published.
// Unmarshal only decodes: consumers decide separately what to do with a
// well-formed but invalid payload.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// MarshalEnvelope validates and encodes an envelope.
func (s *Serializer) MarshalEnvelope(env *models.Envelope) ([]byte, error) {
	if err := validation.ValidateStruct(env); err != nil {
		return nil, fmt.Errorf("validate envelope: %w", err)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// UnmarshalEnvelope decodes an envelope.
func (s *Serializer) UnmarshalEnvelope(data []byte) (*models.Envelope, error) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// MarshalSettings validates and encodes a settings update.
func (s *Serializer) MarshalSettings(update *models.SettingsUpdate) ([]byte, error) {
	if err := validation.ValidateStruct(update); err != nil {
		return nil, fmt.Errorf("validate settings update: %w", err)
	}

	data, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshal settings update: %w", err)
	}
	return data, nil
}

// UnmarshalSettings decodes a settings update.
func (s *Serializer) UnmarshalSettings(data []byte) (*models.SettingsUpdate, error) {
	var update models.SettingsUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("unmarshal settings update: %w", err)
	}
	return &update, nil
}
