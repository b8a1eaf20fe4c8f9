// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Op names one analytics SDK operation.
type Op string

const (
	OpTrackAction          Op = "trackAction"
	OpTrackState           Op = "trackState"
	OpSetVisitorIdentifier Op = "setVisitorIdentifier"
	OpClearQueue           Op = "clearQueue"
	OpCreateTracker        Op = "createTracker"
	OpSessionStart         Op = "sessionStart"
	OpPlay                 Op = "trackPlay"
	OpPause                Op = "trackPause"
	OpComplete             Op = "trackComplete"
	OpSessionEnd           Op = "sessionEnd"
	OpUpdatePlayhead       Op = "updatePlayhead"
	OpTrackEvent           Op = "trackEvent"
	OpUpdateQoE            Op = "updateQoE"
)

// Call is one operation issued against the analytics SDK.
type Call struct {
	Op         Op                `json:"op"`
	Name       string            `json:"name,omitempty"`
	Data       models.Map        `json:"data,omitempty"`
	Metadata   adobe.Metadata    `json:"metadata,omitempty"`
	ObjectType string            `json:"object_type,omitempty"`
	Object     adobe.MediaObject `json:"object,omitempty"`
	Position   *float64          `json:"position,omitempty"`
	Config     map[string]any    `json:"config,omitempty"`
	Session    string            `json:"session,omitempty"`
	Time       time.Time         `json:"time"`
}

// Encode serializes the call as JSON.
func (c Call) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// DecodeCall parses a call produced by Encode. The media object is decoded
// as a generic map since its concrete type is only known to the producer.
func DecodeCall(data []byte) (DecodedCall, error) {
	var c DecodedCall
	err := json.Unmarshal(data, &c)
	return c, err
}

// DecodedCall is the consumer-side view of an encoded Call.
type DecodedCall struct {
	Op         Op                `json:"op"`
	Name       string            `json:"name,omitempty"`
	Data       models.Map        `json:"data,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	ObjectType string            `json:"object_type,omitempty"`
	Object     models.Map        `json:"object,omitempty"`
	Position   *float64          `json:"position,omitempty"`
	Config     map[string]any    `json:"config,omitempty"`
	Session    string            `json:"session,omitempty"`
	Time       time.Time         `json:"time"`
}
