// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package sink

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// DefaultSubjectPrefix is the subject prefix of published calls.
const DefaultSubjectPrefix = "adobe.sdk"

// Publisher publishes one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// BusEmitter publishes each call as JSON to "<prefix>.<op>".
type BusEmitter struct {
	publisher Publisher
	prefix    string
}

// NewBusEmitter creates a BusEmitter. An empty prefix uses DefaultSubjectPrefix.
func NewBusEmitter(publisher Publisher, prefix string) *BusEmitter {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &BusEmitter{publisher: publisher, prefix: prefix}
}

// Subject returns the subject a call with op is published on.
func (e *BusEmitter) Subject(op Op) string {
	return e.prefix + "." + string(op)
}

// Emit implements Emitter.
func (e *BusEmitter) Emit(ctx context.Context, c Call) error {
	payload, err := c.Encode()
	if err != nil {
		return fmt.Errorf("encode %s call: %w", c.Op, err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set("op", string(c.Op))
	if c.Session != "" {
		msg.Metadata.Set("session", c.Session)
	}
	msg.SetContext(ctx)

	if err := e.publisher.Publish(ctx, e.Subject(c.Op), msg); err != nil {
		return fmt.Errorf("publish %s call: %w", c.Op, err)
	}
	return nil
}
