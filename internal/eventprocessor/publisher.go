// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Publisher wraps a Watermill publisher with circuit breaker protection.
// It carries inbound envelopes, settings updates and, in bus sink mode, the
// outbound adobe.sdk.<op> calls.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	serializer     *Serializer
	mu             sync.RWMutex
	closed         bool
	logger         watermill.LoggerAdapter
}

// NewPublisher creates a Watermill NATS JetStream publisher. The stream must
// already exist (see StreamInitializer).
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return NewPublisherFrom(pub, logger), nil
}

// NewPublisherFrom wraps an existing Watermill publisher, e.g. a GoChannel in tests.
func NewPublisherFrom(pub message.Publisher, logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	return &Publisher{
		publisher:  pub,
		serializer: NewSerializer(),
		logger:     logger,
	}
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Publish sends a message to topic. The message UUID doubles as the
// Nats-Msg-Id so JetStream drops duplicates within the stream's window.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPublisherClosed
	}
	p.mu.RUnlock()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	if ctx != nil {
		msg.SetContext(ctx)
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = ExecuteWithBreaker(p.circuitBreaker, func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	if err != nil {
		metrics.RecordNATSPublishFailure(topic)
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.RecordNATSPublish(topic)
	return nil
}

// PublishEnvelope publishes an inbound event on destination.events.<type>.
// A message id is assigned when the envelope has none.
func (p *Publisher) PublishEnvelope(ctx context.Context, env *models.Envelope) error {
	id := env.EnsureMessageID()
	data, err := p.serializer.MarshalEnvelope(env)
	if err != nil {
		return err
	}

	msg := message.NewMessage(id, data)
	msg.Metadata.Set("type", string(env.Type))
	return p.Publish(ctx, EventTopic(env.Type), msg)
}

// PublishSettings publishes a settings update on destination.settings.
func (p *Publisher) PublishSettings(ctx context.Context, update *models.SettingsUpdate) error {
	data, err := p.serializer.MarshalSettings(update)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("type", string(update.Type))
	return p.Publish(ctx, TopicSettings, msg)
}

// Close shuts down the publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}

// WatermillPublisher returns the underlying Watermill publisher for
// components that need the native interface (the poison queue middleware).
func (p *Publisher) WatermillPublisher() message.Publisher {
	return p.publisher
}

// HealthCheck implements HealthCheckable.
func (p *Publisher) HealthCheck(_ context.Context) ComponentHealth {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return ComponentHealth{Healthy: false, Error: "publisher is closed"}
	}

	details := map[string]interface{}{}
	if p.circuitBreaker != nil {
		state := p.circuitBreaker.State()
		details["circuit_breaker_state"] = state.String()

		switch state {
		case gobreaker.StateOpen:
			return ComponentHealth{Healthy: false, Error: "circuit breaker is open", Details: details}
		case gobreaker.StateHalfOpen:
			return ComponentHealth{Healthy: true, Degraded: true, Message: "circuit breaker is half-open", Details: details}
		}
	}

	return ComponentHealth{Healthy: true, Message: "publisher is operational", Details: details}
}
