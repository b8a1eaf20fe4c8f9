// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/adobe-destination/internal/config"
	"github.com/tomtom215/adobe-destination/internal/eventprocessor"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/sink"
)

// errNoHandler is returned by Start when no destination handler is wired.
var errNoHandler = errors.New("destination handler not wired")

// NATSComponents holds the bus infrastructure and the router that feeds the
// plugin.
//
// The server, connection, stream and publisher live for the whole process:
// the bus sink and the HTTP ingest path publish through them. The router
// and its subscribers are built on every Start and torn down on Shutdown,
// since a closed Watermill router cannot be run again.
type NATSComponents struct {
	cfg config.NATSConfig

	server            *eventprocessor.EmbeddedServer
	natsConn          *natsgo.Conn
	streamInitializer *eventprocessor.StreamInitializer
	publisher         *eventprocessor.Publisher
	breaker           *gobreaker.CircuitBreaker[interface{}]
	healthChecker     *eventprocessor.HealthChecker
	natsURL           string

	handler *eventprocessor.DestinationHandler

	router             *eventprocessor.Router
	eventsSubscriber   *eventprocessor.Subscriber
	settingsSubscriber *eventprocessor.Subscriber

	mu      sync.Mutex
	running bool
}

// InitNATS starts (or connects to) NATS, makes sure the stream exists and
// creates the breaker-guarded publisher. Handlers are wired separately with
// WireHandler once the plugin exists.
//
// subjectPrefix is the bus sink prefix; a non-default prefix is added to
// the stream subjects so published calls are retained.
func InitNATS(ctx context.Context, cfg config.NATSConfig, subjectPrefix string) (*NATSComponents, error) {
	logging.Info().Msg("Initializing NATS event processing...")

	components := &NATSComponents{
		cfg:           cfg,
		healthChecker: eventprocessor.NewHealthChecker(5 * time.Second),
	}

	// Step 1: Embedded server or external URL
	if cfg.EmbeddedServer {
		host, port, err := embeddedHostPort(cfg.URL)
		if err != nil {
			return nil, err
		}
		server, err := eventprocessor.NewEmbeddedServer(&eventprocessor.ServerConfig{
			Host:              host,
			Port:              port,
			StoreDir:          cfg.StoreDir,
			JetStreamMaxMem:   cfg.MaxMemory,
			JetStreamMaxStore: cfg.MaxStore,
		})
		if err != nil {
			return nil, err
		}
		components.server = server
		components.natsURL = server.ClientURL()
		components.healthChecker.RegisterComponent("nats_server", server)
		logging.Info().Str("url", components.natsURL).Msg("Embedded NATS server started")
	} else {
		components.natsURL = cfg.URL
		logging.Info().Str("url", components.natsURL).Msg("Using external NATS server")
	}

	// Step 2: Connection used for stream management
	nc, err := natsgo.Connect(components.natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		components.Close(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc
	logging.Info().Msg("NATS connection established")

	// Step 3: JetStream stream
	js, err := jetstream.New(nc)
	if err != nil {
		components.Close(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := streamConfigFor(cfg, subjectPrefix)
	streamInitializer, err := eventprocessor.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		components.Close(context.Background())
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}
	components.streamInitializer = streamInitializer
	components.healthChecker.RegisterComponent("stream", streamInitializer)

	stream, err := streamInitializer.EnsureStream(ctx)
	if err != nil {
		components.Close(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	// Step 4: Publisher behind a circuit breaker
	publisher, err := eventprocessor.NewPublisher(eventprocessor.DefaultPublisherConfig(components.natsURL), logging.NewWatermillAdapter())
	if err != nil {
		components.Close(context.Background())
		return nil, err
	}
	breakerCfg := eventprocessor.DefaultCircuitBreakerConfig("nats-publisher")
	if cfg.BreakerFailureThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.BreakerFailureThreshold
	}
	if cfg.BreakerTimeout > 0 {
		breakerCfg.Timeout = cfg.BreakerTimeout
	}
	components.breaker = eventprocessor.NewCircuitBreaker(breakerCfg)
	publisher.SetCircuitBreaker(components.breaker)
	components.publisher = publisher
	components.healthChecker.RegisterComponent("publisher", publisher)
	logging.Info().Uint32("breaker_threshold", breakerCfg.FailureThreshold).Msg("NATS publisher created")

	return components, nil
}

// embeddedHostPort extracts the listen address for the embedded server from
// the configured client URL. A URL without a port listens on 4222.
func embeddedHostPort(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS url %q: %w", raw, err)
	}
	host := u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := 4222
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("parse NATS port %q: %w", net.JoinHostPort(host, p), err)
		}
	}
	return host, port, nil
}

// streamConfigFor applies the NATS settings to the default stream config.
func streamConfigFor(cfg config.NATSConfig, subjectPrefix string) eventprocessor.StreamConfig {
	streamCfg := eventprocessor.DefaultStreamConfig()
	if cfg.StreamName != "" {
		streamCfg.Name = cfg.StreamName
	}
	if cfg.StreamRetention > 0 {
		streamCfg.MaxAge = cfg.StreamRetention
	}
	if cfg.DuplicateWindow > 0 {
		streamCfg.DuplicateWindow = cfg.DuplicateWindow
	}
	if cfg.MaxStore > 0 {
		streamCfg.MaxBytes = cfg.MaxStore
	}
	if subjectPrefix != "" && subjectPrefix != sink.DefaultSubjectPrefix {
		streamCfg.Subjects = append(streamCfg.Subjects, subjectPrefix+".>")
	}
	return streamCfg
}

// routerConfigFor maps the router settings onto eventprocessor.RouterConfig.
func routerConfigFor(cfg config.NATSConfig) eventprocessor.RouterConfig {
	routerCfg := eventprocessor.DefaultRouterConfig()
	if cfg.RouterCloseTimeout > 0 {
		routerCfg.CloseTimeout = cfg.RouterCloseTimeout
	}
	if cfg.RouterRetryCount >= 0 {
		routerCfg.RetryMaxRetries = cfg.RouterRetryCount
	}
	if cfg.RouterRetryInitialInterval > 0 {
		routerCfg.RetryInitialInterval = cfg.RouterRetryInitialInterval
	}
	if cfg.RouterRetryMaxInterval > 0 {
		routerCfg.RetryMaxInterval = cfg.RouterRetryMaxInterval
	}
	routerCfg.ThrottlePerSecond = int64(cfg.RouterThrottlePerSecond)
	routerCfg.PoisonQueueTopic = ""
	if cfg.RouterPoisonQueueEnabled {
		routerCfg.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
	}
	return routerCfg
}

// subscriberConfigFor returns the config of the subscriber for one handler.
// Each handler gets its own durable consumer.
func (c *NATSComponents) subscriberConfigFor(suffix string) eventprocessor.SubscriberConfig {
	subCfg := eventprocessor.DefaultSubscriberConfig(c.natsURL)
	subCfg.DurableName = c.cfg.DurableName + "-" + suffix
	subCfg.QueueGroup = c.cfg.QueueGroup + "-" + suffix
	subCfg.StreamName = c.streamInitializer.Config().Name
	if c.cfg.AckWait > 0 {
		subCfg.AckWaitTimeout = c.cfg.AckWait
	}
	if c.cfg.MaxDeliver > 0 {
		subCfg.MaxDeliver = c.cfg.MaxDeliver
	}
	return subCfg
}

// Publisher returns the shared publisher.
func (c *NATSComponents) Publisher() *eventprocessor.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// HealthChecker returns the checker holding the bus components.
func (c *NATSComponents) HealthChecker() *eventprocessor.HealthChecker {
	if c == nil {
		return nil
	}
	return c.healthChecker
}

// WireHandler sets the handler the router feeds on the next Start.
func (c *NATSComponents) WireHandler(handler *eventprocessor.DestinationHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
	c.healthChecker.RegisterComponent("handler", handler)
}

// Start builds the router with the settings and events handlers and waits
// until it is running. It is a no-op while already running.
func (c *NATSComponents) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if c.handler == nil {
		return errNoHandler
	}

	if err := c.buildRouter(); err != nil {
		c.closeSubscribers()
		return err
	}

	logging.Info().Msg("Starting Watermill Router...")
	router := c.router
	runErr := make(chan error, 1)
	go func() {
		runErr <- router.Run(ctx)
	}()

	select {
	case <-router.Running():
		logging.Info().Int("handlers", router.Handlers()).Msg("Watermill Router started successfully")
	case err := <-runErr:
		c.closeSubscribers()
		if err == nil {
			err = errors.New("router exited before running")
		}
		return fmt.Errorf("run router: %w", err)
	case <-ctx.Done():
		_ = router.Close()
		c.closeSubscribers()
		return fmt.Errorf("context canceled while starting router: %w", ctx.Err())
	}

	c.healthChecker.RegisterComponent("router", router)
	c.running = true
	return nil
}

// buildRouter creates a fresh router and one subscriber per handler.
// Settings get their own consumer so a backlog of events cannot delay them.
func (c *NATSComponents) buildRouter() error {
	logger := logging.NewWatermillAdapter()

	routerCfg := routerConfigFor(c.cfg)
	router, err := eventprocessor.NewRouter(&routerCfg, c.publisher.WatermillPublisher(), logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	settingsCfg := c.subscriberConfigFor("settings")
	settingsSub, err := eventprocessor.NewSubscriber(&settingsCfg, logger)
	if err != nil {
		return fmt.Errorf("create settings subscriber: %w", err)
	}
	c.settingsSubscriber = settingsSub

	eventsCfg := c.subscriberConfigFor("events")
	eventsSub, err := eventprocessor.NewSubscriber(&eventsCfg, logger)
	if err != nil {
		return fmt.Errorf("create events subscriber: %w", err)
	}
	c.eventsSubscriber = eventsSub

	router.AddConsumerHandler(eventprocessor.HandlerSettings, eventprocessor.TopicSettings, settingsSub, c.handler.HandleSettings)
	router.AddConsumerHandler(eventprocessor.HandlerEvents, eventprocessor.TopicEventsAll, eventsSub, c.handler.HandleEvent)
	c.router = router

	logging.Info().
		Str("settings_durable", settingsCfg.DurableName).
		Str("events_durable", eventsCfg.DurableName).
		Str("poison_topic", routerCfg.PoisonQueueTopic).
		Msg("Destination handlers registered with Router")
	return nil
}

// Shutdown stops the router and closes its subscribers. The publisher and
// the connection stay open for the sink and the API; Close releases them.
func (c *NATSComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false

	logging.Info().Msg("Stopping NATS router...")
	c.shutdownRouter()
	c.closeSubscribers()
	if ctx.Err() != nil {
		logging.Warn().Err(ctx.Err()).Msg("Router shutdown exceeded its deadline")
	}
	logging.Info().Msg("NATS router stopped")
}

// shutdownRouter stops the Watermill Router.
func (c *NATSComponents) shutdownRouter() {
	if c.router == nil {
		return
	}
	if err := c.router.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing Router")
	}
	c.router = nil
}

// closeSubscribers closes both subscribers concurrently.
func (c *NATSComponents) closeSubscribers() {
	var g errgroup.Group
	for name, sub := range map[string]*eventprocessor.Subscriber{
		"settings": c.settingsSubscriber,
		"events":   c.eventsSubscriber,
	} {
		if sub == nil {
			continue
		}
		g.Go(func() error {
			if err := sub.Close(); err != nil {
				return fmt.Errorf("close %s subscriber: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Error().Err(err).Msg("Error closing subscriber")
	}
	c.settingsSubscriber = nil
	c.eventsSubscriber = nil
}

// Close stops everything, router first and the embedded server last.
func (c *NATSComponents) Close(ctx context.Context) {
	if c == nil {
		return
	}

	c.Shutdown(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing publisher")
		}
		logging.Info().Msg("Publisher closed")
		c.publisher = nil
	}
	if c.natsConn != nil {
		c.natsConn.Close()
		logging.Info().Msg("NATS connection closed")
		c.natsConn = nil
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down NATS server")
		}
		logging.Info().Msg("Embedded NATS server stopped")
		c.server = nil
	}
}

// IsRunning returns whether the router is processing messages.
func (c *NATSComponents) IsRunning() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.router != nil && c.router.IsRunning()
}
