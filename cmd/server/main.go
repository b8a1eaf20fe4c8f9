// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/adobe-destination/internal/adobe"
	"github.com/tomtom215/adobe-destination/internal/api"
	"github.com/tomtom215/adobe-destination/internal/config"
	"github.com/tomtom215/adobe-destination/internal/eventprocessor"
	"github.com/tomtom215/adobe-destination/internal/logging"
	"github.com/tomtom215/adobe-destination/internal/metrics"
	"github.com/tomtom215/adobe-destination/internal/models"
	"github.com/tomtom215/adobe-destination/internal/sink"
	"github.com/tomtom215/adobe-destination/internal/store"
	"github.com/tomtom215/adobe-destination/internal/supervisor"
	"github.com/tomtom215/adobe-destination/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   cfg.Destination.AppID,
	})

	metrics.RecordAppInfo(version)
	logging.Info().
		Str("version", version).
		Str("sink", cfg.Destination.Sink).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("store_enabled", cfg.Store.Enabled).
		Bool("video_enabled", cfg.Destination.TrackingServer != "").
		Msg("Starting Adobe destination with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Adobe destination failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components and blocks until SIGINT or SIGTERM.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings store
	var settingsStore *store.SettingsStore
	if cfg.Store.Enabled {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open settings store: %w", err)
		}
		settingsStore = s
		defer func() {
			if err := settingsStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing settings store")
			}
		}()
		logging.Info().Str("path", cfg.Store.Path).Msg("Settings store opened")
	}

	// Bus infrastructure comes before the sink: bus mode publishes through it.
	var nats *NATSComponents
	if cfg.NATS.Enabled {
		n, err := InitNATS(ctx, cfg.NATS, cfg.Destination.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("initialize NATS: %w", err)
		}
		nats = n
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Supervisor.ShutdownTimeout)
			defer cancel()
			nats.Close(closeCtx)
		}()
	} else {
		logging.Info().Msg("NATS event processing disabled, events are handled in-process")
	}

	callSink, recorder := newSink(cfg, nats)
	plugin := adobe.New(callSink)

	// Replay the boot settings as the initial update
	if err := applyInitialSettings(ctx, plugin, settingsStore, cfg.Destination.SettingsFile); err != nil {
		return err
	}

	handler, err := eventprocessor.NewDestinationHandler(plugin, eventprocessor.HandlerConfig{
		DedupeTTL:  cfg.NATS.DedupeTTL,
		DedupeSize: cfg.NATS.DedupeSize,
	})
	if err != nil {
		return fmt.Errorf("create destination handler: %w", err)
	}
	if settingsStore != nil {
		handler.SetSettingsStore(settingsStore)
	}

	// Ingest path: bus when enabled, in-process otherwise
	var (
		ingestor eventprocessor.Ingestor
		health   *eventprocessor.HealthChecker
	)
	if nats != nil {
		nats.WireHandler(handler)
		busIngestor, err := eventprocessor.NewBusIngestor(nats.Publisher())
		if err != nil {
			return fmt.Errorf("create bus ingestor: %w", err)
		}
		ingestor = busIngestor
		health = nats.HealthChecker()
	} else {
		ingestor = eventprocessor.NewDirectIngestor(handler)
		health = eventprocessor.NewHealthChecker(5 * time.Second)
		health.RegisterComponent("handler", handler)
	}

	apiHandler := api.NewHandler(ingestor, plugin)
	apiHandler.ConfigureHealth(health)
	if recorder != nil {
		apiHandler.ConfigureRecorder(recorder)
	}
	router := api.NewRouter(apiHandler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)))
	server := services.NewHTTPServer(cfg.Server, router.SetupChi())

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	if nats != nil {
		tree.AddMessagingService(services.NewPipelineService(nats, cfg.NATS.RouterCloseTimeout))
		logging.Info().Msg("Event pipeline added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// newSink builds the plugin's sink for the configured mode. The recorder is
// returned only in recorder mode, for the debug calls endpoint.
func newSink(cfg *config.Config, nats *NATSComponents) (*sink.CallSink, *sink.Recorder) {
	opts := sink.Options{
		TrackingServer: cfg.Destination.TrackingServer,
		EmitTimeout:    cfg.Destination.EmitTimeout,
	}

	switch cfg.Destination.Sink {
	case config.SinkBus:
		logging.Info().Str("prefix", cfg.Destination.SubjectPrefix).Msg("Sink publishes calls on the bus")
		return sink.New(sink.NewBusEmitter(nats.Publisher(), cfg.Destination.SubjectPrefix), opts), nil
	case config.SinkRecorder:
		recorder := sink.NewRecorder(cfg.Destination.RecorderLimit)
		logging.Info().Int("limit", cfg.Destination.RecorderLimit).Msg("Sink records calls in memory")
		return sink.New(recorder, opts), recorder
	default:
		logging.Info().Msg("Sink logs calls (dry run)")
		return sink.New(sink.NewLogEmitter(logging.WithComponent("sink")), opts), nil
	}
}

// settingsUpdater is the part of the plugin that takes settings.
type settingsUpdater interface {
	Update(raw models.Map, updateType models.UpdateType) bool
}

// applyInitialSettings offers the stored snapshot, or failing that the seed
// file, to the plugin as its initial update. Nothing is applied when neither
// exists; the first initial update from the API or the bus then wins.
func applyInitialSettings(ctx context.Context, plugin settingsUpdater, settingsStore *store.SettingsStore, seedFile string) error {
	var loader store.Loader
	if settingsStore != nil {
		loader = settingsStore
	}

	settings, source, err := store.InitialSettings(ctx, loader, seedFile)
	if err != nil {
		return fmt.Errorf("load initial settings: %w", err)
	}
	if source == store.SourceNone {
		logging.Info().Msg("No initial settings, waiting for the first settings update")
		return nil
	}

	applied := plugin.Update(settings, models.UpdateInitial)
	logging.Info().Str("source", source).Bool("applied", applied).Msg("Initial settings replayed")

	// A seeded blob becomes the snapshot so later boots do not reread the file.
	if applied && source == store.SourceFile && settingsStore != nil {
		if err := settingsStore.Save(ctx, settings); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist seeded settings")
		}
	}
	return nil
}

