// Package daemon wires the store, orchestrator, publish pipeline, autopost
// engine, scheduler, and HTTP server into one long-running process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/autopost"
	"git.home.luguber.info/inful/sitebuilder/internal/builder"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/publish"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/store"

	prom "github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

// Daemon owns every long-lived component of the sitebuilder process.
type Daemon struct {
	mu  sync.RWMutex
	cfg *config.Config

	store     *store.SQLiteStore
	events    *eventstore.SQLiteStore
	emitter   *events.NATSEmitter
	orch      *builder.Orchestrator
	pipeline  *publish.Pipeline
	engine    *autopost.Engine
	scheduler *Scheduler
	server    *server.Server
}

// New wires a daemon from the configuration. Nothing starts running until
// Run is called.
func New(cfg *config.Config) (*Daemon, error) {
	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	es, err := eventstore.NewSQLiteStore(cfg.EventDBPath)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open event store: %w", err)
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	orch := builder.NewOrchestrator(st, cfg.OutputRoot, recorder)

	var trigger publish.RenderTrigger
	switch cfg.EffectiveRenderMode() {
	case config.RenderModeHTTP:
		trigger = &publish.HTTPTrigger{Endpoint: cfg.Render.Endpoint, Timeout: cfg.Render.TimeoutDuration()}
	default:
		trigger = &publish.InProcTrigger{Orchestrator: orch}
	}

	pipeline := publish.NewPipeline(st, trigger, recorder, es)

	emitter, err := events.NewNATSEmitter(cfg.NATS)
	if err != nil {
		_ = es.Close()
		_ = st.Close()
		return nil, fmt.Errorf("connect event emitter: %w", err)
	}
	if emitter != nil {
		pipeline.SetBuildEmitter(emitter)
	}

	engine := autopost.NewEngine(st, pipeline, recorder, es)

	sched, err := NewScheduler(st, engine, recorder, cfg.Scheduler.Interval(), cfg.Scheduler.BatchSize)
	if err != nil {
		emitter.Close()
		_ = es.Close()
		_ = st.Close()
		return nil, err
	}

	srv := server.New(cfg.HTTP.Listen, orch, metrics.HTTPHandler(registry))

	return &Daemon{
		cfg:       cfg,
		store:     st,
		events:    es,
		emitter:   emitter,
		orch:      orch,
		pipeline:  pipeline,
		engine:    engine,
		scheduler: sched,
		server:    srv,
	}, nil
}

// Pipeline exposes the publish pipeline for request-triggered publishes.
func (d *Daemon) Pipeline() *publish.Pipeline { return d.pipeline }

// Engine exposes the run engine for run-now invocations.
func (d *Daemon) Engine() *autopost.Engine { return d.engine }

// Orchestrator exposes the build orchestrator for direct renders.
func (d *Daemon) Orchestrator() *builder.Orchestrator { return d.orch }

// Store exposes the backing store for one-shot commands.
func (d *Daemon) Store() *store.SQLiteStore { return d.store }

// Close releases resources without a graceful server stop. Used by one-shot
// commands that never called Run.
func (d *Daemon) Close() error {
	d.emitter.Close()
	if err := d.events.Close(); err != nil {
		slog.Error("Event store close failed", logfields.Error(err))
	}
	return d.store.Close()
}

// Run starts every component and blocks until ctx is cancelled, then shuts
// down gracefully.
func (d *Daemon) Run(ctx context.Context, configPath string) error {
	d.scheduler.Start()

	var watcher *ConfigWatcher
	if configPath != "" {
		var err error
		watcher, err = NewConfigWatcher(configPath, d)
		if err != nil {
			slog.Warn("Config watcher unavailable", logfields.Error(err))
		} else if err := watcher.Start(ctx); err != nil {
			slog.Warn("Config watcher failed to start", logfields.Error(err))
			watcher = nil
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- d.server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", logfields.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return d.shutdown(shutdownCtx, watcher)
}

func (d *Daemon) shutdown(ctx context.Context, watcher *ConfigWatcher) error {
	slog.Info("Shutting down")

	if watcher != nil {
		watcher.Stop()
	}
	if err := d.scheduler.Stop(); err != nil {
		slog.Error("Scheduler shutdown failed", logfields.Error(err))
	}
	if err := d.server.Stop(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", logfields.Error(err))
	}
	d.emitter.Close()
	if err := d.events.Close(); err != nil {
		slog.Error("Event store close failed", logfields.Error(err))
	}
	if err := d.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	slog.Info("Shutdown complete")
	return nil
}

// GetConfig returns the active configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// ReloadConfig applies a new configuration in place. Only the log level and
// the scheduler interval take effect without a restart; changes to anything
// else are logged and deferred.
func (d *Daemon) ReloadConfig(_ context.Context, newCfg *config.Config) error {
	d.mu.Lock()
	oldCfg := d.cfg
	d.cfg = newCfg
	d.mu.Unlock()

	if newCfg.Logging.Level != oldCfg.Logging.Level {
		level := config.NormalizeLogLevel(newCfg.Logging.Level)
		config.LevelVar.Set(level.SlogLevel())
		slog.Info("Log level updated", slog.String("level", string(level)))
	}
	if newCfg.Scheduler.Interval() != oldCfg.Scheduler.Interval() {
		if err := d.scheduler.SetInterval(newCfg.Scheduler.Interval()); err != nil {
			return err
		}
	}
	if newCfg.HTTP.Listen != oldCfg.HTTP.Listen {
		slog.Warn("HTTP listen address change requires a restart")
	}
	if newCfg.DatabasePath != oldCfg.DatabasePath {
		slog.Warn("Database path change requires a restart")
	}
	return nil
}
