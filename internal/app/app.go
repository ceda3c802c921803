// Package app wires the event bus, the state store, the reducers, and
// their supervised listeners into a running editor core and manages the
// application lifecycle.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/radix/internal/config"
	"github.com/dshills/radix/internal/dispatcher"
	"github.com/dshills/radix/internal/dispatcher/reducers/editor"
	"github.com/dshills/radix/internal/dispatcher/reducers/workspace"
	"github.com/dshills/radix/internal/event"
	"github.com/dshills/radix/internal/event/topic"
	"github.com/dshills/radix/internal/state"
)

// Application is the central coordinator. It owns the bus, the store,
// and the dispatch listeners, and brings them up in dependency order.
type Application struct {
	mu sync.RWMutex

	opts     Options
	settings config.Settings
	logger   zerolog.Logger

	bus      event.Bus
	store    *state.Store
	registry *dispatcher.Registry

	supervisors []*dispatcher.Supervisor
	watcher     *config.Watcher

	running atomic.Bool
	wg      sync.WaitGroup
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means
	// defaults only, with no live reload.
	ConfigPath string

	// Watch enables live configuration reload when ConfigPath is set.
	Watch bool

	// Debug forces debug-level logging.
	Debug bool
}

// New creates an application and bootstraps its components. The bus is
// running when New returns; call Run to start dispatching.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order: config, logger,
// bus, store, reducers, listeners.
func (app *Application) bootstrap() error {
	settings, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.settings = settings
	app.logger = NewLogger(settings.Log, app.opts.Debug)

	app.bus = event.NewBus(
		event.WithInboxSize(settings.Bus.InboxSize),
		event.WithRetention(settings.Bus.Retention.Std()),
		event.WithSweepInterval(settings.Bus.SweepInterval.Std()),
		event.WithLogger(app.logger),
	)
	if err := app.bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}

	app.store, err = state.NewStore(
		state.New(settings.Editor.DefaultBufferName),
		app.bus,
		state.WithStoreLogger(app.logger),
	)
	if err != nil {
		return &InitError{Component: "state store", Err: err}
	}

	app.registry = dispatcher.NewRegistry()
	if err := app.registry.Register(editor.New()); err != nil {
		return &InitError{Component: "editor reducer", Err: err}
	}
	if err := app.registry.Register(workspace.New()); err != nil {
		return &InitError{Component: "workspace reducer", Err: err}
	}

	app.supervisors = app.buildListeners()

	if app.opts.ConfigPath != "" && app.opts.Watch {
		app.watcher, err = config.NewWatcher(
			app.opts.ConfigPath,
			app.bus,
			config.WithWatcherLogger(app.logger),
		)
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
	}

	return nil
}

// Run starts the supervised listeners and blocks until the context is
// cancelled, the bus stops, or a supervisor gives up.
func (app *Application) Run(ctx context.Context) error {
	if app.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(app.supervisors))
	for _, sup := range app.supervisors {
		app.wg.Add(1)
		go func(sup *dispatcher.Supervisor) {
			defer app.wg.Done()
			if err := sup.Run(runCtx); err != nil {
				errCh <- err
			}
		}(sup)
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.followConfigChanges(runCtx)
	}()

	finished := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(finished)
	}()

	app.logger.Info().
		Int("listeners", len(app.supervisors)).
		Str("active_buffer", app.settings.Editor.DefaultBufferName).
		Msg("core running")

	select {
	case <-runCtx.Done():
		<-finished
		return nil
	case err := <-errCh:
		cancel()
		<-finished
		return err
	case <-finished:
		// All listeners exited cleanly; the bus was stopped.
		return nil
	}
}

// Shutdown stops the config watcher and the bus. Listeners observe the
// closed bus and exit; a blocked Run call returns.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Warn().Err(err).Msg("config watcher close failed")
		}
	}
	if app.bus.IsRunning() {
		if err := app.bus.Stop(ctx); err != nil {
			return err
		}
	}
	app.logger.Info().Msg("core stopped")
	return nil
}

// Bus returns the application's event bus.
func (app *Application) Bus() event.Bus {
	return app.bus
}

// Store returns the application's state store.
func (app *Application) Store() *state.Store {
	return app.store
}

// Settings returns the currently active settings.
func (app *Application) Settings() config.Settings {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.settings
}

// PublishAction publishes an action envelope on the application action
// topic.
func (app *Application) PublishAction(ctx context.Context, target string, action dispatcher.Action) (event.Shadow, error) {
	return app.bus.Publish(ctx, topic.AppAction, dispatcher.ActionEnvelope{
		Target: target,
		Action: action,
	})
}

// PublishInput publishes an action envelope on the input action topic.
func (app *Application) PublishInput(ctx context.Context, target string, action dispatcher.Action) (event.Shadow, error) {
	return app.bus.Publish(ctx, topic.InputAction, dispatcher.ActionEnvelope{
		Target: target,
		Action: action,
	})
}

// PublishActionJSON decodes a wire-form envelope and publishes it on
// the input action topic. This is the entry point for input
// collaborators that speak JSON.
func (app *Application) PublishActionJSON(ctx context.Context, data []byte) (event.Shadow, error) {
	env, err := dispatcher.DecodeEnvelope(data)
	if err != nil {
		return event.Shadow{}, err
	}
	return app.bus.Publish(ctx, topic.InputAction, env)
}

// Subscribe registers an external collaborator, such as a renderer, on
// the bus under its own identity.
func (app *Application) Subscribe(subscriberID string, topics ...topic.Topic) (*event.Subscription, error) {
	return app.bus.Subscribe(subscriberID, topics...)
}

// buildListeners creates the dispatch listeners and their supervisors.
func (app *Application) buildListeners() []*dispatcher.Supervisor {
	supOpts := []dispatcher.SupervisorOption{
		dispatcher.WithSupervisorLogger(app.logger),
		dispatcher.WithMaxRestarts(app.settings.Supervision.MaxRestarts),
		dispatcher.WithResetAfter(app.settings.Supervision.ResetAfter.Std()),
	}

	dispatch := dispatcher.NewListener(
		"dispatch",
		[]topic.Topic{topic.InputAction, topic.AppAction},
		app.bus,
		app.store,
		app.registry,
		dispatcher.WithListenerLogger(app.logger),
	)

	return []*dispatcher.Supervisor{
		dispatcher.NewSupervisor(dispatch, supOpts...),
	}
}

// followConfigChanges consumes config reload events and applies the
// runtime-adjustable pieces. Settings that only matter at bootstrap,
// like bus sizing, take effect on the next start.
func (app *Application) followConfigChanges(ctx context.Context) {
	sub, err := app.bus.Subscribe("app.config", topic.ConfigChanged)
	if err != nil {
		app.logger.Warn().Err(err).Msg("config change subscription failed")
		return
	}

	for {
		select {
		case <-ctx.Done():
			sub.Cancel()
			return
		case shadow, ok := <-sub.Events():
			if !ok {
				return
			}
			app.applyConfigChange(shadow)
		}
	}
}

// applyConfigChange fetches a reloaded settings tree and applies it.
func (app *Application) applyConfigChange(shadow event.Shadow) {
	env, err := app.bus.Fetch(shadow)
	if err != nil {
		return
	}
	defer func() {
		if err := app.bus.Ack("app.config", shadow); err != nil {
			app.logger.Warn().Err(err).Str("event", shadow.String()).Msg("acknowledge failed")
		}
	}()

	settings, ok := env.Payload.(config.Settings)
	if !ok {
		return
	}

	app.mu.Lock()
	if settings.Log.Level != app.settings.Log.Level {
		if level, err := zerolog.ParseLevel(settings.Log.Level); err == nil {
			app.logger = app.logger.Level(level)
			app.logger.Info().Str("level", settings.Log.Level).Msg("log level changed")
		}
	}
	app.settings = settings
	app.mu.Unlock()
}

// DefaultShutdownTimeout bounds how long Shutdown waits for the bus.
const DefaultShutdownTimeout = 5 * time.Second
