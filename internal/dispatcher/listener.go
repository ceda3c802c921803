package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/radix/internal/event"
	"github.com/dshills/radix/internal/event/topic"
	"github.com/dshills/radix/internal/state"
)

// Listener consumes action envelopes from its topics, resolves the
// target reducer, and writes applied outcomes back to the state store.
// Each listener processes its events strictly sequentially; different
// listeners run concurrently.
type Listener struct {
	name     string
	topics   []topic.Topic
	bus      event.Bus
	store    *state.Store
	registry *Registry
	logger   zerolog.Logger
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger for listener diagnostics.
func WithListenerLogger(l zerolog.Logger) ListenerOption {
	return func(ln *Listener) {
		ln.logger = l.With().Str("listener", ln.name).Logger()
	}
}

// NewListener creates a listener with the given subscriber identity and
// topic bindings. The binding set is static for the listener's lifetime.
func NewListener(name string, topics []topic.Topic, bus event.Bus, store *state.Store, registry *Registry, opts ...ListenerOption) *Listener {
	ln := &Listener{
		name:     name,
		topics:   topics,
		bus:      bus,
		store:    store,
		registry: registry,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ln)
	}
	return ln
}

// Name returns the listener's subscriber identity.
func (l *Listener) Name() string {
	return l.name
}

// Run subscribes and processes events until the context is cancelled,
// the bus stops, or a fatal error occurs. A fatal error (unhandled
// action, store failure) terminates the listener; supervision decides
// whether to respawn it.
func (l *Listener) Run(ctx context.Context) error {
	sub, err := l.bus.Subscribe(l.name, l.topics...)
	if err != nil {
		if errors.Is(err, event.ErrBusNotRunning) {
			// Stopped bus, clean exit.
			return nil
		}
		return fmt.Errorf("listener %s: subscribe: %w", l.name, err)
	}

	for {
		select {
		case <-ctx.Done():
			sub.Cancel()
			return ctx.Err()
		case shadow, ok := <-sub.Events():
			if !ok {
				// Bus stopped or subscription cancelled.
				return nil
			}
			if err := l.process(ctx, shadow); err != nil {
				sub.Cancel()
				return err
			}
		}
	}
}

// process handles one event: fetch, filter, reduce, put, acknowledge.
func (l *Listener) process(ctx context.Context, shadow event.Shadow) error {
	env, err := l.bus.Fetch(shadow)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			// Already reclaimed; nothing to process or acknowledge.
			l.logger.Warn().Str("event", shadow.String()).Msg("payload gone before processing")
			return nil
		}
		return fmt.Errorf("listener %s: fetch %s: %w", l.name, shadow, err)
	}

	// The acknowledgment happens on every path below, including fatal
	// ones, so that a poisoned event is not replayed after restart.
	ack := func() {
		if err := l.bus.Ack(l.name, shadow); err != nil {
			l.logger.Warn().Err(err).Str("event", shadow.String()).Msg("acknowledge failed")
		}
	}

	ae, ok := env.Payload.(ActionEnvelope)
	if !ok {
		// Not this listener's shape. Ignorable.
		l.logger.Debug().
			Str("event", shadow.String()).
			Str("payload", fmt.Sprintf("%T", env.Payload)).
			Msg("ignoring payload of unexpected shape")
		ack()
		return nil
	}

	reducer, ok := l.registry.Get(ae.Target)
	if !ok {
		// The envelope targets a reducer this core does not carry.
		l.logger.Debug().
			Str("event", shadow.String()).
			Str("target", ae.Target).
			Msg("no reducer registered for target")
		ack()
		return nil
	}

	current := l.store.Get()
	outcome, err := reducer.Reduce(current, ae.Action)
	if err != nil {
		ack()
		return fmt.Errorf("listener %s: reduce %s via %s: %w", l.name, ae.Action.Kind(), ae.Target, err)
	}

	switch outcome.Kind {
	case OutcomeApplied:
		if !outcome.State.Equal(current) {
			if err := l.store.Put(ctx, outcome.State); err != nil {
				ack()
				return fmt.Errorf("listener %s: put: %w", l.name, err)
			}
		}
	case OutcomeUnchanged, OutcomeNotApplicable:
		// Acknowledged below so non-matching handlers never block
		// garbage collection.
	}

	ack()
	return nil
}
