package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/radix/internal/event"
	"github.com/dshills/radix/internal/event/topic"
)

// ErrEmptyInitialState is returned when a Store is created with a
// snapshot that has no buffers. Readers assume a valid snapshot always
// exists, so the initial state must carry at least a default buffer.
var ErrEmptyInitialState = errors.New("initial state must contain at least one buffer")

// Store is the single-writer container for the current State snapshot.
// Get is non-blocking and always succeeds; Put atomically replaces the
// snapshot and broadcasts topic.StateChanged carrying the full new
// snapshot whenever the replacement actually changed it.
//
// All mutation funnels through listener-resolved reducer calls, so Put
// is serialized by construction; the internal mutex enforces it anyway.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[State]
	bus     event.Bus
	logger  zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for store diagnostics.
func WithStoreLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store holding the initial snapshot. The store is
// readable immediately, before any listener starts processing.
func NewStore(initial State, bus event.Bus, opts ...StoreOption) (*Store, error) {
	if initial.BufferCount() == 0 {
		return nil, ErrEmptyInitialState
	}

	s := &Store{
		bus:    bus,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&initial)
	return s, nil
}

// Get returns the current snapshot. Non-blocking; concurrent readers
// racing an in-flight Put observe either the pre- or post-update value.
func (s *Store) Get() State {
	return *s.current.Load()
}

// Put atomically replaces the current snapshot. When the new snapshot
// differs from the old one, the full snapshot is broadcast on
// topic.StateChanged. Replacing with an equal snapshot is a silent no-op.
func (s *Store) Put(ctx context.Context, next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current.Load()
	if next.Equal(*current) {
		return nil
	}

	s.current.Store(&next)

	if s.bus == nil {
		return nil
	}
	if _, err := s.bus.Publish(ctx, topic.StateChanged, next); err != nil {
		// The replacement already succeeded; a failed broadcast (bus
		// shutting down) is not a Put failure.
		s.logger.Warn().Err(err).Msg("state change broadcast failed")
	}
	return nil
}
