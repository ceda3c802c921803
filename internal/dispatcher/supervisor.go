package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Supervisor implements the fail-fast-then-resume policy for a listener:
// when the listener dies on a structural error, the supervisor respawns
// it with a fresh subscription after an exponential backoff. In-flight
// work of the failed event is not replayed; the listener acknowledged it
// before terminating.
type Supervisor struct {
	listener *Listener
	logger   zerolog.Logger

	maxRestarts int           // 0 means unlimited
	resetAfter  time.Duration // uptime after which the backoff resets
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithMaxRestarts bounds the number of restarts. Zero means unlimited.
func WithMaxRestarts(n int) SupervisorOption {
	return func(s *Supervisor) {
		if n >= 0 {
			s.maxRestarts = n
		}
	}
}

// WithResetAfter sets the uptime after which the backoff interval resets.
func WithResetAfter(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.resetAfter = d
		}
	}
}

// WithSupervisorLogger sets the logger for supervision diagnostics.
func WithSupervisorLogger(l zerolog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = l.With().Str("listener", s.listener.Name()).Logger()
	}
}

// NewSupervisor creates a supervisor for the given listener.
func NewSupervisor(listener *Listener, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		listener:   listener,
		logger:     zerolog.Nop(),
		resetAfter: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run runs the listener until it exits cleanly (bus stopped), the
// context is cancelled, or the restart budget is exhausted.
func (s *Supervisor) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 0 // never give up on elapsed time alone
	policy.Reset()

	restarts := 0
	for {
		started := time.Now()
		err := s.listener.Run(ctx)

		switch {
		case err == nil:
			// Clean exit: the bus closed the subscription.
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		}

		if time.Since(started) >= s.resetAfter {
			policy.Reset()
		}

		restarts++
		if s.maxRestarts > 0 && restarts > s.maxRestarts {
			s.logger.Error().Err(err).Int("restarts", restarts-1).Msg("restart limit exceeded")
			return ErrRestartLimit
		}

		wait := policy.NextBackOff()
		s.logger.Error().
			Err(err).
			Int("restart", restarts).
			Dur("backoff", wait).
			Msg("listener died, respawning with fresh subscription")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}
