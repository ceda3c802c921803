package event

import (
	"time"

	"github.com/rs/zerolog"
)

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// inboxSize is the capacity of each subscriber's shadow inbox.
	inboxSize int

	// retention is how long an unacknowledged event is kept before the
	// sweeper reclaims it.
	retention time.Duration

	// sweepInterval is how often the retention sweeper runs.
	sweepInterval time.Duration

	// logger receives bus diagnostics.
	logger zerolog.Logger
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		inboxSize:     256,
		retention:     5 * time.Minute,
		sweepInterval: 30 * time.Second,
		logger:        zerolog.Nop(),
	}
}

// WithInboxSize sets the per-subscriber inbox capacity.
func WithInboxSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.inboxSize = size
		}
	}
}

// WithRetention sets how long unacknowledged events are retained before
// the sweeper reclaims them. Zero disables reclamation.
func WithRetention(d time.Duration) BusOption {
	return func(c *busConfig) {
		if d >= 0 {
			c.retention = d
		}
	}
}

// WithSweepInterval sets the retention sweep frequency.
func WithSweepInterval(d time.Duration) BusOption {
	return func(c *busConfig) {
		if d > 0 {
			c.sweepInterval = d
		}
	}
}

// WithLogger sets the logger for bus diagnostics.
func WithLogger(l zerolog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}
