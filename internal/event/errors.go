package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrBusNotRunning is returned when operations are attempted on a stopped bus.
	ErrBusNotRunning = errors.New("event bus is not running")

	// ErrBusAlreadyRunning is returned when Start is called on a running bus.
	ErrBusAlreadyRunning = errors.New("event bus is already running")

	// ErrNotFound is returned by Fetch when the event has been garbage-collected
	// or never existed.
	ErrNotFound = errors.New("event not found")

	// ErrInvalidTopic is returned when a topic is empty, malformed, or a
	// wildcard pattern is used where a concrete topic is required.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidSubscriber is returned when a subscriber identity is empty.
	ErrInvalidSubscriber = errors.New("invalid subscriber identity")

	// ErrUnknownSubscriber is returned when acknowledging on behalf of a
	// subscriber the bus has never seen.
	ErrUnknownSubscriber = errors.New("unknown subscriber")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)
