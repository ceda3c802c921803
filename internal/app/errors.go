package app

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application lifecycle.
var (
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning is returned when stopping an application that never
	// started.
	ErrNotRunning = errors.New("application not running")
)

// InitError reports which component failed during bootstrap.
type InitError struct {
	// Component names the component that failed to initialize.
	Component string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
