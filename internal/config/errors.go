package config

import "errors"

// Sentinel errors for the configuration layer.
var (
	// ErrParse is returned when a configuration file is not valid TOML.
	ErrParse = errors.New("config parse error")

	// ErrInvalid is returned when a configuration value is out of range.
	ErrInvalid = errors.New("invalid config value")

	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("config watcher closed")
)
