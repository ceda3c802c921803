// Package config loads the TOML configuration file, layers it over
// built-in defaults, and republishes changes on the event bus when the
// file is edited while the program runs.
package config
