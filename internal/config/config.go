package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that unmarshals from TOML strings like
// "5m" or "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// BusSettings tunes the event bus.
type BusSettings struct {
	// InboxSize is the per-subscriber delivery buffer.
	InboxSize int `toml:"inbox_size"`

	// Retention is how long unacknowledged events are kept before the
	// sweeper reclaims them.
	Retention Duration `toml:"retention"`

	// SweepInterval is how often the retention sweeper runs.
	SweepInterval Duration `toml:"sweep_interval"`
}

// EditorSettings tunes the editing core.
type EditorSettings struct {
	// DefaultBufferName names the buffer created at startup.
	DefaultBufferName string `toml:"default_buffer_name"`
}

// SupervisionSettings tunes listener supervision.
type SupervisionSettings struct {
	// MaxRestarts bounds listener respawns. Zero means unlimited.
	MaxRestarts int `toml:"max_restarts"`

	// ResetAfter is the uptime after which the restart backoff resets.
	ResetAfter Duration `toml:"reset_after"`
}

// LogSettings tunes diagnostics output.
type LogSettings struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `toml:"level"`

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool `toml:"pretty"`
}

// Settings is the full configuration tree.
type Settings struct {
	Bus         BusSettings         `toml:"bus"`
	Editor      EditorSettings      `toml:"editor"`
	Supervision SupervisionSettings `toml:"supervision"`
	Log         LogSettings         `toml:"log"`
}

// Default returns the settings used when no configuration file exists.
func Default() Settings {
	return Settings{
		Bus: BusSettings{
			InboxSize:     256,
			Retention:     Duration(5 * time.Minute),
			SweepInterval: Duration(30 * time.Second),
		},
		Editor: EditorSettings{
			DefaultBufferName: "scratch",
		},
		Supervision: SupervisionSettings{
			MaxRestarts: 0,
			ResetAfter:  Duration(30 * time.Second),
		},
		Log: LogSettings{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads settings from a TOML file, layered over the defaults. A
// missing file is not an error; the defaults apply unchanged. An empty
// path skips the file entirely.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// Validate checks the settings for values the runtime cannot use.
func (s Settings) Validate() error {
	if s.Bus.InboxSize <= 0 {
		return fmt.Errorf("%w: bus.inbox_size must be positive", ErrInvalid)
	}
	if s.Bus.Retention < 0 {
		return fmt.Errorf("%w: bus.retention must not be negative", ErrInvalid)
	}
	if s.Bus.SweepInterval <= 0 {
		return fmt.Errorf("%w: bus.sweep_interval must be positive", ErrInvalid)
	}
	if s.Editor.DefaultBufferName == "" {
		return fmt.Errorf("%w: editor.default_buffer_name must not be empty", ErrInvalid)
	}
	if s.Supervision.MaxRestarts < 0 {
		return fmt.Errorf("%w: supervision.max_restarts must not be negative", ErrInvalid)
	}
	switch s.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q is not a known level", ErrInvalid, s.Log.Level)
	}
	return nil
}
