package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/radix/internal/event"
	"github.com/dshills/radix/internal/event/topic"
)

// Watcher reloads the configuration file when it changes on disk and
// publishes the new settings on the event bus under topic.ConfigChanged.
// It watches the file's directory rather than the file itself so that
// editors that replace the file by rename are still observed.
type Watcher struct {
	mu sync.Mutex

	path    string
	bus     event.Bus
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	debounce time.Duration

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle
// before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger for watcher diagnostics.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l.With().Str("component", "config.watcher").Logger()
	}
}

// NewWatcher creates a watcher for the given configuration file. The
// watcher starts immediately and runs until Close.
func NewWatcher(path string, bus event.Bus, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		bus:      bus,
		watcher:  fsw,
		logger:   zerolog.Nop(),
		debounce: 100 * time.Millisecond,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// processLoop coalesces bursts of writes, then reloads once settled.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if fsEvent.Name != w.path {
				continue
			}
			if !fsEvent.Op.Has(fsnotify.Write) && !fsEvent.Op.Has(fsnotify.Create) && !fsEvent.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watch error")
		}
	}
}

// reload reads the file and publishes the new settings. A file that no
// longer parses keeps the previous settings in force; subscribers never
// see an invalid tree.
func (w *Watcher) reload() {
	settings, err := Load(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("config reload rejected")
		return
	}

	if _, err := w.bus.Publish(context.Background(), topic.ConfigChanged, settings); err != nil {
		w.logger.Warn().Err(err).Msg("config change publish failed")
		return
	}
	w.logger.Info().Str("path", w.path).Msg("configuration reloaded")
}
