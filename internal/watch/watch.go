// Package watch re-runs a callback whenever a file changes, coalescing bursts
// of filesystem events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before the callback fires.
const DefaultDebounce = 200 * time.Millisecond

// ErrFileRemoved is returned when the watched file disappears.
var ErrFileRemoved = errors.New("watch: file removed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger routes watcher logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher monitors one file.
type Watcher struct {
	path     string
	onChange func() error
	debounce time.Duration
	logger   *slog.Logger
}

// New watches path and calls onChange after each settled change. Callbacks
// never overlap.
func New(path string, onChange func() error, options ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w
}

// Run blocks until ctx is done, the file is removed, or the callback fails.
// The parent directory is watched so editors that replace files atomically
// are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.path, err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch: watcher error", "path", w.path, "error", err)
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Remove) {
				return fmt.Errorf("%w: %s", ErrFileRemoved, w.path)
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("watch: change", "path", w.path, "op", event.Op.String())
				timer.Reset(w.debounce)
			}
		case <-timer.C:
			if w.onChange == nil {
				continue
			}
			if err := w.onChange(); err != nil {
				return err
			}
		}
	}
}
