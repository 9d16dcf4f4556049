// Package watcher monitors the configuration file for external changes.
//
// The store never reloads on its own; the watcher is the component that
// notices an on-disk change (an administrator editing the file, or
// Touch) and tells the store to reload. It watches the file's directory
// rather than the file itself so the store's own rename-into-place
// commits and external editors that replace the file are both seen.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called after the watched file changed and the change
// settled for the debounce interval.
type Handler func()

// Watcher watches one configuration file.
type Watcher struct {
	fsw      *fsnotify.Watcher
	filename string // absolute path
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before the handler
// fires. Defaults to 100ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching filename and calls handler whenever it is
// written, created or replaced. The file itself does not have to exist
// yet; its directory does.
func New(filename string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		filename: abs,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default(),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Filename returns the absolute path of the watched file.
func (w *Watcher) Filename() string {
	return w.filename
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// processLoop consumes fsnotify events and schedules debounced handler
// invocations for events touching the watched file.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watch error", "file", w.filename, "error", err)
		}
	}
}

// matches reports whether an event path refers to the watched file.
func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == w.filename
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire runs the handler if the file still exists or was removed; either
// way the store needs to re-read its state.
func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	if _, err := os.Stat(w.filename); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("configuration file unreadable", "file", w.filename, "error", err)
		return
	}
	w.handler()
}
