package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matsen/whitespace/internal/graph"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 150 * time.Millisecond

// SwapHandler is called with each session built after a payload change.
type SwapHandler func(*Session)

// Watcher rebuilds the session whenever the payload file changes.
type Watcher struct {
	path     string
	manager  *Manager
	onSwap   SwapHandler
	debounce time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher watches path. The directory is watched rather than the file so
// editors that save by rename are seen too.
func NewWatcher(path string, m *Manager, onSwap SwapHandler, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		manager:  m,
		onSwap:   onSwap,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		watcher:  fw,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("payload watcher error", "error", err)

		case <-timerC:
			timerC = nil
			w.reload(ctx)
		}
	}
}

// Stop ends Run and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) reload(ctx context.Context) {
	p, err := graph.Load(w.path)
	if err != nil {
		// A half-written file is common mid-save; keep the current session.
		w.logger.Warn("payload reload failed", "path", w.path, "error", err)
		return
	}
	s := w.manager.Replace(ctx, p)
	if w.onSwap != nil {
		w.onSwap(s)
	}
}
