// Package watcher forwards OS change notifications for one directory.
package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"dirview/internal/constants"
	apperrors "dirview/internal/errors"
	"dirview/internal/logging"
)

// State is the watcher's lifecycle state
type State int

const (
	StateIdle State = iota
	StateWatching
	StateRedirecting
	StateStopped
)

// String returns a short name for the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateRedirecting:
		return "redirecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a DirectoryWatcher
type Options struct {
	PollInterval time.Duration // how often pending redirects are checked
	Logger       *zap.Logger
}

// DirectoryWatcher watches the direct children of one directory and queues
// every notification until it is drained. The watch target can be redirected
// while it runs.
type DirectoryWatcher struct {
	pollInterval time.Duration
	logger       *zap.Logger

	mu       sync.Mutex // Protects everything below
	state    State
	path     string // current watch target
	degraded bool   // last watch registration failed
	pending  []Event
	closed   bool

	redirect chan string // exclusively owned; closing it stops the worker
	done     chan struct{}
}

// New creates an idle directory watcher
func New(opts Options) *DirectoryWatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = constants.WatcherPollInterval
	}
	return &DirectoryWatcher{
		pollInterval: opts.PollInterval,
		logger:       logging.OrNop(opts.Logger).Named("watcher"),
		state:        StateIdle,
	}
}

// Start registers a non-recursive watch on path and spawns the worker
func (dw *DirectoryWatcher) Start(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.state != StateIdle {
		return apperrors.NewWatcherError("start", path, "watcher already started", nil)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewWatcherError("start", path, "unable to create OS watcher", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return apperrors.NewWatcherError("start", path, "unable to watch directory", err)
	}

	dw.state = StateWatching
	dw.path = path
	dw.redirect = make(chan string, constants.WatcherRedirectSlot)
	dw.done = make(chan struct{})

	go dw.run(fw, dw.redirect, path)
	dw.logger.Debug("watching", logging.Path(path))
	return nil
}

// Redirect asks the worker to move the watch to path. It never blocks: a
// redirect still waiting to be picked up is replaced by the newer target.
func (dw *DirectoryWatcher) Redirect(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.closed || dw.state == StateIdle || dw.state == StateStopped {
		return apperrors.NewWatcherError("redirect", path, "watcher is not running", nil)
	}

	for {
		select {
		case dw.redirect <- path:
			return nil
		default:
			// Slot is full: drop the stale target and retry
			select {
			case old := <-dw.redirect:
				dw.logger.Debug("redirect superseded", zap.String("dropped", old), logging.Path(path))
			default:
			}
		}
	}
}

// Drain returns and clears every queued event
func (dw *DirectoryWatcher) Drain() []Event {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	events := dw.pending
	dw.pending = nil
	return events
}

// State returns the lifecycle state and the current watch target
func (dw *DirectoryWatcher) State() (State, string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.state, dw.path
}

// Degraded reports whether the last watch registration failed
func (dw *DirectoryWatcher) Degraded() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.degraded
}

// Close disconnects the redirect channel and waits for the worker to exit
func (dw *DirectoryWatcher) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	if dw.state == StateIdle {
		dw.state = StateStopped
		dw.mu.Unlock()
		return nil
	}
	close(dw.redirect)
	done := dw.done
	dw.mu.Unlock()

	<-done
	return nil
}

func (dw *DirectoryWatcher) run(fw *fsnotify.Watcher, redirect <-chan string, current string) {
	defer close(dw.done)
	defer fw.Close()

	ticker := time.NewTicker(dw.pollInterval)
	defer ticker.Stop()

	events := fw.Events
	errs := fw.Errors
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			dw.enqueue(FromFSNotify(ev))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			dw.logger.Warn("OS watcher error", logging.Path(current), logging.Err(err))
		case <-ticker.C:
			select {
			case next, ok := <-redirect:
				if !ok {
					dw.setState(StateStopped)
					dw.logger.Debug("redirect channel closed, stopping", logging.Path(current))
					return
				}
				current = dw.redirectTo(fw, current, next)
			default:
			}
		}
	}
}

// redirectTo moves the OS watch from old to next. Failures are logged and the
// worker keeps running.
func (dw *DirectoryWatcher) redirectTo(fw *fsnotify.Watcher, old, next string) string {
	if old == next {
		return old
	}

	dw.mu.Lock()
	dw.state = StateRedirecting
	dw.mu.Unlock()

	if err := fw.Remove(old); err != nil {
		werr := apperrors.NewWatcherError("unwatch", old, "unable to unwatch directory", err)
		dw.logger.Warn("unwatch failed, continuing", logging.Err(werr))
	}

	degraded := false
	if err := fw.Add(next); err != nil {
		werr := apperrors.NewWatcherError("watch", next, "unable to watch directory", err)
		dw.logger.Error("watch failed, running degraded", logging.Err(werr))
		degraded = true
	}

	dw.mu.Lock()
	dw.state = StateWatching
	dw.path = next
	dw.degraded = degraded
	dw.mu.Unlock()

	dw.logger.Debug("redirected", zap.String("from", old), zap.String("to", next))
	return next
}

func (dw *DirectoryWatcher) enqueue(events []Event) {
	dw.mu.Lock()
	dw.pending = append(dw.pending, events...)
	dw.mu.Unlock()
}

func (dw *DirectoryWatcher) setState(s State) {
	dw.mu.Lock()
	dw.state = s
	dw.mu.Unlock()
}
