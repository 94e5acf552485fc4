package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultFollowDelay coalesces the appends snackbard makes for one snackbar
// (shown, then dismissed a moment later with a fast animation).
const defaultFollowDelay = 100 * time.Millisecond

// HistoryWatcher keeps a read-side Store in step with a history file owned
// by snackbard. Appends and replacements of the file (prune moves the old
// file aside and writes a new one) trigger a reload once writes have
// settled.
type HistoryWatcher struct {
	mu     sync.Mutex
	store  *Store
	path   string
	logger *slog.Logger
	delay  time.Duration
	timer  *time.Timer

	fs   *fsnotify.Watcher
	done chan struct{}

	onError func(err error)
}

// NewHistoryWatcher creates a watcher reloading st from path.
func NewHistoryWatcher(st *Store, path string, logger *slog.Logger) *HistoryWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryWatcher{
		store:  st,
		path:   filepath.Clean(path),
		logger: logger,
		delay:  defaultFollowDelay,
	}
}

// SetSettleDelay sets how long to wait after the last write before
// reloading.
func (w *HistoryWatcher) SetSettleDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// SetErrorCallback sets the callback for failed reloads.
func (w *HistoryWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start watches the history directory until ctx is done or Stop is called.
// The directory is watched rather than the file so that a replaced file
// keeps being followed.
func (w *HistoryWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs != nil {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create history watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch history directory: %w", err)
	}

	w.fs = fs
	w.done = make(chan struct{})
	go w.watchLoop(ctx, fs, w.done)

	w.logger.Debug("following history", "path", w.path)
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *HistoryWatcher) Stop() {
	w.mu.Lock()
	fs, done := w.fs, w.done
	w.fs = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if fs == nil {
		return
	}
	fs.Close()
	<-done
}

func (w *HistoryWatcher) watchLoop(ctx context.Context, fs *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fs.Events:
			if !ok {
				return
			}
			if historyChanged(event, w.path) {
				w.schedule()
			}
		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("history watcher error", "error", err)
		}
	}
}

// historyChanged reports whether event leaves new content at path. Remove
// and Rename name the file that went away; a new file at path arrives as a
// Create.
func historyChanged(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *HistoryWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fs == nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

func (w *HistoryWatcher) reload() {
	err := w.store.Hydrate()
	if err == nil {
		return
	}

	w.logger.Warn("failed to reload history", "path", w.path, "error", err)
	w.mu.Lock()
	onError := w.onError
	w.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}
