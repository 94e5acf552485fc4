package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultSettleDelay coalesces the burst of events editors produce on save.
const defaultSettleDelay = 200 * time.Millisecond

// Watcher watches the files of a theme and reports the reloaded CSS.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger

	theme   *Theme
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	delay   time.Duration
	timer   *time.Timer

	onChange func(css string)
	onError  func(err error)

	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for theme.
func NewWatcher(theme *Theme, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		theme:  theme,
		dirs:   make(map[string]bool),
		delay:  defaultSettleDelay,
	}
}

// SetSettleDelay sets how long to wait after the last change before
// reloading.
func (w *Watcher) SetSettleDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// SetChangeCallback sets the callback receiving reloaded CSS.
func (w *Watcher) SetChangeCallback(callback func(css string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// SetErrorCallback sets the callback for failed reloads.
func (w *Watcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start begins watching. Bundled themes with no files on disk are not
// watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if len(w.theme.Files) == 0 {
		w.logger.Debug("not watching bundled theme", "name", w.theme.Name)
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	w.watcher = fw
	w.syncDirs()

	w.running = true
	w.done = make(chan struct{})
	go w.watchLoop(ctx, fw, w.done)

	w.logger.Debug("theme watcher started", "name", w.theme.Name, "files", len(w.theme.Files))
	return nil
}

// syncDirs watches the directories of every theme file. Directories are
// watched so that editors replacing files by rename keep being seen.
func (w *Watcher) syncDirs() {
	for _, f := range w.theme.Files {
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch theme directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	fw, done := w.watcher, w.done
	w.mu.Unlock()

	fw.Close()
	<-done
	w.logger.Debug("theme watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches one of the theme's files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	name := filepath.Clean(event.Name)
	for _, f := range w.theme.Files {
		if f == name {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

// reload rebuilds the theme and reports changed CSS. Imports added by the
// edit are picked up for watching.
func (w *Watcher) reload() {
	w.mu.Lock()
	theme := w.theme
	changed, err := theme.Reload()
	if err == nil && w.running {
		w.syncDirs()
	}
	onChange, onError := w.onChange, w.onError
	css := theme.CSS
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("failed to reload theme", "name", theme.Name, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	if !changed {
		return
	}

	w.logger.Info("theme file changed, reloading", "name", theme.Name)
	if onChange != nil {
		onChange(css)
	}
}
