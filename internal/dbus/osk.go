package dbus

import (
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

const (
	oskBusName   = "sm.puri.OSK0"
	oskPath      = dbus.ObjectPath("/sm/puri/OSK0")
	oskInterface = "sm.puri.OSK0"
	oskProperty  = "Visible"
)

// KeyboardWatcher publishes keyboard shown/hidden events for the on-screen
// keyboard exposed as sm.puri.OSK0. It satisfies snackbar.EventSource.
type KeyboardWatcher struct {
	logger *slog.Logger
	height float64

	mu      sync.Mutex
	visible bool
	nextID  int
	subs    map[int]func(snackbar.Event)

	watch *boolProperty
}

// NewKeyboardWatcher creates a watcher reporting keyboards of the given
// height. Call Start to follow the bus.
func NewKeyboardWatcher(height float64, logger *slog.Logger) *KeyboardWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyboardWatcher{
		logger: logger,
		height: height,
		subs:   make(map[int]func(snackbar.Event)),
	}
}

// Start follows sm.puri.OSK0.Visible on conn.
func (w *KeyboardWatcher) Start(conn *dbus.Conn) error {
	w.watch = newBoolProperty(conn, oskBusName, oskPath, oskInterface, oskProperty, w.logger, w.SetVisible)
	return w.watch.start()
}

// Stop stops following the bus.
func (w *KeyboardWatcher) Stop() {
	if w.watch != nil {
		w.watch.stop()
	}
}

// SetHeight changes the height reported with KeyboardShown.
func (w *KeyboardWatcher) SetHeight(height float64) {
	w.mu.Lock()
	w.height = height
	w.mu.Unlock()
}

// SetVisible records the keyboard state and notifies subscribers when it
// changes.
func (w *KeyboardWatcher) SetVisible(visible bool) {
	w.mu.Lock()
	if w.visible == visible {
		w.mu.Unlock()
		return
	}
	w.visible = visible

	ev := snackbar.Event{Kind: snackbar.KeyboardHidden}
	if visible {
		ev = snackbar.Event{Kind: snackbar.KeyboardShown, KeyboardHeight: w.height}
	}
	subs := make([]func(snackbar.Event), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	w.logger.Debug("on-screen keyboard changed", "visible", visible)
	for _, fn := range subs {
		fn(ev)
	}
}

// Visible reports the last known keyboard state.
func (w *KeyboardWatcher) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Subscribe registers fn. A keyboard that is already up is reported
// immediately.
func (w *KeyboardWatcher) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	visible, height := w.visible, w.height
	w.mu.Unlock()

	if visible {
		fn(snackbar.Event{Kind: snackbar.KeyboardShown, KeyboardHeight: height})
	}
	return &keyboardSubscription{watcher: w, id: id}
}

type keyboardSubscription struct {
	watcher *KeyboardWatcher
	id      int
	once    sync.Once
}

func (s *keyboardSubscription) Release() {
	s.once.Do(func() {
		s.watcher.mu.Lock()
		delete(s.watcher.subs, s.id)
		s.watcher.mu.Unlock()
	})
}
