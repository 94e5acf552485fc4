package display

import (
	"log/slog"
	"sync"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// fallbackWidth and fallbackHeight are used when no monitor can be found.
const (
	fallbackWidth  = 1280
	fallbackHeight = 720
)

// MonitorLayout picks the monitor snackbars appear on and reports its size.
// It publishes Resized events when the monitor configuration changes.
type MonitorLayout struct {
	config  *config.DaemonConfig
	display *gdk.Display
	logger  *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(snackbar.Event)
}

// NewMonitorLayout creates a layout for the default display.
func NewMonitorLayout(cfg *config.DaemonConfig, logger *slog.Logger) *MonitorLayout {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorLayout{
		config:  cfg,
		display: gdk.DisplayGetDefault(),
		logger:  logger,
		subs:    make(map[int]func(snackbar.Event)),
	}
}

// UpdateConfig applies a reloaded configuration.
func (l *MonitorLayout) UpdateConfig(cfg *config.DaemonConfig) {
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
}

func (l *MonitorLayout) currentConfig() *config.DaemonConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config
}

// Watch follows monitor hotplug.
func (l *MonitorLayout) Watch() {
	if l.display == nil {
		return
	}
	l.display.Monitors().ConnectItemsChanged(func(position, removed, added uint) {
		l.HandleMonitorChange()
	})
}

// GetMonitor returns the monitor to display snackbars on based on config.
// Config values:
// - 0: compositor choice (returns nil)
// - 1+: Specific monitor (1-indexed)
//
// A configured monitor that is not connected falls back to the first one.
func (l *MonitorLayout) GetMonitor() *gdk.Monitor {
	if l.display == nil {
		return nil
	}

	monitorNum := l.currentConfig().Display.Monitor
	if monitorNum == 0 {
		return nil
	}

	monitors := l.display.Monitors()
	if monitors == nil {
		l.logger.Warn("no monitors list available")
		return nil
	}

	index := uint(monitorNum - 1)
	if index >= monitors.NItems() {
		l.logger.Warn("configured monitor not available, using first",
			"configured", monitorNum,
			"available", monitors.NItems(),
		)
		return firstMonitor(l.display)
	}

	return wrapMonitor(monitors.Item(index))
}

// firstMonitor returns the first connected monitor. GTK4 has no notion of
// a primary monitor.
func firstMonitor(display *gdk.Display) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	return wrapMonitor(monitors.Item(0))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// gotk4 does not export its own wrapper for list model items.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// Place puts window on the configured monitor.
func (l *MonitorLayout) Place(window *gtk.Window) {
	if monitor := l.GetMonitor(); monitor != nil {
		layershell.SetMonitor(window, monitor)
	}
}

// Bounds returns the container a snackbar is laid out in: the monitor size,
// with horizontal safe insets that centre the snackbar when max_width is set.
func (l *MonitorLayout) Bounds() snackbar.Bounds {
	width, height := fallbackWidth, fallbackHeight

	monitor := l.GetMonitor()
	if monitor == nil && l.display != nil {
		monitor = firstMonitor(l.display)
	}
	if monitor != nil {
		geom := monitor.Geometry()
		width, height = geom.Width(), geom.Height()
	}

	cfg := l.currentConfig()
	return surfaceBounds(float64(width), float64(height), float64(cfg.Display.MaxWidth),
		float64(cfg.Display.MarginLeft+cfg.Display.MarginRight))
}

// surfaceBounds computes container bounds for a monitor. When the space
// between the margins exceeds maxWidth the excess becomes equal left and
// right safe insets.
func surfaceBounds(width, height, maxWidth, margins float64) snackbar.Bounds {
	b := snackbar.Bounds{Width: width, Height: height}
	if maxWidth <= 0 {
		return b
	}
	if excess := width - margins - maxWidth; excess > 0 {
		b.Safe.Left = excess / 2
		b.Safe.Right = excess / 2
	}
	return b
}

// HandleMonitorChange refreshes the display and notifies subscribers.
func (l *MonitorLayout) HandleMonitorChange() {
	l.display = gdk.DisplayGetDefault()
	if l.display == nil {
		l.logger.Warn("no display available after monitor change")
		return
	}
	if monitors := l.display.Monitors(); monitors != nil {
		l.logger.Info("monitor configuration changed", "count", monitors.NItems())
	}
	l.publish(snackbar.Event{Kind: snackbar.Resized})
}

func (l *MonitorLayout) publish(ev snackbar.Event) {
	l.mu.Lock()
	subs := make([]func(snackbar.Event), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Subscribe registers fn for Resized events.
func (l *MonitorLayout) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	return &layoutSubscription{layout: l, id: id}
}

type layoutSubscription struct {
	layout *MonitorLayout
	id     int
	once   sync.Once
}

func (s *layoutSubscription) Release() {
	s.once.Do(func() {
		s.layout.mu.Lock()
		delete(s.layout.subs, s.id)
		s.layout.mu.Unlock()
	})
}
