package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/snackbar/internal/mainloop"
)

// Loader applies a theme to the GTK display and keeps it current.
// CSS provider updates are posted to loop, which must be the GTK main loop.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	loop      mainloop.Loop
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher

	onReload func(name string)
	onError  func(name string, err error)
}

// NewLoader creates a theme loader.
func NewLoader(loop mainloop.Loop, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:    logger,
		loop:      loop,
		provider:  gtk.NewCSSProvider(),
		themesDir: themesDir,
	}
}

// SetReloadCallback is called after a watched theme was reapplied.
func (l *Loader) SetReloadCallback(callback func(name string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReload = callback
}

// SetErrorCallback is called when a watched theme fails to reload.
func (l *Loader) SetErrorCallback(callback func(name string, err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = callback
}

// LoadTheme resolves name and loads it into the CSS provider. Unknown
// themes fall back to the default theme. Must be called on the GTK loop.
func (l *Loader) LoadTheme(name string) error {
	theme, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("theme not found, using default", "theme", name, "error", err)
		theme = NewDefaultTheme()
	}

	l.mu.Lock()
	l.theme = theme
	l.mu.Unlock()

	l.provider.LoadFromString(theme.CSS)
	l.logger.Info("loaded theme", "name", theme.Name, "bundled", theme.Bundled, "path", theme.Path)
	return nil
}

// Apply adds the provider to display, or to the default display when nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
	l.logger.Debug("applied theme to display", "name", l.CurrentTheme())
}

// StartHotReload watches the current theme's files. Changes are applied on
// the loop.
func (l *Loader) StartHotReload(ctx context.Context) {
	l.mu.Lock()
	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
	theme := l.theme
	l.mu.Unlock()

	if theme == nil {
		return
	}

	w := NewWatcher(theme, l.logger)
	w.SetChangeCallback(func(css string) {
		l.loop.Post(func() {
			l.provider.LoadFromString(css)
			l.mu.Lock()
			cb := l.onReload
			l.mu.Unlock()
			l.logger.Info("hot-reloaded theme", "name", theme.Name)
			if cb != nil {
				cb(theme.Name)
			}
		})
	})
	w.SetErrorCallback(func(err error) {
		l.mu.Lock()
		cb := l.onError
		l.mu.Unlock()
		if cb != nil {
			cb(theme.Name, err)
		}
	})

	if err := w.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}

	l.mu.Lock()
	l.watcher = w
	l.mu.Unlock()
}

// StopHotReload stops watching the theme.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// Switch loads a different theme and restarts hot reload for it.
func (l *Loader) Switch(ctx context.Context, name string) error {
	if name == l.CurrentTheme() {
		return nil
	}
	l.StopHotReload()
	if err := l.LoadTheme(name); err != nil {
		return err
	}
	l.StartHotReload(ctx)
	return nil
}

// CurrentTheme returns the name of the currently loaded theme.
func (l *Loader) CurrentTheme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}

// ListThemes returns available theme names, bundled first.
func (l *Loader) ListThemes() []string {
	infos, err := ListAvailableThemes(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to list user themes", "error", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}
