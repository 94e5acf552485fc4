package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages.
	NotificationLevelWarning
	// NotificationLevelError is for error messages.
	NotificationLevelError
)

// snackbarLevel maps the level to a snackbar level.
func (l NotificationLevel) snackbarLevel() string {
	switch l {
	case NotificationLevelWarning:
		return model.LevelWarning
	case NotificationLevelError:
		return model.LevelError
	default:
		return model.LevelInfo
	}
}

func (l NotificationLevel) icon() string {
	switch l {
	case NotificationLevelWarning:
		return "dialog-warning"
	case NotificationLevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}

// InternalNotifier shows snackbars about snackbard's own events. The same
// key is not shown again within the minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Handler for showing snackbars
	showHandler func(req *dbus.ShowRequest) uint32

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetShowHandler sets the function that shows the snackbar. This is the
// same handler the D-Bus server uses.
func (n *InternalNotifier) SetShowHandler(handler func(req *dbus.ShowRequest) uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.showHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows message unless key was shown within the minimum interval.
// Internal snackbars are transient and silent.
func (n *InternalNotifier) Notify(key, message string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	handler := n.showHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "message", message)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key)
		return
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	duration := snackbar.Middle
	if level == NotificationLevelError {
		duration = snackbar.Long
	}

	req := &dbus.ShowRequest{
		Sender:    "snackbard",
		Message:   message,
		Icon:      level.icon(),
		Duration:  duration,
		Level:     level.snackbarLevel(),
		Transient: true,
		// A failing sound must not report itself in a loop
		SuppressSound: true,
	}

	n.logger.Debug("sending internal notification", "key", key, "level", req.Level)
	_ = handler(req)
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration reloaded", NotificationLevelInfo)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration error: "+err.Error(), NotificationLevelWarning)
}

// NotifyThemeReloaded reports a reloaded theme.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme '"+themeName+"' reloaded", NotificationLevelInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme error: "+err.Error(), NotificationLevelWarning)
}

// NotifyStartup reports that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "snackbard "+version+" is running", NotificationLevelInfo)
}

// NotifyAudioError reports a sound that failed to play.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Failed to play sound: "+err.Error(), NotificationLevelWarning)
}
