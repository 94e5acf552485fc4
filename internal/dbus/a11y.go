package dbus

import (
	"log/slog"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

const (
	a11yBusName   = "org.a11y.Bus"
	a11yPath      = dbus.ObjectPath("/org/a11y/bus")
	a11yInterface = "org.a11y.Status"
	a11yProperty  = "ScreenReaderEnabled"

	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
)

// ScreenReader reports whether a screen reader is running and announces
// snackbar messages. It satisfies snackbar.Announcer.
type ScreenReader struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	enabled atomic.Bool
	watch   *boolProperty
}

// NewScreenReader follows org.a11y.Status.ScreenReaderEnabled on conn.
func NewScreenReader(conn *dbus.Conn, logger *slog.Logger) (*ScreenReader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ScreenReader{
		conn:   conn,
		logger: logger,
	}
	r.watch = newBoolProperty(conn, a11yBusName, a11yPath, a11yInterface, a11yProperty, logger, r.setEnabled)
	if err := r.watch.start(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ScreenReader) setEnabled(enabled bool) {
	if r.enabled.Swap(enabled) != enabled {
		r.logger.Debug("screen reader state changed", "enabled", enabled)
	}
}

// ScreenReaderActive reports the last known ScreenReaderEnabled value.
func (r *ScreenReader) ScreenReaderActive() bool {
	return r.enabled.Load()
}

// Announce sends message as a transient desktop notification, which screen
// readers speak. The call does not block.
func (r *ScreenReader) Announce(message string) {
	hints := map[string]dbus.Variant{
		"transient": dbus.MakeVariant(true),
		"urgency":   dbus.MakeVariant(byte(0)),
		"category":  dbus.MakeVariant("presence"),
	}
	call := r.conn.Object(notificationsName, notificationsPath).Go(
		notificationsName+".Notify", dbus.FlagNoReplyExpected, nil,
		"snackbard", uint32(0), "", message, "", []string{}, hints, int32(1),
	)
	if call.Err != nil {
		r.logger.Debug("failed to announce snackbar", "error", call.Err)
	}
}

// Close stops following the property.
func (r *ScreenReader) Close() {
	r.watch.stop()
}
