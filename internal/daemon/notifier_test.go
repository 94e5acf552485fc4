package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func newTestNotifier() (*InternalNotifier, *[]*dbus.ShowRequest, *time.Time) {
	n := NewInternalNotifier(discardLogger())
	now := time.Unix(1700000000, 0)
	n.now = func() time.Time { return now }

	var shown []*dbus.ShowRequest
	n.SetShowHandler(func(req *dbus.ShowRequest) uint32 {
		shown = append(shown, req)
		return uint32(len(shown))
	})
	return n, &shown, &now
}

func TestInternalNotifier_Request(t *testing.T) {
	n, shown, _ := newTestNotifier()

	n.NotifyConfigError(errors.New("bad damping"))
	require.Len(t, *shown, 1)

	req := (*shown)[0]
	assert.Equal(t, "Configuration error: bad damping", req.Message)
	assert.Equal(t, model.LevelWarning, req.Level)
	assert.Equal(t, "dialog-warning", req.Icon)
	assert.Equal(t, snackbar.Middle, req.Duration)
	assert.True(t, req.Transient)
	assert.True(t, req.SuppressSound)
}

func TestInternalNotifier_Levels(t *testing.T) {
	tests := []struct {
		level    NotificationLevel
		want     string
		icon     string
		duration snackbar.Duration
	}{
		{NotificationLevelInfo, model.LevelInfo, "dialog-information", snackbar.Middle},
		{NotificationLevelWarning, model.LevelWarning, "dialog-warning", snackbar.Middle},
		{NotificationLevelError, model.LevelError, "dialog-error", snackbar.Long},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			n, shown, _ := newTestNotifier()
			n.Notify("key", "message", tt.level)
			require.Len(t, *shown, 1)
			assert.Equal(t, tt.want, (*shown)[0].Level)
			assert.Equal(t, tt.icon, (*shown)[0].Icon)
			assert.Equal(t, tt.duration, (*shown)[0].Duration)
		})
	}
}

func TestInternalNotifier_Deduplicates(t *testing.T) {
	n, shown, now := newTestNotifier()

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	assert.Len(t, *shown, 1)

	// Different keys are independent.
	n.NotifyThemeReloaded("default")
	assert.Len(t, *shown, 2)

	*now = now.Add(5 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, *shown, 3)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	n, shown, _ := newTestNotifier()
	n.SetEnabled(false)
	n.NotifyStartup("1.0.0")
	assert.Empty(t, *shown)

	n.SetEnabled(true)
	n.NotifyStartup("1.0.0")
	require.Len(t, *shown, 1)
	assert.Equal(t, "snackbard 1.0.0 is running", (*shown)[0].Message)
}

func TestInternalNotifier_NoHandler(t *testing.T) {
	n := NewInternalNotifier(discardLogger())
	assert.NotPanics(t, func() { n.NotifyAudioError(errors.New("x")) })
}
