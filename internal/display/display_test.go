package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func TestSwipeDirection(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy float64
		want   snackbar.SwipeDirection
		ok     bool
	}{
		{"right", 900, 100, snackbar.SwipeRight, true},
		{"left", -900, 100, snackbar.SwipeLeft, true},
		{"down", 50, 600, snackbar.SwipeDown, true},
		{"up", 50, -600, snackbar.SwipeUp, true},
		{"too slow", 120, -200, 0, false},
		{"diagonal favours horizontal", 400, 400, snackbar.SwipeRight, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, ok := swipeDirection(tt.vx, tt.vy)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, dir)
			}
		})
	}
}

func TestMouseAction(t *testing.T) {
	m := config.DefaultDaemonConfig().Mouse

	assert.Equal(t, config.MouseActionTap, mouseAction(m, 1))
	assert.Equal(t, config.MouseActionDoAction, mouseAction(m, 2))
	assert.Equal(t, config.MouseActionDismiss, mouseAction(m, 3))
	assert.Equal(t, config.MouseActionNone, mouseAction(m, 8))
}

func TestCSSClasses(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Display.Opacity = 0.9

	req := &dbus.ShowRequest{
		Sender:   "Firefox Web Browser",
		Message:  "Download complete",
		Icon:     "folder-download",
		Actions:  []model.Action{{Key: "open", Label: "Open"}},
		Duration: snackbar.Long,
		Level:    "warning",
	}

	classes := cssClasses(req, cfg, "dark", snackbar.SlideTopDown)
	assert.Equal(t, []string{
		"snackbar",
		"dark",
		"level-warning",
		"style-" + snackbar.SlideTopDown.String(),
		"duration-" + snackbar.Long.String(),
		"translucent",
		"sender-firefox-web-browser",
		"has-icon",
		"has-actions",
	}, classes)
}

func TestCSSClasses_UniqueBusName(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Display.Opacity = 1.0

	req := &dbus.ShowRequest{Sender: ":1.42", Message: "hi", Duration: snackbar.Short}
	classes := cssClasses(req, cfg, "light", snackbar.FadeInOut)

	for _, c := range classes {
		assert.NotContains(t, c, "sender-")
	}
	assert.NotContains(t, classes, "translucent")
	assert.NotContains(t, classes, "has-icon")
	assert.NotContains(t, classes, "has-actions")
	assert.Contains(t, classes, "level-info")
}

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Firefox", "firefox"},
		{"org.gnome.Nautilus", "org-gnome-nautilus"},
		{"my  app", "my-app"},
		{"-leading", "leading"},
		{"trailing_", "trailing"},
		{"ünïcode!", "ncode"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeClassName(tt.in))
		})
	}
}

func TestColorSchemeClass(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	assert.Equal(t, "light", colorSchemeClass("light", dark))
	assert.Equal(t, "dark", colorSchemeClass("dark", light))
	assert.Equal(t, "dark", colorSchemeClass("system", dark))
	assert.Equal(t, "light", colorSchemeClass("system", light))
	assert.Equal(t, "light", colorSchemeClass("system", nil))
}

func TestLevelClass(t *testing.T) {
	assert.Equal(t, "level-error", levelClass("ERROR"))
	assert.Equal(t, "level-info", levelClass("bogus"))
}

func TestSurfaceBounds(t *testing.T) {
	t.Run("no max width", func(t *testing.T) {
		b := surfaceBounds(1920, 1080, 0, 32)
		assert.Equal(t, 1920.0, b.Width)
		assert.Equal(t, 1080.0, b.Height)
		assert.Zero(t, b.Safe.Left)
		assert.Zero(t, b.Safe.Right)
	})

	t.Run("centred", func(t *testing.T) {
		b := surfaceBounds(1920, 1080, 600, 20)
		assert.InDelta(t, 650.0, b.Safe.Left, 0.001)
		assert.InDelta(t, 650.0, b.Safe.Right, 0.001)
	})

	t.Run("narrow monitor", func(t *testing.T) {
		b := surfaceBounds(500, 800, 600, 20)
		assert.Zero(t, b.Safe.Left)
		assert.Zero(t, b.Safe.Right)
	})
}

func TestDisplayError(t *testing.T) {
	cause := errors.New("boom")
	err := &DisplayError{Message: "no display", Cause: cause}

	assert.Equal(t, "no display: boom", err.Error())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", (&DisplayError{Message: "plain"}).Error())
}

func TestWindow_AttachWithoutLayerShell(t *testing.T) {
	orig := layerShellSupported
	layerShellSupported = func() bool { return false }
	t.Cleanup(func() { layerShellSupported = orig })

	w := &Window{req: &dbus.ShowRequest{Message: "hi"}, config: config.DefaultDaemonConfig()}
	err := w.Attach(snackbar.New("hi", snackbar.Short))

	var displayErr *DisplayError
	require.ErrorAs(t, err, &displayErr)
	assert.True(t, w.closed)
	assert.Nil(t, w.window)
	assert.NotPanics(t, w.Detach)
}
