package display

import (
	"math"
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// swipeVelocityThreshold is the slowest swipe, in pixels per second, that
// counts as a dismissal gesture.
const swipeVelocityThreshold = 300.0

// swipeDirection maps a swipe velocity to a direction. The dominant axis
// wins; swipes slower than the threshold are ignored.
func swipeDirection(vx, vy float64) (snackbar.SwipeDirection, bool) {
	ax, ay := math.Abs(vx), math.Abs(vy)
	if math.Max(ax, ay) < swipeVelocityThreshold {
		return 0, false
	}
	if ax >= ay {
		if vx > 0 {
			return snackbar.SwipeRight, true
		}
		return snackbar.SwipeLeft, true
	}
	if vy > 0 {
		return snackbar.SwipeDown, true
	}
	return snackbar.SwipeUp, true
}

// mouseAction returns the configured action for a mouse button.
func mouseAction(m config.MouseConfig, button uint) config.MouseAction {
	switch button {
	case 1: // Left
		return config.MouseAction(m.Left)
	case 2: // Middle
		return config.MouseAction(m.Middle)
	case 3: // Right
		return config.MouseAction(m.Right)
	default:
		return config.MouseActionNone
	}
}

// levelClass converts a level to its CSS class name.
func levelClass(level string) string {
	return "level-" + model.NormalizeLevel(level)
}

// cssClasses returns the classes of a snackbar box for theming.
func cssClasses(req *dbus.ShowRequest, cfg *config.DaemonConfig, scheme string, style snackbar.AnimationStyle) []string {
	classes := []string{
		"snackbar",
		scheme,
		levelClass(req.Level),
		"style-" + style.String(),
		"duration-" + req.Duration.String(),
	}

	// Opacity class for compositor blur effects
	if cfg.Display.Opacity < 1.0 {
		classes = append(classes, "translucent")
	}
	if req.Sender != "" && !strings.HasPrefix(req.Sender, ":") {
		classes = append(classes, "sender-"+sanitizeClassName(req.Sender))
	}
	if req.Icon != "" {
		classes = append(classes, "has-icon")
	}
	if len(req.Actions) > 0 {
		classes = append(classes, "has-actions")
	}
	return classes
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// colorSchemeClass returns "light" or "dark" for the configured scheme,
// asking systemDark for "system".
func colorSchemeClass(scheme string, systemDark func() bool) string {
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if systemDark != nil && systemDark() {
			return "dark"
		}
		return "light"
	}
}

// systemDark checks libadwaita for the system dark mode preference.
func systemDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}

// ApplyColorScheme forces libadwaita's color scheme to match the config.
func ApplyColorScheme(scheme string) {
	sm := adw.StyleManagerGetDefault()
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeLight:
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	case config.ColorSchemeDark:
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
}
