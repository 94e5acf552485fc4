package daemon

import (
	"log/slog"

	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// LogSurface is a headless surface that logs what a display would show.
// snackbard uses it when no Wayland display is available.
type LogSurface struct {
	logger *slog.Logger
	bounds snackbar.Bounds
	height float64

	sb       *snackbar.Snackbar
	frames   int
	last     snackbar.Frame
	attached bool
}

// NewLogSurface creates a surface of the given size whose views measure
// height.
func NewLogSurface(bounds snackbar.Bounds, height float64, logger *slog.Logger) *LogSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSurface{
		logger: logger,
		bounds: bounds,
		height: height,
	}
}

// LogSurfaceFactory returns a SurfaceFactory producing a LogSurface per request.
func LogSurfaceFactory(bounds snackbar.Bounds, height float64, logger *slog.Logger) SurfaceFactory {
	return func(req *dbus.ShowRequest) (snackbar.Surface, error) {
		return NewLogSurface(bounds, height, logger), nil
	}
}

func (s *LogSurface) Attach(sb *snackbar.Snackbar) error {
	s.sb = sb
	s.attached = true
	v := sb.Visibility()
	s.logger.Info("snackbar",
		"message", sb.Message(),
		"icon", sb.Icon(),
		"action", labelIf(v.Action, sb.ActionLabel()),
		"second_action", labelIf(v.SecondAction, sb.SecondActionLabel()),
		"duration", sb.Duration(),
	)
	return nil
}

func (s *LogSurface) Bounds() snackbar.Bounds { return s.bounds }

func (s *LogSurface) Measure(width float64) float64 { return s.height }

// Render records the frame. Only the count is logged, at detach.
func (s *LogSurface) Render(f snackbar.Frame) {
	s.frames++
	s.last = f
}

func (s *LogSurface) Update(v snackbar.Visibility) {
	s.logger.Debug("snackbar visibility changed", "progress", v.Progress, "action", v.Action)
}

func (s *LogSurface) Detach() {
	if !s.attached {
		return
	}
	s.attached = false
	s.logger.Debug("snackbar detached", "reason", s.sb.Reason(), "frames", s.frames)
}

// Attached reports whether a snackbar is on the surface.
func (s *LogSurface) Attached() bool { return s.attached }

// Frames returns the number of rendered frames and the last one.
func (s *LogSurface) Frames() (int, snackbar.Frame) { return s.frames, s.last }

func labelIf(visible bool, label string) string {
	if !visible {
		return ""
	}
	return label
}
