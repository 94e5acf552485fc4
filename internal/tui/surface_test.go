package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/mainloop"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func cellLayout() snackbar.Layout {
	return snackbar.Layout{
		Margins:         snackbar.Insets{Left: 2, Right: 2, Top: 1, Bottom: 1},
		MinHeight:       3,
		KeyboardPadding: 1,
	}
}

func showOn(t *testing.T, s *Surface, opts ...snackbar.Option) (*snackbar.Snackbar, *mainloop.Manual) {
	t.Helper()
	loop := mainloop.NewManual(time.Unix(1700000000, 0))
	opts = append([]snackbar.Option{
		snackbar.WithLoop(loop),
		snackbar.WithSurface(s),
		snackbar.WithLayout(cellLayout()),
		snackbar.WithMotion(snackbar.Motion{}),
	}, opts...)
	sb := snackbar.New("Message archived", snackbar.Forever, opts...)
	require.NoError(t, sb.Show())
	loop.Advance(0)
	return sb, loop
}

func TestSurface_RestingFrame(t *testing.T) {
	s := NewSurface(40, 12, 4)
	sb, _ := showOn(t, s)

	assert.Same(t, sb, s.Snackbar())
	assert.Equal(t, 3.0, sb.Height(), "one content row plus borders")
	assert.Equal(t, 2.0, sb.Frame().Left)
	assert.Equal(t, 1.0, sb.Frame().Bottom)
	assert.Positive(t, s.Frames())

	view := s.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 12)
	for _, line := range lines {
		assert.Equal(t, 40, lipgloss.Width(line))
	}
	// Bottom-anchored: the box occupies rows 8-10 and row 11 is the margin
	assert.Contains(t, lines[9], "Message archived")
	assert.NotContains(t, lines[11], "─")
}

func TestSurface_MeasureWraps(t *testing.T) {
	s := NewSurface(20, 12, 4)
	sb := snackbar.New("a message long enough to wrap over several rows", snackbar.Short,
		snackbar.WithLoop(mainloop.NewManual(time.Now())),
		snackbar.WithSurface(s),
		snackbar.WithLayout(cellLayout()),
	)
	require.NoError(t, sb.Show())

	assert.Greater(t, s.Measure(16), 3.0)
	assert.Greater(t, sb.Height(), 3.0)
}

func TestSurface_ActionsAndIcon(t *testing.T) {
	s := NewSurface(60, 10, 3)
	s.level = "error"
	showOn(t, s,
		snackbar.WithIcon("dialog-error"),
		snackbar.WithAction("Undo", func() {}),
		snackbar.WithSecondAction("Retry", func() {}),
	)

	view := s.View()
	assert.Contains(t, view, "✖ Message archived")
	assert.Contains(t, view, "[a] UNDO")
	assert.Contains(t, view, "[b] RETRY")
	assert.Contains(t, view, "│")
}

func TestSurface_KeyboardPushesSnackbarUp(t *testing.T) {
	s := NewSurface(40, 12, 4)
	sb, loop := showOn(t, s)

	s.SetKeyboard(true)
	loop.Advance(0)
	assert.True(t, s.KeyboardVisible())
	assert.Equal(t, 1.0+4+1, sb.Frame().Bottom)
	assert.Contains(t, s.View(), "░")

	s.SetKeyboard(false)
	loop.Advance(0)
	assert.Equal(t, 1.0, sb.Frame().Bottom)
	assert.NotContains(t, s.View(), "░")
}

func TestSurface_ResizeRelayouts(t *testing.T) {
	s := NewSurface(40, 12, 4)
	sb, loop := showOn(t, s)

	s.Resize(30, 12)
	loop.RunPending()
	assert.Equal(t, 30.0, s.Bounds().Width)
	assert.Equal(t, 2.0, sb.Frame().Right)
	assert.Len(t, strings.Split(s.View(), "\n"), 12)
}

func TestSurface_ClipsOffscreenFrames(t *testing.T) {
	s := NewSurface(20, 6, 2)
	sb, _ := showOn(t, s)
	require.NotNil(t, sb)

	// Halfway off the left edge and below the bottom
	s.Render(snackbar.Frame{Left: -10, Right: 10, Bottom: -2, Opacity: 0.2})
	lines := strings.Split(s.View(), "\n")
	require.Len(t, lines, 6)
	for _, line := range lines {
		assert.Equal(t, 20, lipgloss.Width(line))
	}
}

func TestSurface_DetachClears(t *testing.T) {
	s := NewSurface(40, 12, 4)
	sb, loop := showOn(t, s)

	sb.Close()
	loop.RunPending()
	loop.Advance(0)

	assert.Nil(t, s.Snackbar())
	assert.NotContains(t, s.View(), "Message archived")
}

func TestSurface_QueuedSnackbarReusesSurface(t *testing.T) {
	s := NewSurface(60, 12, 4)
	loop := mainloop.NewManual(time.Unix(0, 0))

	cfg := config.DefaultDaemonConfig()
	cfg.Animation.Duration = 0
	manager := daemon.NewManager(loop, s.Factory(), PlaygroundDaemonConfig(cfg, config.DefaultConfig().Playground), nil)

	manager.Show(&dbus.ShowRequest{Message: "first", Duration: snackbar.Short})
	secondID := manager.Show(&dbus.ShowRequest{Message: "second", Duration: snackbar.Long})
	loop.Advance(10 * time.Millisecond)
	require.NotNil(t, s.Snackbar())
	assert.Equal(t, "first", s.Snackbar().Message())

	loop.Advance(2 * time.Second)

	id, ok := manager.Visible()
	require.True(t, ok)
	assert.Equal(t, secondID, id)
	require.NotNil(t, s.Snackbar(), "second snackbar is on the shared surface")
	assert.Equal(t, "second", s.Snackbar().Message())
	assert.Contains(t, s.View(), "second")
}

func TestIconGlyph(t *testing.T) {
	assert.Equal(t, "✔", iconGlyph("success"))
	assert.Equal(t, "▲", iconGlyph("warning"))
	assert.Equal(t, "✖", iconGlyph("error"))
	assert.Equal(t, "●", iconGlyph("whatever"))
}
