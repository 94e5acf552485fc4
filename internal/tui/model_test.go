package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	daemonCfg := config.DefaultDaemonConfig()
	daemonCfg.Animation.Duration = 0

	m := New(config.DefaultConfig(), daemonCfg, nil)
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	m.loop.setSender(func(tea.Msg) {})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// pump drains the loop until cond holds. Timers post from their own
// goroutines, so draining repeats.
func pump(t *testing.T, m *Model, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.Update(wakeMsg{})
		return cond()
	}, 2*time.Second, 5*time.Millisecond)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (m *Model) showing() bool {
	sb := m.surface.Snackbar()
	return sb != nil && sb.State() == snackbar.Showing
}

func TestModel_SendShowsSnackbar(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, ModeCompose, m.mode)

	m.Update(keyMsg("enter"))
	assert.Equal(t, ModeInteract, m.mode)
	pump(t, m, m.showing)

	sb := m.surface.Snackbar()
	assert.Equal(t, "Message archived", sb.Message())
	assert.Equal(t, "Undo", sb.ActionLabel())
	assert.Contains(t, m.View(), "Message archived")
	log := strings.Join(m.events, "\n")
	assert.Contains(t, log, "#1 middle")
	assert.Contains(t, log, `announced "Message archived`)
}

func TestModel_TapDismisses(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("enter"))
	pump(t, m, m.showing)

	m.Update(keyMsg("enter"))
	pump(t, m, func() bool { return m.surface.Snackbar() == nil })

	assert.Contains(t, m.events[len(m.events)-1], "#1 dismissed (tapped)")
}

func TestModel_SwipeDismisses(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("enter"))
	pump(t, m, m.showing)

	m.Update(keyMsg("shift+right"))
	pump(t, m, func() bool { return m.surface.Snackbar() == nil })

	assert.Contains(t, m.events[len(m.events)-1], "(swiped)")
}

func TestModel_ActionLogsKey(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("enter"))
	pump(t, m, m.showing)

	m.Update(keyMsg("a"))
	pump(t, m, func() bool { return m.surface.Snackbar() == nil })

	assert.Contains(t, m.events, "03:04:05 #1 action \"undo\"")
}

func TestModel_QueuesWhileVisible(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("enter"))
	pump(t, m, m.showing)

	m.Update(keyMsg("i"))
	assert.Equal(t, ModeCompose, m.mode)
	m.Update(keyMsg("enter"))
	pump(t, m, func() bool { return m.manager.QueueLen() == 1 })

	m.Update(keyMsg("d"))
	pump(t, m, func() bool {
		id, ok := m.manager.Visible()
		return ok && id == 2 && m.showing()
	})
}

func TestModel_ComposeTypesIntoInput(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("")

	m.Update(keyMsg("q"))
	assert.Equal(t, "q", m.input.Value(), "q types while composing")

	m.input.SetValue("   ")
	m.Update(keyMsg("enter"))
	assert.Equal(t, ModeCompose, m.mode)
	assert.Contains(t, m.events[len(m.events)-1], "nothing to show")
}

func TestModel_OptionKeys(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("ctrl+t"))
	assert.Equal(t, snackbar.Long, m.duration)
	m.Update(keyMsg("ctrl+t"))
	m.Update(keyMsg("ctrl+t"))
	assert.Equal(t, snackbar.Short, m.duration)

	m.style = snackbar.SlideTopBack
	m.Update(keyMsg("ctrl+s"))
	assert.Equal(t, snackbar.FadeInOut, m.style)

	m.Update(keyMsg("ctrl+a"))
	m.Update(keyMsg("ctrl+a"))
	assert.Equal(t, 0, m.actions)

	m.Update(keyMsg("ctrl+k"))
	assert.True(t, m.surface.KeyboardVisible())
	assert.Contains(t, m.View(), "keyboard: ")
}

func TestModel_HelpMode(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("esc"))
	assert.Equal(t, ModeInteract, m.mode)

	m.Update(keyMsg("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "toggle keyboard")

	m.Update(keyMsg("?"))
	assert.Equal(t, ModeInteract, m.mode)
}

func TestModel_ForeverWithActionStaysUp(t *testing.T) {
	m := newTestModel(t)
	m.duration = snackbar.Forever
	m.Update(keyMsg("enter"))
	pump(t, m, m.showing)
	sb := m.surface.Snackbar()
	assert.False(t, sb.TimerArmed())

	m.Update(keyMsg("a"))
	pump(t, m, func() bool { return sb.Visibility().Progress })
	assert.Equal(t, snackbar.Showing, sb.State())
}

func TestPlaygroundDaemonConfig(t *testing.T) {
	base := config.DefaultDaemonConfig()
	pc := config.DefaultConfig().Playground
	pc.DismissOnTap = false

	cfg := PlaygroundDaemonConfig(base, pc)
	assert.Equal(t, 2, cfg.Display.MarginLeft)
	assert.Equal(t, 3, cfg.Display.MinHeight)
	assert.Equal(t, 1, cfg.Keyboard.Padding)
	assert.False(t, cfg.Behavior.DismissOnTap)
	assert.Equal(t, 30, cfg.Animation.FPS)
	assert.Equal(t, 60, base.Animation.FPS, "base config untouched")
	require.NoError(t, cfg.Validate())
}

func TestPreviewSize(t *testing.T) {
	pc := config.DefaultConfig().Playground

	w, h := previewSize(pc, 200, 100)
	assert.Equal(t, pc.Width, w)
	assert.Equal(t, pc.Height, h)

	w, h = previewSize(pc, 30, 20)
	assert.Equal(t, 28, w)
	assert.Equal(t, 20-chromeRows, h)

	w, h = previewSize(pc, 5, 5)
	assert.Equal(t, 10, w)
	assert.Equal(t, 4, h)
}
