// Package tui provides the BubbleTea-based snackbar playground. It hosts the
// same lifecycle and queueing manager as the daemon, drawn into a block of
// terminal cells.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeCompose Mode = iota
	ModeInteract
	ModeHelp
)

// maxEvents is the number of lines kept in the event pane.
const maxEvents = 5

// actionSets are the action buttons a playground snackbar can carry,
// selected with the Actions key.
var actionSets = [][]model.Action{
	nil,
	{{Key: "undo", Label: "Undo"}},
	{{Key: "undo", Label: "Undo"}, {Key: "retry", Label: "Retry"}},
}

// levelIcons gives each level an icon so that the icon slot is exercised.
var levelIcons = map[string]string{
	model.LevelInfo:    "dialog-information",
	model.LevelSuccess: "emblem-ok",
	model.LevelWarning: "dialog-warning",
	model.LevelError:   "dialog-error",
}

// Model is the playground model. It is used as a pointer so that manager
// callbacks, which run inside Update, can record events.
type Model struct {
	cfg     *config.Config
	loop    *ProgramLoop
	surface *Surface
	manager *daemon.Manager

	mode    Mode
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	duration snackbar.Duration
	style    snackbar.AnimationStyle
	level    int
	actions  int

	events []string
	now    func() time.Time
	width  int
	height int
	ready  bool
}

// New creates the playground. daemonCfg supplies timing and animation; its
// geometry is replaced with cell-sized values.
func New(cfg *config.Config, daemonCfg *config.DaemonConfig, logger *slog.Logger) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if daemonCfg == nil {
		daemonCfg = config.DefaultDaemonConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	input := textinput.New()
	input.Placeholder = "Message..."
	input.CharLimit = 200
	input.SetValue("Message archived")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pc := cfg.Playground
	m := &Model{
		cfg:      cfg,
		loop:     NewProgramLoop(),
		surface:  NewSurface(pc.Width, pc.Height, pc.KeyboardRows),
		mode:     ModeCompose,
		input:    input,
		spinner:  sp,
		help:     help.New(),
		keys:     DefaultKeyMap(),
		duration: snackbar.Middle,
		style:    daemonCfg.Style(),
		actions:  1,
		now:      time.Now,
	}
	m.surface.SetSpinner(sp.View())

	m.manager = daemon.NewManager(m.loop, m.surface.Factory(), PlaygroundDaemonConfig(daemonCfg, pc), logger)
	m.manager.SetAnnouncer(m)
	m.manager.SetCloseCallback(func(id uint32, reason string) {
		m.logEvent("#%d dismissed (%s)", id, reason)
	})
	m.manager.SetActionCallback(func(id uint32, actionKey string) {
		m.logEvent("#%d action %q", id, actionKey)
	})
	return m
}

// PlaygroundDaemonConfig adapts daemon settings to a surface measured in
// terminal cells.
func PlaygroundDaemonConfig(base *config.DaemonConfig, pc config.PlaygroundConfig) *config.DaemonConfig {
	cfg := *base
	cfg.Display = config.DisplayConfig{
		MarginLeft:   2,
		MarginRight:  2,
		MarginTop:    1,
		MarginBottom: 1,
		MinHeight:    3,
		Opacity:      1,
	}
	cfg.Keyboard.Padding = 1
	cfg.Behavior.DismissOnTap = pc.DismissOnTap
	cfg.Behavior.DismissOnSwipe = pc.DismissOnSwipe
	cfg.Accessibility.Announce = pc.ScreenReader
	// Terminals redraw far slower than compositors
	if cfg.Animation.FPS > 30 {
		cfg.Animation.FPS = 30
	}
	return &cfg
}

// ScreenReaderActive reports whether announcements are shown.
func (m *Model) ScreenReaderActive() bool {
	return m.cfg.Playground.ScreenReader
}

// Announce records a screen reader announcement in the event pane.
func (m *Model) Announce(message string) {
	m.logEvent("announced %q", message)
}

func (m *Model) logEvent(format string, args ...any) {
	line := m.now().Format("15:04:05") + " " + fmt.Sprintf(format, args...)
	m.events = append(m.events, line)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// Init initializes the playground.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wakeMsg:
		m.loop.Drain()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.surface.Resize(previewSize(m.cfg.Playground, msg.Width, msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.surface.SetSpinner(m.spinner.View())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == ModeCompose {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// chromeRows is the number of rows drawn around the preview.
const chromeRows = 3 + 2 + maxEvents + 2

// previewSize fits the configured preview into the terminal.
func previewSize(pc config.PlaygroundConfig, width, height int) (int, int) {
	w := min(pc.Width, width-2)
	h := min(pc.Height, height-chromeRows)
	return max(w, 10), max(h, 4)
}

// handleKey handles key presses.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Option keys work in every mode
	switch {
	case msg.String() == "ctrl+c":
		return m.quit()
	case key.Matches(msg, m.keys.Keyboard):
		m.surface.SetKeyboard(!m.surface.KeyboardVisible())
		return m, nil
	case key.Matches(msg, m.keys.Duration):
		m.duration = nextDuration(m.duration)
		return m, nil
	case key.Matches(msg, m.keys.Style):
		m.style = nextStyle(m.style)
		return m, nil
	case key.Matches(msg, m.keys.Level):
		m.level = (m.level + 1) % len(model.ValidLevels())
		return m, nil
	case key.Matches(msg, m.keys.Actions):
		m.actions = (m.actions + 1) % len(actionSets)
		return m, nil
	}

	switch m.mode {
	case ModeCompose:
		return m.handleComposeKey(msg)
	case ModeInteract:
		return m.handleInteractKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.mode = ModeInteract
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		m.send()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeInteract
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleInteractKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil
	case key.Matches(msg, m.keys.Compose):
		m.mode = ModeCompose
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.CloseAll):
		m.manager.CloseAll()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if id, ok := m.manager.Visible(); ok {
			m.manager.Dismiss(id)
		}
		return m, nil
	}

	sb := m.surface.Snackbar()
	if sb == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Tap):
		sb.Tap()
	case key.Matches(msg, m.keys.SwipeLeft):
		sb.Swipe(snackbar.SwipeLeft)
	case key.Matches(msg, m.keys.SwipeRight):
		sb.Swipe(snackbar.SwipeRight)
	case key.Matches(msg, m.keys.SwipeUp):
		sb.Swipe(snackbar.SwipeUp)
	case key.Matches(msg, m.keys.SwipeDown):
		sb.Swipe(snackbar.SwipeDown)
	case key.Matches(msg, m.keys.Action):
		sb.TriggerAction()
	case key.Matches(msg, m.keys.Second):
		sb.TriggerSecondAction()
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.manager.Stop()
	return m, tea.Quit
}

// send queues a snackbar built from the current message and options.
func (m *Model) send() {
	message := strings.TrimSpace(m.input.Value())
	if message == "" {
		m.logEvent("nothing to show")
		return
	}

	req := m.request(message)
	id := m.manager.Show(req)
	m.logEvent("#%d %s %s: %q", id, req.Duration, req.Style, message)

	m.mode = ModeInteract
	m.input.Blur()
}

func (m *Model) request(message string) *dbus.ShowRequest {
	level := model.ValidLevels()[m.level]
	return &dbus.ShowRequest{
		Sender:        "playground",
		Message:       message,
		Icon:          levelIcons[level],
		Actions:       actionSets[m.actions],
		Duration:      m.duration,
		Style:         m.style,
		HasStyle:      true,
		Level:         level,
		SuppressSound: true,
		Transient:     true,
	}
}

func nextDuration(d snackbar.Duration) snackbar.Duration {
	if d >= snackbar.Forever {
		return snackbar.Short
	}
	return d + 1
}

func nextStyle(s snackbar.AnimationStyle) snackbar.AnimationStyle {
	if s >= snackbar.SlideTopBack {
		return snackbar.FadeInOut
	}
	return s + 1
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	screenFrame = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8"))
)

// View renders the playground.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("snackbar playground") + "  " + m.viewState() + "\n")
	b.WriteString(m.viewOptions() + "\n")
	if m.mode == ModeCompose {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(labelStyle.Render("message: " + m.input.Value() + "  (i to edit)"))
	}
	b.WriteString("\n")
	b.WriteString(screenFrame.Render(m.surface.View()) + "\n")

	for i := 0; i < maxEvents; i++ {
		if i < len(m.events) {
			b.WriteString(eventStyle.Render(m.events[i]))
		}
		b.WriteString("\n")
	}

	if m.cfg.Playground.ShowHelp || m.mode == ModeHelp {
		m.help.ShowAll = m.mode == ModeHelp
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) viewState() string {
	state := "idle"
	if sb := m.surface.Snackbar(); sb != nil {
		state = sb.State().String()
		if sb.TimerArmed() {
			state += ", timer armed"
		}
	}
	return labelStyle.Render(fmt.Sprintf("[%s] %s  queued: %d  frames: %d",
		m.modeName(), state, m.manager.QueueLen(), m.surface.Frames()))
}

func (m *Model) modeName() string {
	switch m.mode {
	case ModeCompose:
		return "compose"
	case ModeHelp:
		return "help"
	default:
		return "interact"
	}
}

func (m *Model) viewOptions() string {
	keyboard := "hidden"
	if m.surface.KeyboardVisible() {
		keyboard = "shown"
	}
	labels := make([]string, 0, len(actionSets[m.actions]))
	for _, a := range actionSets[m.actions] {
		labels = append(labels, a.Label)
	}
	actions := strings.Join(labels, "+")
	if actions == "" {
		actions = "none"
	}

	pairs := []struct{ label, value string }{
		{"duration", m.duration.String()},
		{"animation", m.style.String()},
		{"level", model.ValidLevels()[m.level]},
		{"actions", actions},
		{"keyboard", keyboard},
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = labelStyle.Render(p.label+": ") + valueStyle.Render(p.value)
	}
	return strings.Join(parts, "  ")
}

// RunOptions configures the playground.
type RunOptions struct {
	Config       *config.Config
	DaemonConfig *config.DaemonConfig
	Logger       *slog.Logger
}

// Run starts the playground and blocks until it exits.
func Run(opts RunOptions) error {
	m := New(opts.Config, opts.DaemonConfig, opts.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.loop.Attach(p)

	_, err := p.Run()
	return err
}
