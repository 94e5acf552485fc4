package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Surface draws snackbars into a block of terminal cells. One cell is one
// surface unit. It also stands in for the platform: the simulated keyboard
// and terminal resizes are published as events.
//
// All methods run on the program goroutine.
type Surface struct {
	width, height int
	keyboardRows  int
	keyboard      bool

	sb      *snackbar.Snackbar
	level   string
	frame   snackbar.Frame
	vis     snackbar.Visibility
	drawn   bool
	frames  int
	spinner string

	nextID int
	subs   map[int]func(snackbar.Event)
}

// NewSurface creates a surface of width by height cells whose simulated
// keyboard covers keyboardRows rows.
func NewSurface(width, height, keyboardRows int) *Surface {
	return &Surface{
		width:        width,
		height:       height,
		keyboardRows: keyboardRows,
		subs:         make(map[int]func(snackbar.Event)),
	}
}

// Factory returns a surface factory that reuses s for every request.
func (s *Surface) Factory() func(req *dbus.ShowRequest) (snackbar.Surface, error) {
	return func(req *dbus.ShowRequest) (snackbar.Surface, error) {
		s.level = req.Level
		return s, nil
	}
}

func (s *Surface) Attach(sb *snackbar.Snackbar) error {
	s.sb = sb
	s.vis = sb.Visibility()
	s.drawn = false
	s.frames = 0
	return nil
}

func (s *Surface) Bounds() snackbar.Bounds {
	return snackbar.Bounds{Width: float64(s.width), Height: float64(s.height)}
}

// Measure returns the rows needed to show the content at width, borders
// included.
func (s *Surface) Measure(width float64) float64 {
	if s.sb == nil {
		return 0
	}
	return float64(lipgloss.Height(s.content(int(width)-2)) + 2)
}

func (s *Surface) Render(f snackbar.Frame) {
	s.frame = f
	s.drawn = true
	s.frames++
}

func (s *Surface) Update(v snackbar.Visibility) {
	s.vis = v
}

func (s *Surface) Detach() {
	s.sb = nil
	s.drawn = false
}

// Subscribe registers fn for keyboard and resize events.
func (s *Surface) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return subscription(func() { delete(s.subs, id) })
}

type subscription func()

func (r subscription) Release() { r() }

func (s *Surface) publish(ev snackbar.Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

// Snackbar returns the snackbar on the surface, if any.
func (s *Surface) Snackbar() *snackbar.Snackbar {
	return s.sb
}

// Frames returns the number of frames rendered for the current snackbar.
func (s *Surface) Frames() int {
	return s.frames
}

// KeyboardVisible reports whether the simulated keyboard is up.
func (s *Surface) KeyboardVisible() bool {
	return s.keyboard
}

// SetKeyboard shows or hides the simulated keyboard.
func (s *Surface) SetKeyboard(visible bool) {
	if s.keyboard == visible {
		return
	}
	s.keyboard = visible
	if visible {
		s.publish(snackbar.Event{Kind: snackbar.KeyboardShown, KeyboardHeight: float64(s.keyboardRows)})
	} else {
		s.publish(snackbar.Event{Kind: snackbar.KeyboardHidden})
	}
}

// Resize changes the surface size.
func (s *Surface) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.publish(snackbar.Event{Kind: snackbar.Resized})
}

// SetSpinner sets the progress indicator frame drawn while an action runs.
func (s *Surface) SetSpinner(frame string) {
	s.spinner = frame
}

// content lays out the inside of the snackbar box at inner width.
func (s *Surface) content(inner int) string {
	if inner < 1 {
		inner = 1
	}

	var right []string
	if s.vis.Progress && s.spinner != "" {
		right = append(right, s.spinner)
	}
	if s.vis.SecondAction {
		right = append(right, "[b] "+strings.ToUpper(s.sb.SecondActionLabel()))
	}
	if s.vis.Separator {
		right = append(right, "│")
	}
	if s.vis.Action {
		right = append(right, "[a] "+strings.ToUpper(s.sb.ActionLabel()))
	}
	actions := strings.Join(right, " ")

	message := s.sb.Message()
	if s.vis.Icon {
		message = iconGlyph(s.level) + " " + message
	}

	messageWidth := inner - lipgloss.Width(actions)
	if actions != "" {
		messageWidth--
	}
	if messageWidth < 1 {
		return lipgloss.NewStyle().Width(inner).Render(message + "\n" + actions)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.NewStyle().Width(messageWidth).Render(message),
		lipgloss.NewStyle().PaddingLeft(1).Render(actions),
	)
}

func iconGlyph(level string) string {
	switch model.NormalizeLevel(level) {
	case model.LevelSuccess:
		return "✔"
	case model.LevelWarning:
		return "▲"
	case model.LevelError:
		return "✖"
	default:
		return "●"
	}
}

// Styles for the preview.
var (
	screenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyboardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Background(lipgloss.Color("236"))
	levelStyles   = map[string]lipgloss.Style{
		model.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238")),
		model.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("22")),
		model.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("178")),
		model.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")),
	}
)

// box returns the snackbar's top-left cell, size and lines for the current
// frame.
func (s *Surface) box() (x, y, w, h int, lines []string) {
	f := s.frame
	x = int(math.Round(f.Left))
	w = s.width - x - int(math.Round(f.Right))
	h = int(math.Round(s.sb.Height()))
	if f.Anchor == snackbar.AnchorTop {
		y = int(math.Round(f.Top))
	} else {
		y = s.height - int(math.Round(f.Bottom)) - h
	}
	if w < 3 || h < 2 {
		return x, y, w, h, nil
	}

	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(w - 2).
		Height(h - 2).
		Render(s.content(w - 2))
	return x, y, w, h, strings.Split(rendered, "\n")
}

// View draws the surface. Cells outside the surface are clipped; a
// snackbar below half opacity is drawn faint.
func (s *Surface) View() string {
	rows := make([][]rune, s.height)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", s.width))
	}

	kbTop := s.height
	if s.keyboard {
		kbTop = s.height - s.keyboardRows
		for i := max(kbTop, 0); i < s.height; i++ {
			rows[i] = []rune(strings.Repeat("░", s.width))
		}
	}

	spans := make([][2]int, s.height)
	boxStyle := levelStyles[model.NormalizeLevel(s.level)]
	if s.sb != nil && s.drawn {
		x, y, _, _, lines := s.box()
		if s.frame.Opacity < 0.5 {
			boxStyle = boxStyle.Faint(true)
		}
		for i, line := range lines {
			row := y + i
			if row < 0 || row >= s.height {
				continue
			}
			start, end := s.width, 0
			for j, r := range []rune(line) {
				col := x + j
				if col < 0 || col >= s.width {
					continue
				}
				rows[row][col] = r
				start = min(start, col)
				end = max(end, col+1)
			}
			if start < end {
				spans[row] = [2]int{start, end}
			}
		}
	}

	out := make([]string, s.height)
	for i, row := range rows {
		bg := screenStyle
		if i >= kbTop {
			bg = keyboardStyle
		}
		span := spans[i]
		if span[0] >= span[1] {
			out[i] = bg.Render(string(row))
			continue
		}
		out[i] = bg.Render(string(row[:span[0]])) +
			boxStyle.Render(string(row[span[0]:span[1]])) +
			bg.Render(string(row[span[1]:]))
	}
	return strings.Join(out, "\n")
}
