package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Window is a layer-shell window hosting one snackbar. It implements
// snackbar.Surface and forwards monitor changes as Resized events.
type Window struct {
	app    *gtk.Application
	req    *dbus.ShowRequest
	config *config.DaemonConfig
	layout *MonitorLayout
	logger *slog.Logger

	window    *gtk.Window
	box       *gtk.Box
	icon      *gtk.Image
	label     *gtk.Label
	separator *gtk.Separator
	action    *gtk.Button
	second    *gtk.Button
	spinner   *gtk.Spinner

	sb     *snackbar.Snackbar
	anchor snackbar.Anchor
	placed bool
	closed bool
}

// layerShellSupported reports whether the compositor speaks layer-shell.
var layerShellSupported = layershell.IsSupported

// WindowFactory returns a surface factory creating one Window per request.
// cfg is consulted at creation so that reloaded settings apply to the next
// snackbar.
func WindowFactory(app *gtk.Application, layout *MonitorLayout, cfg func() *config.DaemonConfig, logger *slog.Logger) func(req *dbus.ShowRequest) (snackbar.Surface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(req *dbus.ShowRequest) (snackbar.Surface, error) {
		if app == nil {
			return nil, &DisplayError{Message: "no GTK application"}
		}
		return &Window{
			app:    app,
			req:    req,
			config: cfg(),
			layout: layout,
			logger: logger,
		}, nil
	}
}

// Attach builds the window for sb and presents it.
func (w *Window) Attach(sb *snackbar.Snackbar) error {
	w.sb = sb

	if !layerShellSupported() {
		// Nothing was built; Detach has nothing left to destroy
		w.closed = true
		return &DisplayError{Message: "compositor does not support layer-shell"}
	}

	w.window = gtk.NewWindow()
	w.window.SetApplication(w.app)
	w.window.SetDecorated(false)
	w.window.SetResizable(false)

	layershell.InitForWindow(w.window)
	layershell.SetLayer(w.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(w.window, 0) // Don't reserve space
	layershell.SetKeyboardMode(w.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(w.window, "snackbar")
	w.layout.Place(w.window)

	w.buildUI()
	for _, class := range cssClasses(w.req, w.config, colorSchemeClass(w.config.Theme.ColorScheme, systemDark), sb.Style()) {
		w.box.AddCSSClass(class)
	}
	w.connectSignals()
	w.Update(sb.Visibility())

	// Start off screen; the first Render positions it
	w.window.SetOpacity(0)
	w.window.Present()
	return nil
}

func (w *Window) buildUI() {
	w.box = gtk.NewBox(gtk.OrientationHorizontal, 12)
	w.box.SetMarginTop(8)
	w.box.SetMarginBottom(8)
	w.box.SetMarginStart(16)
	w.box.SetMarginEnd(8)

	w.icon = gtk.NewImage()
	w.icon.AddCSSClass("snackbar-icon")
	w.icon.SetPixelSize(24)
	if icon := w.sb.Icon(); icon != "" {
		w.icon.SetFromIconName(icon)
	}
	w.box.Append(w.icon)

	w.label = gtk.NewLabel(w.sb.Message())
	w.label.AddCSSClass("snackbar-message")
	w.label.SetXAlign(0)
	w.label.SetWrap(true)
	w.label.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	w.label.SetHExpand(true)
	w.box.Append(w.label)

	w.spinner = gtk.NewSpinner()
	w.spinner.AddCSSClass("snackbar-progress")
	w.box.Append(w.spinner)

	w.second = gtk.NewButtonWithLabel(w.sb.SecondActionLabel())
	w.second.AddCSSClass("snackbar-action")
	w.second.AddCSSClass("secondary")
	w.second.AddCSSClass("flat")
	w.box.Append(w.second)

	w.separator = gtk.NewSeparator(gtk.OrientationVertical)
	w.separator.AddCSSClass("snackbar-separator")
	w.box.Append(w.separator)

	// A primary action without a label shows the snackbar icon instead
	if label := w.sb.ActionLabel(); label != "" {
		w.action = gtk.NewButtonWithLabel(label)
	} else {
		w.action = gtk.NewButtonFromIconName(w.sb.Icon())
	}
	w.action.AddCSSClass("snackbar-action")
	w.action.AddCSSClass("flat")
	w.box.Append(w.action)

	w.window.SetChild(w.box)
}

func (w *Window) connectSignals() {
	w.action.ConnectClicked(w.sb.TriggerAction)
	w.second.ConnectClicked(w.sb.TriggerSecondAction)

	// Click handler for configurable mouse actions
	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetButton(0) // All buttons
	clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
		w.handleClick(clickCtrl.CurrentButton())
	})
	w.window.AddController(clickCtrl)

	swipeCtrl := gtk.NewGestureSwipe()
	swipeCtrl.SetTouchOnly(false)
	swipeCtrl.ConnectSwipe(func(vx, vy float64) {
		if dir, ok := swipeDirection(vx, vy); ok {
			w.logger.Debug("snackbar swiped", "direction", dir, "vx", vx, "vy", vy)
			w.sb.Swipe(dir)
		}
	})
	w.window.AddController(swipeCtrl)
}

// handleClick processes mouse button clicks.
func (w *Window) handleClick(button uint) {
	switch mouseAction(w.config.Mouse, button) {
	case config.MouseActionTap:
		w.sb.Tap()
	case config.MouseActionDismiss:
		w.sb.Dismiss()
	case config.MouseActionDoAction:
		w.sb.TriggerAction()
	case config.MouseActionNone:
		// Do nothing
	}
}

// Bounds returns the monitor the window is on.
func (w *Window) Bounds() snackbar.Bounds {
	return w.layout.Bounds()
}

// Measure returns the natural height of the content at width.
func (w *Window) Measure(width float64) float64 {
	_, natural, _, _ := w.box.Measure(gtk.OrientationVertical, int(width))
	return float64(natural + w.box.MarginTop() + w.box.MarginBottom())
}

// Render moves the window by updating its layer-shell margins.
func (w *Window) Render(f snackbar.Frame) {
	if w.closed {
		return
	}
	if !w.placed || f.Anchor != w.anchor {
		w.setAnchor(f.Anchor)
	}

	layershell.SetMargin(w.window, layershell.LayerShellEdgeLeft, int(f.Left))
	layershell.SetMargin(w.window, layershell.LayerShellEdgeRight, int(f.Right))
	if f.Anchor == snackbar.AnchorTop {
		layershell.SetMargin(w.window, layershell.LayerShellEdgeTop, int(f.Top))
	} else {
		layershell.SetMargin(w.window, layershell.LayerShellEdgeBottom, int(f.Bottom))
	}
	w.window.SetOpacity(f.Opacity)
}

// setAnchor pins the window to the left and right edges and to the top or
// bottom edge.
func (w *Window) setAnchor(anchor snackbar.Anchor) {
	w.anchor = anchor
	w.placed = true
	top := anchor == snackbar.AnchorTop
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeRight, true)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeTop, top)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeBottom, !top)
}

// Update applies element visibility.
func (w *Window) Update(v snackbar.Visibility) {
	if w.closed {
		return
	}
	w.icon.SetVisible(v.Icon)
	w.action.SetVisible(v.Action)
	w.second.SetVisible(v.SecondAction)
	w.separator.SetVisible(v.Separator)
	w.spinner.SetVisible(v.Progress)
	if v.Progress {
		w.spinner.Start()
	} else {
		w.spinner.Stop()
	}
}

// Detach destroys the window.
func (w *Window) Detach() {
	if w.closed || w.window == nil {
		return
	}
	w.closed = true
	w.window.Destroy()
}

// Subscribe forwards monitor changes.
func (w *Window) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	return w.layout.Subscribe(fn)
}
