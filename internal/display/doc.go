// Package display shows snackbars on Wayland with GTK4 and libadwaita.
// Each snackbar gets a layer-shell window spanning the chosen monitor; the
// lifecycle moves it by changing the layer-shell margins frame by frame.
// GLibLoop adapts the GLib main context to the lifecycle's event loop.
package display
