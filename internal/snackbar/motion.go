package snackbar

import "time"

// Layout holds the resting geometry of a snackbar.
type Layout struct {
	// Margins between the snackbar and the container edges, inside the
	// safe area.
	Margins Insets
	// MinHeight is the smallest height a snackbar is laid out at.
	MinHeight float64
	// KeyboardPadding is added on top of the keyboard height when an
	// on-screen keyboard pushes a bottom-anchored snackbar up.
	KeyboardPadding float64
}

// DefaultLayout returns 5-unit margins, a 60-unit minimum height and an
// 8-unit keyboard padding.
func DefaultLayout() Layout {
	return Layout{
		Margins:         Insets{Left: 5, Right: 5, Top: 5, Bottom: 5},
		MinHeight:       60,
		KeyboardPadding: 8,
	}
}

// Motion configures the spring animation.
type Motion struct {
	Duration        time.Duration
	Damping         float64
	InitialVelocity float64
	FPS             int
}

// DefaultMotion returns a 300ms spring with 0.7 damping ratio and an
// initial velocity of 5, ticking at 60 frames per second.
func DefaultMotion() Motion {
	return Motion{
		Duration:        300 * time.Millisecond,
		Damping:         0.7,
		InitialVelocity: 5,
		FPS:             60,
	}
}

// geometry is everything needed to plan frames for one layout pass.
type geometry struct {
	bounds   Bounds
	layout   Layout
	height   float64
	keyboard float64
}

// width is the horizontal space available between the resting margins.
func (g geometry) width() float64 {
	w := g.bounds.Width - g.layout.Margins.Left - g.layout.Margins.Right -
		g.bounds.Safe.Left - g.bounds.Safe.Right
	if w < 0 {
		return 0
	}
	return w
}

// rest returns the resting frame against the given edge.
func (g geometry) rest(anchor Anchor) Frame {
	f := Frame{
		Anchor:  anchor,
		Left:    g.layout.Margins.Left + g.bounds.Safe.Left,
		Right:   g.layout.Margins.Right + g.bounds.Safe.Right,
		Opacity: 1,
	}
	if f.Anchor == AnchorTop {
		f.Top = g.layout.Margins.Top + g.bounds.Safe.Top
	} else {
		f.Bottom = g.layout.Margins.Bottom + g.bounds.Safe.Bottom + g.keyboard
	}
	return f
}

// entrance returns the frame an entrance animation starts from.
func (g geometry) entrance(style AnimationStyle, rest Frame) Frame {
	f := rest
	switch style {
	case FadeInOut:
		f.Opacity = 0
	case SlideBottomUp, SlideBottomBack:
		f.Bottom = -g.height
	case SlideLeftRight:
		f.Left -= g.bounds.Width
		f.Right += g.bounds.Width
	case SlideRightLeft:
		f.Left += g.bounds.Width
		f.Right -= g.bounds.Width
	case SlideTopDown, SlideTopBack:
		f.Top = -g.height
	}
	return f
}

// exit returns the frame an exit animation ends at, starting from the
// current frame. The style may differ from the one the snackbar entered
// with, so vertical targets are expressed through the frame's own anchor.
func (g geometry) exit(style AnimationStyle, from Frame) Frame {
	f := from
	switch style {
	case FadeInOut:
		f.Opacity = 0
	case SlideBottomUp:
		f = g.withTop(f, g.top(from)-g.height)
		f.Opacity = 0
	case SlideBottomBack, SlideTopDown:
		f = g.withTop(f, g.bounds.Height+g.bounds.Safe.Bottom)
	case SlideLeftRight:
		shift := g.bounds.Width + g.bounds.Safe.Left
		f.Left += shift
		f.Right -= shift
	case SlideRightLeft:
		shift := g.bounds.Width + g.bounds.Safe.Right
		f.Left -= shift
		f.Right += shift
	case SlideTopBack:
		f = g.withTop(f, -(g.height + g.bounds.Safe.Top))
	}
	return f
}

// top returns the distance from the container top to the top of the view.
func (g geometry) top(f Frame) float64 {
	if f.Anchor == AnchorTop {
		return f.Top
	}
	return g.bounds.Height - f.Bottom - g.height
}

// withTop moves f so that its top edge sits at top.
func (g geometry) withTop(f Frame, top float64) Frame {
	if f.Anchor == AnchorTop {
		f.Top = top
	} else {
		f.Bottom = g.bounds.Height - top - g.height
	}
	return f
}
