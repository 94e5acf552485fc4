package snackbar

// Surface is the host container a snackbar draws into. All methods are
// called on the snackbar's loop.
type Surface interface {
	// Attach adds the snackbar's view to the container. The surface reads
	// content and element visibility from sb and routes gestures back
	// through Tap, Swipe, TriggerAction and TriggerSecondAction.
	Attach(sb *Snackbar) error

	// Bounds returns the container size and safe-area insets.
	Bounds() Bounds

	// Measure returns the view height for the given width.
	Measure(width float64) float64

	// Render positions the view.
	Render(f Frame)

	// Update applies a change in element visibility.
	Update(v Visibility)

	// Detach removes the view from the container.
	Detach()
}

// SurfaceResolver locates a surface when none was supplied explicitly.
// It returns nil when no surface is available.
type SurfaceResolver func() Surface

// EventKind identifies an Event.
type EventKind int

const (
	KeyboardShown EventKind = iota
	KeyboardHidden
	Resized
)

// Event is a container notification delivered through an EventSource.
type Event struct {
	Kind EventKind
	// KeyboardHeight is set for KeyboardShown.
	KeyboardHeight float64
}

// EventSource publishes keyboard and resize events. A surface that
// implements EventSource is subscribed automatically.
type EventSource interface {
	// Subscribe registers fn. Events may be delivered on any goroutine.
	Subscribe(fn func(Event)) Subscription
}

// Subscription is released when the snackbar is torn down.
type Subscription interface {
	Release()
}

// Announcer speaks messages through the platform screen reader.
type Announcer interface {
	ScreenReaderActive() bool
	Announce(message string)
}
