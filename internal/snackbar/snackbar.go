// Package snackbar implements the lifecycle of a transient notification
// view: display with an entrance animation, an optional auto-dismiss timer,
// user dismissal by tap, swipe or action button, and an exit animation that
// ends in teardown.
//
// A Snackbar is owned by one event loop. Show must be called on that loop;
// Dismiss, Close and the gesture entry points may be called from anywhere
// and marshal onto it.
package snackbar

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jmylchreest/snackbar/internal/mainloop"
)

// Snackbar is a single transient notification.
type Snackbar struct {
	message           string
	icon              string
	actionLabel       string
	secondActionLabel string
	duration          Duration
	style             AnimationStyle
	dismissOnSwipe    bool
	dismissOnTap      bool

	timing Timing
	layout Layout
	motion Motion

	loop      mainloop.Loop
	surface   Surface
	resolver  SurfaceResolver
	events    EventSource
	announcer Announcer
	logger    *slog.Logger

	// Callbacks
	onTap          func()
	onSwipe        func(dir SwipeDirection)
	onAction       func()
	onSecondAction func()
	onDismiss      func(reason DismissReason)

	// State, written on the loop only.
	state         atomic.Int32
	reason        DismissReason
	visibility    Visibility
	timer         mainloop.Timer
	anim          *animation
	subs          []Subscription
	frame         Frame
	anchor        Anchor
	height        float64
	keyboard      float64
	keyboardShown bool
}

// Option configures a Snackbar.
type Option func(*Snackbar)

// WithAction sets the primary action label and handler.
func WithAction(label string, fn func()) Option {
	return func(s *Snackbar) {
		s.actionLabel = label
		s.onAction = fn
	}
}

// WithSecondAction sets the secondary action label and handler.
func WithSecondAction(label string, fn func()) Option {
	return func(s *Snackbar) {
		s.secondActionLabel = label
		s.onSecondAction = fn
	}
}

// WithIcon sets the icon name.
func WithIcon(icon string) Option {
	return func(s *Snackbar) { s.icon = icon }
}

// WithStyle sets the animation style.
func WithStyle(style AnimationStyle) Option {
	return func(s *Snackbar) { s.style = style }
}

// WithDismissOnSwipe controls whether a swipe dismisses the snackbar. Off by
// default.
func WithDismissOnSwipe(enabled bool) Option {
	return func(s *Snackbar) { s.dismissOnSwipe = enabled }
}

// WithDismissOnTap controls whether a tap dismisses the snackbar.
func WithDismissOnTap(enabled bool) Option {
	return func(s *Snackbar) { s.dismissOnTap = enabled }
}

// WithTiming sets the auto-dismiss delays.
func WithTiming(t Timing) Option {
	return func(s *Snackbar) { s.timing = t }
}

// WithLayout sets margins, minimum height and keyboard padding.
func WithLayout(l Layout) Option {
	return func(s *Snackbar) { s.layout = l }
}

// WithMotion sets the spring and duration of animations.
func WithMotion(m Motion) Option {
	return func(s *Snackbar) { s.motion = m }
}

// WithLoop sets the event loop that owns the snackbar.
func WithLoop(loop mainloop.Loop) Option {
	return func(s *Snackbar) { s.loop = loop }
}

// WithSurface sets the display surface explicitly.
func WithSurface(surface Surface) Option {
	return func(s *Snackbar) { s.surface = surface }
}

// WithResolver sets the resolver consulted at Show time when no surface
// was given.
func WithResolver(r SurfaceResolver) Option {
	return func(s *Snackbar) { s.resolver = r }
}

// WithEvents sets the keyboard and resize event source. Without it the
// surface is used when it implements EventSource.
func WithEvents(src EventSource) Option {
	return func(s *Snackbar) { s.events = src }
}

// WithAnnouncer sets where the message is announced for screen readers.
func WithAnnouncer(a Announcer) Option {
	return func(s *Snackbar) { s.announcer = a }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Snackbar) { s.logger = logger }
}

// New creates a snackbar in the Created state.
func New(message string, duration Duration, opts ...Option) *Snackbar {
	s := &Snackbar{
		message:      message,
		duration:     duration,
		style:        DefaultStyle,
		dismissOnTap: true,
		timing:       DefaultTiming(),
		layout:       DefaultLayout(),
		motion:       DefaultMotion(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// OnTap sets the tap handler.
func (s *Snackbar) OnTap(cb func()) {
	s.onTap = cb
}

// OnSwipe sets the swipe handler. It runs before any swipe dismissal.
func (s *Snackbar) OnSwipe(cb func(dir SwipeDirection)) {
	s.onSwipe = cb
}

// OnAction sets the primary action handler.
func (s *Snackbar) OnAction(cb func()) {
	s.onAction = cb
}

// OnSecondAction sets the secondary action handler.
func (s *Snackbar) OnSecondAction(cb func()) {
	s.onSecondAction = cb
}

// OnDismiss sets the handler run once the snackbar reaches Dismissed.
func (s *Snackbar) OnDismiss(cb func(reason DismissReason)) {
	s.onDismiss = cb
}

// Message returns the text shown.
func (s *Snackbar) Message() string { return s.message }

// Icon returns the icon name, empty for none.
func (s *Snackbar) Icon() string { return s.icon }

// ActionLabel returns the primary action label.
func (s *Snackbar) ActionLabel() string { return s.actionLabel }

// SecondActionLabel returns the secondary action label.
func (s *Snackbar) SecondActionLabel() string { return s.secondActionLabel }

// Duration returns how long the snackbar stays up.
func (s *Snackbar) Duration() Duration { return s.duration }

// Style returns the current animation style. A swipe changes it.
func (s *Snackbar) Style() AnimationStyle { return s.style }

// State returns the lifecycle state. Safe to call from any goroutine.
func (s *Snackbar) State() State {
	return State(s.state.Load())
}

// Reason returns why the snackbar was dismissed.
func (s *Snackbar) Reason() DismissReason { return s.reason }

// Visibility returns the current element visibility.
func (s *Snackbar) Visibility() Visibility { return s.visibility }

// Frame returns the last rendered frame.
func (s *Snackbar) Frame() Frame { return s.frame }

// Height returns the measured height.
func (s *Snackbar) Height() float64 { return s.height }

// TimerArmed reports whether the auto-dismiss timer is pending.
func (s *Snackbar) TimerArmed() bool { return s.timer != nil }

// Show attaches the snackbar to its surface, arms the auto-dismiss timer and
// starts the entrance animation. Calling Show on a snackbar that has already
// been shown is a no-op.
func (s *Snackbar) Show() error {
	if s.State() != Created {
		return nil
	}
	if s.loop == nil {
		return ErrNoLoop
	}

	surface := s.surface
	if surface == nil && s.resolver != nil {
		surface = s.resolver()
	}
	if surface == nil {
		return ErrNoSurface
	}
	s.surface = surface

	s.visibility = ComputeVisibility(Content{
		Icon:              s.icon,
		ActionLabel:       s.actionLabel,
		SecondActionLabel: s.secondActionLabel,
		HasAction:         s.onAction != nil,
		HasSecondAction:   s.onSecondAction != nil,
	})

	if err := surface.Attach(s); err != nil {
		return fmt.Errorf("failed to attach snackbar: %w", err)
	}
	s.setState(Showing)
	s.subscribe()

	if timeout, ok := s.timing.Timeout(s.duration); ok {
		s.timer = s.loop.AfterFunc(timeout, s.expire)
	}

	s.anchor = s.style.Anchor()
	g := s.measure()
	rest := g.rest(s.anchor)
	s.anim = animate(s.loop, s.motion, g.entrance(s.style, rest), rest, s.render, nil)

	if s.announcer != nil && s.announcer.ScreenReaderActive() {
		s.announcer.Announce(s.message)
	}

	s.logger.Debug("snackbar shown",
		"duration", s.duration,
		"style", s.style,
		"visibility", s.visibility,
	)
	return nil
}

// Dismiss starts the exit animation. It has no effect unless the snackbar
// is showing.
func (s *Snackbar) Dismiss() {
	s.post(func() { s.dismiss(ReasonManual) })
}

// Close tears the snackbar down without an exit animation. A snackbar that
// is mid-exit is finished immediately.
func (s *Snackbar) Close() {
	s.post(s.close)
}

// Tap invokes the tap handler and, when enabled, dismisses.
func (s *Snackbar) Tap() {
	s.post(func() {
		if s.State() != Showing {
			return
		}
		if s.onTap != nil {
			s.onTap()
		}
		if s.dismissOnTap {
			s.dismiss(ReasonTapped)
		}
	})
}

// Swipe invokes the swipe handler and, when enabled, dismisses in the
// direction of the swipe.
func (s *Snackbar) Swipe(dir SwipeDirection) {
	s.post(func() {
		if s.State() != Showing {
			return
		}
		if s.onSwipe != nil {
			s.onSwipe(dir)
		}
		if s.dismissOnSwipe {
			s.style = dir.ExitStyle()
			s.dismiss(ReasonSwiped)
		}
	})
}

// TriggerAction presses the primary action button.
func (s *Snackbar) TriggerAction() {
	s.post(func() { s.action(false) })
}

// TriggerSecondAction presses the secondary action button.
func (s *Snackbar) TriggerSecondAction() {
	s.post(func() { s.action(true) })
}

func (s *Snackbar) post(fn func()) {
	if s.loop == nil {
		return
	}
	s.loop.Post(fn)
}

func (s *Snackbar) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Snackbar) expire() {
	s.timer = nil
	s.dismiss(ReasonExpired)
}

// action runs an action handler. A Forever snackbar whose primary action is
// visible switches to its progress indicator and stays up; anything else is
// dismissed.
func (s *Snackbar) action(second bool) {
	if s.State() != Showing {
		return
	}

	handler := s.onAction
	visible := s.visibility.Action
	if second {
		handler = s.onSecondAction
		visible = s.visibility.SecondAction
	}
	if !visible {
		return
	}
	if handler != nil {
		handler()
	}

	if s.duration == Forever && s.visibility.Action {
		s.visibility = s.visibility.busy()
		s.surface.Update(s.visibility)
		return
	}
	s.dismiss(ReasonAction)
}

func (s *Snackbar) dismiss(reason DismissReason) {
	if s.State() != Showing {
		return
	}
	s.stopTimer()
	s.setState(Dismissing)
	s.reason = reason

	if s.visibility.Progress {
		s.visibility.Progress = false
		s.surface.Update(s.visibility)
	}

	if s.anim != nil {
		s.anim.stop()
	}
	g := s.geometry(s.surface.Bounds())
	s.anim = animate(s.loop, s.motion, s.frame, g.exit(s.style, s.frame), s.render, s.finish)

	s.logger.Debug("snackbar dismissing", "reason", reason, "style", s.style)
}

func (s *Snackbar) close() {
	st := s.State()
	if st != Showing && st != Dismissing {
		return
	}
	if st == Showing {
		s.reason = ReasonClosed
	}
	if s.anim != nil {
		s.anim.stop()
	}
	s.finish()
}

// finish moves to Dismissed, notifies the dismiss handler and detaches.
// After it returns no callback fires again.
func (s *Snackbar) finish() {
	if s.State() == Dismissed {
		return
	}
	s.anim = nil
	s.stopTimer()
	s.setState(Dismissed)

	for _, sub := range s.subs {
		sub.Release()
	}
	s.subs = nil

	onDismiss := s.onDismiss
	s.onTap = nil
	s.onSwipe = nil
	s.onAction = nil
	s.onSecondAction = nil
	s.onDismiss = nil

	if onDismiss != nil {
		onDismiss(s.reason)
	}
	s.surface.Detach()

	s.logger.Debug("snackbar dismissed", "reason", s.reason)
}

func (s *Snackbar) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Snackbar) render(f Frame) {
	s.frame = f
	s.surface.Render(f)
}

func (s *Snackbar) subscribe() {
	src := s.events
	if src == nil {
		if es, ok := s.surface.(EventSource); ok {
			src = es
		}
	}
	if src == nil {
		return
	}
	sub := src.Subscribe(func(ev Event) {
		s.post(func() { s.handleEvent(ev) })
	})
	if sub != nil {
		s.subs = append(s.subs, sub)
	}
}

// handleEvent reacts to keyboard and resize notifications. Repeated
// keyboard notifications in the same direction are ignored.
func (s *Snackbar) handleEvent(ev Event) {
	if s.State() != Showing {
		return
	}

	switch ev.Kind {
	case KeyboardShown:
		if s.keyboardShown {
			return
		}
		s.keyboardShown = true
		s.keyboard = ev.KeyboardHeight + s.layout.KeyboardPadding
		s.moveToRest(true)
	case KeyboardHidden:
		if !s.keyboardShown {
			return
		}
		s.keyboardShown = false
		s.keyboard = 0
		s.moveToRest(true)
	case Resized:
		s.moveToRest(false)
	}
}

// moveToRest re-measures and brings the view to its resting frame.
func (s *Snackbar) moveToRest(animated bool) {
	if s.anim != nil {
		s.anim.stop()
		s.anim = nil
	}
	g := s.measure()
	rest := g.rest(s.anchor)
	if !animated {
		s.render(rest)
		return
	}
	s.anim = animate(s.loop, s.motion, s.frame, rest, s.render, nil)
}

func (s *Snackbar) measure() geometry {
	bounds := s.surface.Bounds()
	g := s.geometry(bounds)
	h := s.surface.Measure(g.width())
	if h < s.layout.MinHeight {
		h = s.layout.MinHeight
	}
	s.height = h
	g.height = h
	return g
}

func (s *Snackbar) geometry(bounds Bounds) geometry {
	return geometry{
		bounds:   bounds,
		layout:   s.layout,
		height:   s.height,
		keyboard: s.keyboard,
	}
}
