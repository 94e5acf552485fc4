package snackbar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors.
var (
	// ErrNoSurface is returned by Show when neither an explicit surface nor a
	// resolver produced one.
	ErrNoSurface = errors.New("snackbar: no display surface")

	// ErrNoLoop is returned by Show when the snackbar has no event loop.
	ErrNoLoop = errors.New("snackbar: no event loop")

	ErrUnknownDuration = errors.New("unknown duration")
	ErrUnknownStyle    = errors.New("unknown animation style")
)

// Duration selects how long a snackbar stays up before it dismisses itself.
type Duration int

const (
	Short Duration = iota
	Middle
	Long
	// Forever never auto-dismisses.
	Forever
)

var durationNames = map[Duration]string{
	Short:   "short",
	Middle:  "middle",
	Long:    "long",
	Forever: "forever",
}

func (d Duration) String() string {
	if name, ok := durationNames[d]; ok {
		return name
	}
	return fmt.Sprintf("duration(%d)", int(d))
}

// ParseDuration parses a duration name.
func ParseDuration(s string) (Duration, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for d, name := range durationNames {
		if name == key {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDuration, s)
}

// Timing maps durations to wall time.
type Timing struct {
	Short  time.Duration
	Middle time.Duration
	Long   time.Duration
}

// DefaultTiming returns the stock durations: 1s, 3s and 5s.
func DefaultTiming() Timing {
	return Timing{
		Short:  1 * time.Second,
		Middle: 3 * time.Second,
		Long:   5 * time.Second,
	}
}

// Timeout returns the auto-dismiss delay for d. The second result is false
// for Forever, which has no timer at all.
func (t Timing) Timeout(d Duration) (time.Duration, bool) {
	switch d {
	case Short:
		return t.Short, true
	case Middle:
		return t.Middle, true
	case Long:
		return t.Long, true
	default:
		return 0, false
	}
}

// AnimationStyle selects the entrance and exit motion.
type AnimationStyle int

const (
	FadeInOut AnimationStyle = iota
	SlideBottomUp
	SlideBottomBack
	SlideLeftRight
	SlideRightLeft
	SlideTopDown
	SlideTopBack
)

// DefaultStyle is used when no animation style is configured.
const DefaultStyle = SlideBottomUp

var styleNames = map[AnimationStyle]string{
	FadeInOut:       "fade",
	SlideBottomUp:   "slide-bottom-up",
	SlideBottomBack: "slide-bottom-back",
	SlideLeftRight:  "slide-left-right",
	SlideRightLeft:  "slide-right-left",
	SlideTopDown:    "slide-top-down",
	SlideTopBack:    "slide-top-back",
}

func (s AnimationStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// ParseStyle parses an animation style name. Underscores are accepted in
// place of hyphens.
func ParseStyle(s string) (AnimationStyle, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if key == "fade-in-out" {
		return FadeInOut, nil
	}
	for style, name := range styleNames {
		if name == key {
			return style, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// StyleNames lists every style name in declaration order.
func StyleNames() []string {
	names := make([]string, 0, len(styleNames))
	for s := FadeInOut; s <= SlideTopBack; s++ {
		names = append(names, styleNames[s])
	}
	return names
}

// Anchor is the container edge a snackbar rests against.
type Anchor int

const (
	AnchorBottom Anchor = iota
	AnchorTop
)

// Anchor returns where a snackbar using s rests: the slide-from-top styles
// rest against the top edge, everything else against the bottom.
func (s AnimationStyle) Anchor() Anchor {
	switch s {
	case SlideTopDown, SlideTopBack:
		return AnchorTop
	default:
		return AnchorBottom
	}
}

// State is the lifecycle state of a snackbar.
type State int32

const (
	Created State = iota
	Showing
	Dismissing
	Dismissed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Showing:
		return "showing"
	case Dismissing:
		return "dismissing"
	case Dismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SwipeDirection is the direction of a swipe gesture.
type SwipeDirection int

const (
	SwipeLeft SwipeDirection = iota
	SwipeRight
	SwipeUp
	SwipeDown
)

func (d SwipeDirection) String() string {
	switch d {
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	case SwipeUp:
		return "up"
	case SwipeDown:
		return "down"
	default:
		return fmt.Sprintf("swipe(%d)", int(d))
	}
}

// ExitStyle returns the style used to leave the screen after a swipe.
func (d SwipeDirection) ExitStyle() AnimationStyle {
	switch d {
	case SwipeRight:
		return SlideLeftRight
	case SwipeLeft:
		return SlideRightLeft
	default:
		return SlideTopBack
	}
}

// DismissReason records what ended a snackbar.
type DismissReason int

const (
	ReasonNone DismissReason = iota
	// ReasonExpired means the auto-dismiss timer fired.
	ReasonExpired
	// ReasonManual means Dismiss was called.
	ReasonManual
	ReasonTapped
	ReasonSwiped
	ReasonAction
	// ReasonClosed means the snackbar was torn down without animation.
	ReasonClosed
)

func (r DismissReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExpired:
		return "expired"
	case ReasonManual:
		return "dismissed"
	case ReasonTapped:
		return "tapped"
	case ReasonSwiped:
		return "swiped"
	case ReasonAction:
		return "action"
	case ReasonClosed:
		return "closed"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Insets are safe-area insets of a container, in surface units.
type Insets struct {
	Left, Right, Top, Bottom float64
}

// Bounds describes the container a snackbar is attached to.
type Bounds struct {
	Width, Height float64
	Safe          Insets
}

// Frame positions a snackbar inside its container. The horizontal margins
// are measured from the left and right edges; the vertical position is Top
// for top-anchored frames and Bottom for bottom-anchored ones.
type Frame struct {
	Anchor  Anchor
	Left    float64
	Right   float64
	Top     float64
	Bottom  float64
	Opacity float64
}

// Lerp interpolates between f and to. t is not clamped so that spring
// overshoot carries through.
func (f Frame) Lerp(to Frame, t float64) Frame {
	mix := func(a, b float64) float64 { return a + (b-a)*t }
	return Frame{
		Anchor:  to.Anchor,
		Left:    mix(f.Left, to.Left),
		Right:   mix(f.Right, to.Right),
		Top:     mix(f.Top, to.Top),
		Bottom:  mix(f.Bottom, to.Bottom),
		Opacity: clamp01(mix(f.Opacity, to.Opacity)),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
