package display

import (
	"sync/atomic"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/snackbar/internal/mainloop"
)

// GLibLoop runs snackbar callbacks on the GLib main context, which is the
// GTK UI thread.
type GLibLoop struct{}

// NewGLibLoop returns a loop bound to the default GLib main context.
func NewGLibLoop() *GLibLoop {
	return &GLibLoop{}
}

// Post schedules fn as an idle callback.
func (GLibLoop) Post(fn func()) {
	glib.IdleAdd(fn)
}

// AfterFunc schedules fn as a one-shot timeout source.
func (GLibLoop) AfterFunc(d time.Duration, fn func()) mainloop.Timer {
	t := &glibTimer{}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	t.handle = glib.TimeoutAdd(uint(ms), func() bool {
		if t.stopped.Load() {
			return false
		}
		t.fired.Store(true)
		fn()
		return false
	})
	return t
}

type glibTimer struct {
	handle  glib.SourceHandle
	stopped atomic.Bool
	fired   atomic.Bool
}

// Stop removes the source unless it already ran. Removing a finished
// source makes GLib print a critical warning.
func (t *glibTimer) Stop() bool {
	if t.fired.Load() || t.stopped.Swap(true) {
		return false
	}
	glib.SourceRemove(t.handle)
	return true
}
