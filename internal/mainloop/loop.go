// Package mainloop provides single-threaded event loops that run posted
// callbacks and timers one at a time.
//
// Snackbar lifecycles are UI-thread affine: every state transition and every
// user callback runs on the loop that owns the snackbar. Toolkit hosts adapt
// their own main loop (GLib, bubbletea) to Loop; this package supplies a
// goroutine-backed loop for headless use and a manually clocked loop for tests.
package mainloop

import "time"

// Loop runs callbacks serially.
type Loop interface {
	// Post schedules fn to run on the loop. Safe to call from any goroutine.
	Post(fn func())

	// AfterFunc schedules fn to run on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the timer
	// before it fired. Once Stop has been called from the loop the callback
	// is guaranteed not to run. Calling Stop more than once is safe.
	Stop() bool
}
