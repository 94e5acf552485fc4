package mainloop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Loop driven by a virtual clock. Nothing runs until the owner
// calls RunPending or Advance, which makes timer-driven behaviour
// deterministic in tests and in offline previews.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	posted []func()
	timers []*manualTimer
}

type manualTimer struct {
	loop    *Manual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManual creates a manual loop whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post queues fn. It runs on the next RunPending or Advance.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

// AfterFunc arms a timer on the virtual clock.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{loop: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	return t
}

// Stop removes the timer from the loop.
func (t *manualTimer) Stop() bool {
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	for i, other := range t.loop.timers {
		if other == t {
			t.loop.timers = append(t.loop.timers[:i], t.loop.timers[i+1:]...)
			break
		}
	}
	return true
}

// RunPending runs posted callbacks until none remain, including callbacks
// posted while running. It returns the number of callbacks run.
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// Advance moves the clock forward by d, firing every timer that falls due in
// order. Posted callbacks are drained before each timer and at the end.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.RunPending()

		m.mu.Lock()
		if len(m.timers) == 0 || m.timers[0].due.After(target) {
			m.now = target
			m.mu.Unlock()
			break
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		t.fired = true
		if t.due.After(m.now) {
			m.now = t.due
		}
		m.mu.Unlock()

		t.fn()
	}

	m.RunPending()
}

// PendingTimers returns the number of armed timers.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// NextDue returns how long until the next timer fires, or false when no
// timer is armed.
func (m *Manual) NextDue() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return 0, false
	}
	return m.timers[0].due.Sub(m.now), true
}
