package tui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/snackbar/internal/mainloop"
)

// wakeMsg tells the model that posted callbacks are waiting.
type wakeMsg struct{}

// ProgramLoop adapts a bubbletea program to mainloop.Loop. Posted callbacks
// run inside Update, so they share the program's goroutine with every
// other message.
//
// Program.Send blocks until the event loop reads the message, which would
// deadlock when Post is called from Update. Callbacks are therefore queued
// and a single wake message is sent from a goroutine.
type ProgramLoop struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	queue  []func()
	waking bool
}

// NewProgramLoop creates a loop. Attach a program before it is run.
func NewProgramLoop() *ProgramLoop {
	return &ProgramLoop{}
}

// Attach connects the loop to p.
func (l *ProgramLoop) Attach(p *tea.Program) {
	l.setSender(p.Send)
}

func (l *ProgramLoop) setSender(send func(tea.Msg)) {
	l.mu.Lock()
	l.send = send
	l.mu.Unlock()
	l.wake()
}

// Post queues fn to run on the program goroutine.
func (l *ProgramLoop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.wake()
}

func (l *ProgramLoop) wake() {
	l.mu.Lock()
	if l.waking || l.send == nil || len(l.queue) == 0 {
		l.mu.Unlock()
		return
	}
	l.waking = true
	send := l.send
	l.mu.Unlock()

	go send(wakeMsg{})
}

// Drain runs queued callbacks, including those they post, and returns how
// many ran. The model calls it when a wakeMsg arrives.
func (l *ProgramLoop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		queue := l.queue
		l.queue = nil
		if len(queue) == 0 {
			l.waking = false
			l.mu.Unlock()
			return n
		}
		l.mu.Unlock()

		for _, fn := range queue {
			fn()
			n++
		}
	}
}

// AfterFunc runs fn on the program goroutine once d has elapsed.
func (l *ProgramLoop) AfterFunc(d time.Duration, fn func()) mainloop.Timer {
	t := &programTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

type programTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *programTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return !t.fired.Load()
}
