package mainloop

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Serial is a Loop backed by a single goroutine and wall-clock timers.
// It hosts snackbars when no toolkit main loop is available.
//
// The queue is unbounded so callbacks may post from the loop goroutine
// without blocking it.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wakeCh chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewSerial starts a serial loop. Call Stop to shut it down.
func NewSerial(logger *slog.Logger) *Serial {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Serial{
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
	}
	go s.run()
	return s
}

func (s *Serial) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.wakeCh:
			s.drain()
		case <-s.stopCh:
			return
		}
	}
}

// drain runs queued callbacks, including those they post, until the queue
// is empty or the loop is stopped.
func (s *Serial) drain() {
	for {
		s.mu.Lock()
		queue := s.queue
		s.queue = nil
		stopped := s.stopped
		s.mu.Unlock()

		if stopped || len(queue) == 0 {
			return
		}
		for _, fn := range queue {
			s.invoke(fn)
		}
	}
}

// invoke runs fn, keeping the loop alive if it panics.
func (s *Serial) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("loop callback panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn. Callbacks posted after Stop are dropped.
func (s *Serial) Post(fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// AfterFunc schedules fn on the loop after d.
func (s *Serial) AfterFunc(d time.Duration, fn func()) Timer {
	t := &serialTimer{}
	t.timer = time.AfterFunc(d, func() {
		s.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

// Stop terminates the loop goroutine and waits for it to exit.
func (s *Serial) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.queue = nil
		s.mu.Unlock()
		close(s.stopCh)
	})
	<-s.doneCh
}

type serialTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *serialTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return !t.fired.Load()
}
