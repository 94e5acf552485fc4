package daemon

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedSenders bounds the limiter map. Unique bus names are never
// reused, so the map is reset once it grows past this.
const maxTrackedSenders = 1024

// SenderLimiter is a token bucket per D-Bus sender.
type SenderLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewSenderLimiter allows perSecond snackbars per sender with the given
// burst. A perSecond of 0 disables limiting.
func NewSenderLimiter(perSecond float64, burst int) *SenderLimiter {
	l := &SenderLimiter{limiters: make(map[string]*rate.Limiter)}
	l.Update(perSecond, burst)
	return l
}

// Allow reports whether sender may show another snackbar now.
func (l *SenderLimiter) Allow(sender string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit == rate.Inf {
		return true
	}

	lim, ok := l.limiters[sender]
	if !ok {
		if len(l.limiters) >= maxTrackedSenders {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[sender] = lim
	}
	return lim.Allow()
}

// Update changes the rate. Existing buckets are dropped.
func (l *SenderLimiter) Update(perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limit = rate.Limit(perSecond)
	if perSecond <= 0 {
		l.limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	l.burst = burst
	l.limiters = make(map[string]*rate.Limiter)
}
