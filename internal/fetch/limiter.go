package fetch

import (
	"sync"
	"time"
)

// Limiter spaces out request start times per host. Reserve accounts for
// the caller's slot while holding the lock, so two concurrent calls to
// the same host always end up MinDelay apart even if both arrive before
// either request is issued. Different hosts only contend on the map lock.
type Limiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  map[string]time.Time
	now   func() time.Time
}

func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{
		delay: delay,
		last:  make(map[string]time.Time),
		now:   time.Now,
	}
}

// Reserve returns how long the caller must wait before starting a request
// to host. The returned wait is already claimed: the host's next slot is
// advanced immediately, not after the caller wakes up.
func (l *Limiter) Reserve(host string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	start := now
	if last, ok := l.last[host]; ok {
		if next := last.Add(l.delay); next.After(now) {
			start = next
		}
	}
	l.last[host] = start
	return start.Sub(now)
}
