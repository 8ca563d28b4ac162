// Package ratelimit bounds per-principal request rates. The limiter is an
// injected capability: chat wiring picks the in-process sliding window or
// the Redis-backed window at startup.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter reports whether one more event is allowed for key, consuming it
// when allowed.
type Limiter interface {
	Allow(key string) bool
}

// SlidingWindow is an in-process rolling-window limiter. One timestamp queue
// per key, trimmed lazily on each check. Process-local: under N replicas the
// effective bound degrades to limit*N; deploy the Redis limiter when that
// matters.
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *SlidingWindow) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	q := l.events[key]
	trimmed := q[:0]
	for _, ts := range q {
		if ts.After(cutoff) {
			trimmed = append(trimmed, ts)
		}
	}
	if len(trimmed) >= l.limit {
		l.events[key] = trimmed
		return false
	}
	l.events[key] = append(trimmed, now)
	return true
}
