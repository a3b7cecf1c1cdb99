package httpapi

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter keyed by caller-chosen strings.
// It guards both the login and the forgot-password endpoints, per IP and
// per email.
type rateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if max <= 0 {
		max = 10
	}
	return &rateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *rateLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	ts := l.entries[key]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}

	l.entries[key] = append(kept, now)
	return true
}
