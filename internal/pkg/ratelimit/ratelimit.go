// Package ratelimit provides an in-process fixed-window request limiter.
// Windows are tracked per identity (client IP, or IP plus account for
// authenticated scopes) and live only in this process: in a multi-instance
// deployment each instance enforces its own quota.
package ratelimit

import (
	"sync"
	"time"
)

const defaultMaxKeys = 5000

type window struct {
	start time.Time
	count int
}

// Limiter counts requests per identity inside fixed windows. A window
// starts with the first request after the previous window expired; a
// request arriving exactly at the boundary opens the new window and is
// counted there only.
type Limiter struct {
	mu      sync.Mutex
	scope   string
	max     int
	window  time.Duration
	windows map[string]*window
	maxKeys int
	now     func() time.Time
}

// New creates a limiter for the given scope allowing max requests per window
func New(scope string, max int, windowDur time.Duration) *Limiter {
	if max <= 0 {
		max = 10
	}
	if windowDur <= 0 {
		windowDur = time.Minute
	}

	return &Limiter{
		scope:   scope,
		max:     max,
		window:  windowDur,
		windows: make(map[string]*window),
		maxKeys: defaultMaxKeys,
		now:     time.Now,
	}
}

// WithClock replaces the limiter's clock. Deterministic tests use it to
// step across window boundaries.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

// Scope returns the limiter's scope name
func (l *Limiter) Scope() string {
	return l.scope
}

// Allow records a request for identity and reports whether it fits in the
// current window. When it does not, retryAfter is the time remaining until
// the window ends.
func (l *Limiter) Allow(identity string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[identity]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.windows[identity] = w
		l.purgeLocked(now)
	}

	if w.count >= l.max {
		return false, w.start.Add(l.window).Sub(now)
	}

	w.count++
	return true, 0
}

// purgeLocked drops expired windows once the map outgrows maxKeys.
// Caller holds l.mu.
func (l *Limiter) purgeLocked(now time.Time) {
	if len(l.windows) <= l.maxKeys {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, key)
		}
	}
}

// RetryAfterSeconds rounds a retry delay up to whole seconds for the
// Retry-After header, never below one second.
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
