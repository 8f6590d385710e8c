package ratelimit

import (
	"sync"
	"time"
)

// Config holds fixed-window rate limiting configuration
type Config struct {
	// Maximum requests admitted per key within one window
	Requests int
	// Window length; counters reset once it elapses
	Window time.Duration
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// window tracks the request count for one key within the current window
type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window request counter keyed by an opaque string
// (tenant slug + caller origin). State lives in process memory only; it is
// intentionally not shared across instances.
type Limiter struct {
	config  Config
	mu      sync.Mutex
	windows map[string]*window
}

// New creates a limiter with the given configuration
func New(config Config) *Limiter {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Limiter{
		config:  config,
		windows: make(map[string]*window),
	}
}

// Allow reports whether one more request for key fits in the current window.
// The window check and the increment happen under one lock so two concurrent
// requests can never both be admitted on the last remaining slot.
func (l *Limiter) Allow(key string) bool {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.config.Window {
		l.windows[key] = &window{count: 1, start: now}
		return true
	}

	if w.count >= l.config.Requests {
		// Over quota: do not increment further
		return false
	}

	w.count++
	return true
}

// Count returns the current count for key, zero if the window elapsed
func (l *Limiter) Count(key string) int {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.config.Window {
		return 0
	}
	return w.count
}

// Purge removes windows that elapsed before now, bounding memory on
// long-running processes with many distinct keys
func (l *Limiter) Purge() {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.start) >= l.config.Window {
			delete(l.windows, key)
		}
	}
}
