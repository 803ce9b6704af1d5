package contentdesk

import (
	"sync"
	"time"
)

// RateLimiter is a per-key sliding-window limiter. Sign-in uses Check and
// Record so only failed attempts count; the contact form uses Allow.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter allows max hits per key within window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		l.mu.Lock()
		for key := range l.hits {
			l.prune(key)
		}
		l.mu.Unlock()
	}
}

// prune drops hits older than the window. l.mu must be held.
func (l *RateLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	hits := l.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}

// Allow reports whether key is under the limit and records the hit if so.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prune(key)) >= l.max {
		return false
	}
	l.hits[key] = append(l.hits[key], l.now())
	return true
}

// Check reports whether key is under the limit without recording a hit.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) < l.max
}

// Record counts one hit for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.hits[key] = append(l.hits[key], l.now())
	l.mu.Unlock()
}

// Reset forgets every hit of key, e.g. after a successful sign-in.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
}

// Close stops the background cleanup.
func (l *RateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
