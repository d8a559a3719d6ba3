package ratelimit

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindow is the cool-down between accepted submissions from one client.
	DefaultWindow = 10 * time.Second
	// DefaultCapacity bounds the number of tracked clients per process.
	DefaultCapacity = 1000
)

// Limiter decides whether a submission from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// WindowLimiter admits one request per key per window. Entries expire lazily on
// read; there are no background timers. State is per process, so several
// instances each throttle independently.
type WindowLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	window   time.Duration
	capacity int
	now      func() time.Time
}

// NewWindowLimiter creates a limiter. Non-positive arguments take the defaults.
func NewWindowLimiter(window time.Duration, capacity int) *WindowLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &WindowLimiter{
		last:     make(map[string]time.Time),
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (l *WindowLimiter) WithClock(now func() time.Time) *WindowLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Allow records an accepted request for key, or reports false while key is cooling down.
func (l *WindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[key]; ok {
		if now.Sub(last) < l.window {
			return false, nil
		}
		delete(l.last, key)
	}

	l.last[key] = now
	if len(l.last) > l.capacity {
		l.evictOldestHalf()
	}
	return true, nil
}

// Len returns the number of tracked keys.
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}

func (l *WindowLimiter) evictOldestHalf() {
	type entry struct {
		key string
		at  time.Time
	}
	entries := make([]entry, 0, len(l.last))
	for k, at := range l.last {
		entries = append(entries, entry{k, at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	for _, e := range entries[:len(entries)/2] {
		delete(l.last, e.key)
	}
}

// UnknownClient is the key used when no forwarded-for header is present.
const UnknownClient = "unknown"

// ClientKey derives the limiter key from the first X-Forwarded-For entry.
func ClientKey(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return UnknownClient
}
