package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps one sliding window per key. State is per process.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	hits   []time.Time
	window time.Duration
}

func (sw *slidingWindow) tryConsume(limit int, now time.Time) (bool, int, time.Time) {
	sw.evict(now)
	if len(sw.hits) >= limit {
		return false, 0, sw.hits[0].Add(sw.window)
	}
	sw.hits = append(sw.hits, now)
	return true, limit - len(sw.hits), sw.hits[0].Add(sw.window)
}

func (sw *slidingWindow) evict(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for i < len(sw.hits) && !sw.hits[i].After(cutoff) {
		i++
	}
	sw.hits = sw.hits[i:]
}

type MemoryOption func(*InMemoryStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw, ok := s.windows[key]
	if !ok {
		sw = &slidingWindow{window: window}
		s.windows[key] = sw
	}
	now := s.now()
	allowed, remaining, resetAt := sw.tryConsume(limit, now)

	return &Result{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(allowed, resetAt, now),
	}, nil
}
