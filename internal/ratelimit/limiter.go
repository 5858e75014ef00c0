// Package ratelimit throttles the shared external inference quota with a
// sliding one-minute window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow grants at most limit calls within any trailing window. It
// counts actual grants, not attempts, and is safe for concurrent callers:
// the prune-check-record sequence is one critical section.
type SlidingWindow struct {
	limit  int
	window time.Duration
	poll   time.Duration
	now    func() time.Time

	mu     sync.Mutex
	grants []time.Time
}

// NewSlidingWindow builds a limiter for limit grants per window, polling at
// poll when blocking. Zero window and poll default to one minute and one
// second.
func NewSlidingWindow(limit int, window, poll time.Duration) *SlidingWindow {
	if window <= 0 {
		window = time.Minute
	}
	if poll <= 0 {
		poll = time.Second
	}
	return &SlidingWindow{
		limit:  limit,
		window: window,
		poll:   poll,
		now:    time.Now,
	}
}

// TryAcquire reports whether a grant is available right now, recording it
// when so.
func (l *SlidingWindow) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.grants) >= l.limit {
		return false
	}
	l.grants = append(l.grants, now)
	return true
}

// Acquire blocks until a grant is available or ctx ends. Waiters poll on a
// fixed interval; admission is eventual once load subsides, with no ordering
// promise between waiters.
func (l *SlidingWindow) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.TryAcquire() {
				return nil
			}
		}
	}
}

// InWindow reports the number of grants currently inside the window.
func (l *SlidingWindow) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.grants)
}

// prune drops grants at or past window age. Callers hold mu.
func (l *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.grants) && !l.grants[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.grants = append(l.grants[:0], l.grants[i:]...)
	}
}
