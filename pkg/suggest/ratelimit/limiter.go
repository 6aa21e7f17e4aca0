package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum spacing between outbound calls. It is global
// across all sentences: one "next available" timestamp throttles the
// coordinator's total outbound rate.
type Limiter struct {
	mu      sync.Mutex
	spacing time.Duration
	next    time.Time
}

func New(spacing time.Duration) *Limiter {
	return &Limiter{spacing: spacing}
}

// Wait blocks until the caller's slot arrives, then advances the next
// available timestamp by the configured spacing. Returns early with the
// context error if the caller is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}
	wait := l.next.Sub(now)
	l.next = l.next.Add(l.spacing)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
