package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Eviction tunables. The limiter fronts the credential-exchange endpoint,
// where keys are client IPs; a bucket idle for longer than evictAfter has
// refilled to capacity anyway and carries no state worth keeping.
const (
	evictInterval = time.Minute
	evictAfter    = 10 * time.Minute
)

// clientBucket tracks the spendable tokens for one key.
type clientBucket struct {
	remaining float64
	touched   time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory. It is the
// default Limiter for single-instance deployments; anything multi-instance
// needs a shared-store implementation behind the same interface.
type MemoryLimiter struct {
	refillPerSec float64
	capacity     float64

	mu      sync.Mutex
	buckets map[string]*clientBucket

	quitOnce sync.Once
	quit     chan struct{}
}

// NewMemoryLimiter builds a limiter that sustains rate requests per second
// per key and absorbs bursts up to burst. A janitor goroutine evicts idle
// buckets; stop it with Close.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	l := &MemoryLimiter{
		refillPerSec: rate,
		capacity:     float64(burst),
		buckets:      make(map[string]*clientBucket),
		quit:         make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow spends one token from key's bucket. An unseen key starts at full
// capacity. Allow never returns an error; the error slot exists for
// shared-store implementations.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{remaining: l.capacity, touched: now}
		l.buckets[key] = b
	} else {
		b.remaining += now.Sub(b.touched).Seconds() * l.refillPerSec
		if b.remaining > l.capacity {
			b.remaining = l.capacity
		}
		b.touched = now
	}

	if b.remaining < 1 {
		return false, nil
	}
	b.remaining--
	return true, nil
}

// Close stops the janitor. Idempotent.
func (l *MemoryLimiter) Close() error {
	l.quitOnce.Do(func() { close(l.quit) })
	return nil
}

func (l *MemoryLimiter) janitor() {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.quit:
			return
		case <-ticker.C:
			l.evictIdle(time.Now().Add(-evictAfter))
		}
	}
}

// evictIdle drops every bucket last touched before cutoff.
func (l *MemoryLimiter) evictIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.touched.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
