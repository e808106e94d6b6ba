package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/studypack/internal/model"
)

// Limiter enforces a minimum delay between requests sharing the same key.
// Keys are provider names, so separate providers never block each other.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewLimiter creates a limiter that spaces consecutive calls for the same key
// by at least minDelay. A zero minDelay never blocks.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until minDelay has passed since the previous call for key.
// Returns an error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	last, ok := l.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= l.minDelay {
		l.lastCall[key] = now
		l.mu.Unlock()
		return nil
	}

	remaining := l.minDelay - now.Sub(last)
	// Reserve the slot so a concurrent caller queues behind this one.
	l.lastCall[key] = last.Add(l.minDelay)
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Ensure RateLimitedGenerator implements model.Generator.
var _ model.Generator = (*RateLimitedGenerator)(nil)

// RateLimitedGenerator waits on a shared Limiter before delegating to the
// wrapped Generator.
type RateLimitedGenerator struct {
	inner   model.Generator
	limiter *Limiter
	key     string
}

// NewRateLimitedGenerator wraps a Generator. Generators talking to the same
// provider should share one limiter and key.
func NewRateLimitedGenerator(inner model.Generator, limiter *Limiter, key string) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

func (g *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx, g.key); err != nil {
		return "", err
	}
	return g.inner.Generate(ctx, prompt)
}
