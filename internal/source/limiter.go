package source

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter enforces per-source rate limits with one token bucket per
// source name
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with defaults for sources that report no
// rate of their own
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 2
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the named source's bucket clears a request
func (l *Limiter) Wait(ctx context.Context, source string) error {
	return l.getLimiter(source, 0).Wait(ctx)
}

// WaitProvider blocks using the provider's own advertised rate
func (l *Limiter) WaitProvider(ctx context.Context, p Provider) error {
	return l.getLimiter(p.Name(), p.RateLimit()).Wait(ctx)
}

// Allow checks the named source's bucket without waiting
func (l *Limiter) Allow(source string) bool {
	return l.getLimiter(source, 0).Allow()
}

// SetSourceRate overrides the rate for one source
func (l *Limiter) SetSourceRate(source string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[source] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// getLimiter returns the bucket for a source, creating it on first use
// with the advertised rate (or the default when it is zero)
func (l *Limiter) getLimiter(source string, advertised float64) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[source]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[source]; exists {
		return limiter
	}

	r := l.defaultRate
	if advertised > 0 {
		r = rate.Limit(advertised)
	}
	limiter = rate.NewLimiter(r, l.defaultBurst)
	l.limiters[source] = limiter
	return limiter
}
