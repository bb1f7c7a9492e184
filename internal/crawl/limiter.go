package crawl

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// domainLimiter spaces fetches to the same domain. Each domain gets its own
// token bucket, so waiting on a slow domain never delays the others.
type domainLimiter struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newDomainLimiter(delay time.Duration) *domainLimiter {
	l := &domainLimiter{delay: delay}
	if delay > 0 {
		l.limiters = make(map[string]*rate.Limiter)
	}
	return l
}

// Wait blocks until the domain may be fetched again or the context ends.
func (l *domainLimiter) Wait(ctx context.Context, domain string) error {
	if l == nil || l.delay <= 0 || domain == "" {
		return nil
	}

	l.mu.Lock()
	limiter, ok := l.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.delay), 1)
		l.limiters[domain] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
