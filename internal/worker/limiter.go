package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound requests per host so discovery and collection
// stay polite toward the solution sources they scrape.
type Limiter struct {
	mu     sync.Mutex
	byHost map[string]*rate.Limiter
	perSec rate.Limit
	burst  int
}

func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	// a zero rate would block every Wait until the context expires
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		byHost: make(map[string]*rate.Limiter),
		perSec: rate.Limit(requestsPerSecond),
		burst:  burst,
	}
}

// Wait blocks until the host of rawURL has token budget or ctx ends.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.hostLimiter(parsed.Host).Wait(ctx)
}

// WaitWithDelay additionally honors a crawl delay requested by the host.
func (l *Limiter) WaitWithDelay(ctx context.Context, rawURL string, crawlDelay time.Duration) error {
	if err := l.Wait(ctx, rawURL); err != nil {
		return err
	}
	if crawlDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(crawlDelay):
		return nil
	}
}

func (l *Limiter) hostLimiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byHost[host]
	if !ok {
		lim = rate.NewLimiter(l.perSec, l.burst)
		l.byHost[host] = lim
	}
	return lim
}
