package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker gates solution-page fetches on each host's robots.txt.
// Parsed policies are cached per host for the lifetime of the run.
type RobotsChecker struct {
	mu        sync.RWMutex
	policies  map[string]*robotstxt.RobotsData
	client    *http.Client
	userAgent string
}

func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		policies:  make(map[string]*robotstxt.RobotsData),
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay the
// host requests. An unreachable robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	policy, err := r.policyFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	allowed := policy.TestAgent(parsed.Path, r.userAgent)
	var delay time.Duration
	if group := policy.FindGroup(r.userAgent); group != nil {
		delay = group.CrawlDelay
	}
	return allowed, delay, nil
}

func (r *RobotsChecker) policyFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	policy, ok := r.policies[target.Host]
	r.mu.RUnlock()
	if ok {
		return policy, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// a missing robots.txt allows everything
	if resp.StatusCode == http.StatusNotFound {
		policy, _ = robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	} else {
		policy, err = robotstxt.FromResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("parse robots.txt: %w", err)
		}
	}

	r.mu.Lock()
	r.policies[target.Host] = policy
	r.mu.Unlock()
	return policy, nil
}
