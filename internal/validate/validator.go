// Package validate checks that collected citation links are alive before
// they are cited in a generated article. Dead or unreachable sources are
// dropped rather than published.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/daishir0/AutoErrorArticleGen/internal/util"
	"github.com/daishir0/AutoErrorArticleGen/internal/worker"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// CheckResult is the liveness verdict for one citation URL
type CheckResult struct {
	URL         string
	Accessible  bool
	Dead        bool
	StatusCode  int
	RedirectURL string
	Error       string
}

// LinkChecker verifies citation URLs concurrently
type LinkChecker struct {
	httpClient *http.Client
	workers    int
	userAgent  string
}

// NewLinkChecker creates a link checker. Redirects are followed up to three
// hops; anything deeper counts as inaccessible.
func NewLinkChecker(timeout time.Duration, workers int, userAgent, httpProxy, httpsProxy string) *LinkChecker {
	if workers <= 0 {
		workers = 10
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		workers:   workers,
		userAgent: userAgent,
	}
}

// checkJob carries one citation through the worker pool
type checkJob struct {
	index   int
	url     string
	checker *LinkChecker
}

// checkJobResult pairs a verdict with its input position
type checkJobResult struct {
	index  int
	result CheckResult
}

func (r *checkJobResult) GetError() error {
	if r.result.Error != "" {
		return fmt.Errorf("%s: %s", r.result.URL, r.result.Error)
	}
	return nil
}

func (j *checkJob) Execute(ctx context.Context) worker.Result {
	return &checkJobResult{
		index:  j.index,
		result: j.checker.checkSingleWithRetry(ctx, j.url),
	}
}

// Check verifies all citation URLs. Results are returned in input order,
// one per citation.
func (c *LinkChecker) Check(ctx context.Context, citations []model.SourceCitation) []CheckResult {
	if len(citations) == 0 {
		return []CheckResult{}
	}

	pool := worker.NewPool(c.workers)
	pool.Start()

	for i, cit := range citations {
		pool.Submit(&checkJob{index: i, url: cit.URL, checker: c})
	}

	poolResults := pool.Wait()

	paired := make([]*checkJobResult, 0, len(poolResults))
	for _, r := range poolResults {
		paired = append(paired, r.(*checkJobResult))
	}
	sort.Slice(paired, func(i, j int) bool { return paired[i].index < paired[j].index })

	results := make([]CheckResult, 0, len(paired))
	for _, p := range paired {
		results = append(results, p.result)
	}
	return results
}

// FilterAccessible returns the citations whose check passed, preserving
// order. Results must come from a Check call on the same slice.
func FilterAccessible(citations []model.SourceCitation, results []CheckResult) []model.SourceCitation {
	kept := make([]model.SourceCitation, 0, len(citations))
	for i, cit := range citations {
		if i < len(results) && results[i].Accessible {
			kept = append(kept, cit)
		}
	}
	return kept
}

func (c *LinkChecker) checkSingle(ctx context.Context, rawURL string) CheckResult {
	result := CheckResult{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.Dead = true
		return result
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Dead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Accessible = true
	} else if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		result.Dead = true
	}

	if resp.Request.URL.String() != rawURL {
		result.RedirectURL = resp.Request.URL.String()
	}

	return result
}

// checkSingleWithRetry retries transient failures with exponential backoff
func (c *LinkChecker) checkSingleWithRetry(ctx context.Context, rawURL string) CheckResult {
	var result CheckResult
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkSingle(ctx, rawURL)
		if !isRetryableCheckResult(result) {
			return result
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableCheckResult returns true for results that indicate transient failures
func isRetryableCheckResult(result CheckResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" && isRetryableNetworkError(result.Error) {
		return true
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
