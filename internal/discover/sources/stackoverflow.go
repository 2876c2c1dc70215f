package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Tag and keyword catalogs the adapter samples from each run. Sampling keeps
// consecutive runs from hammering the same queries and surfaces errors from
// different parts of the stack.
var stackOverflowTags = []string{
	"windows", "macos", "linux", "ubuntu", "debian", "centos",
	"python", "javascript", "java", "c#", "php", "node.js", "typescript",
	"html", "css", "react", "angular", "vue.js", "nginx", "apache",
	"mysql", "postgresql", "mongodb", "redis", "sqlite",
	"docker", "kubernetes", "aws", "azure", "gcp", "git",
}

var errorKeywords = []string{
	"error", "exception", "failed", "cannot", "unable", "issue",
	"bug", "problem", "crash", "timeout", "denied", "not found",
	"invalid", "unexpected", "fatal", "critical", "warning",
}

// Patterns that pull an error-message core out of a question title
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ERROR[_\s]+[A-Z_]+[_\s]+\w+`),
	regexp.MustCompile(`0x[0-9A-Fa-f]{8}`),
	regexp.MustCompile(`(?i)Exception[:\s]+[\w.]+`),
	regexp.MustCompile(`(?i)Failed[:\s]+.+`),
	regexp.MustCompile(`(?i)Cannot[:\s]+.+`),
	regexp.MustCompile(`(?i)Unable to[:\s]+.+`),
}

// StackOverflowAdapter discovers error candidates through the Stack Exchange
// search API. With an API key it uses the advanced vote-sorted search over a
// randomized date window; without one it falls back to the basic title
// search, which has tighter quotas.
type StackOverflowAdapter struct {
	deps *Deps
	now  func() time.Time
}

func NewStackOverflowAdapter(deps *Deps) *StackOverflowAdapter {
	return &StackOverflowAdapter{deps: deps, now: time.Now}
}

func (a *StackOverflowAdapter) Name() string { return "stackoverflow" }

func (a *StackOverflowAdapter) Enabled() bool {
	return a.deps.Cfg.Discovery.Sources.StackOverflow.Enabled
}

type stackExchangeResponse struct {
	Items []stackExchangeQuestion `json:"items"`
}

type stackExchangeQuestion struct {
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Score        int      `json:"score"`
	ViewCount    int      `json:"view_count"`
	AnswerCount  int      `json:"answer_count"`
	CreationDate int64    `json:"creation_date"`
	Tags         []string `json:"tags"`
}

// Search queries the API once per sampled keyword and extracts candidate
// error messages from the returned question titles.
func (a *StackOverflowAdapter) Search(ctx context.Context) ([]model.RawCandidate, error) {
	soCfg := a.deps.Cfg.Discovery.Sources.StackOverflow
	apiKey := normalizeCredential(soCfg.APIKey)

	tags := sampleStrings(a.deps.Rng, stackOverflowTags, 5+a.deps.Rng.Intn(4))
	keywords := sampleStrings(a.deps.Rng, errorKeywords, 3+a.deps.Rng.Intn(3))

	var candidates []model.RawCandidate
	for _, keyword := range keywords {
		reqURL := a.buildSearchURL(keyword, tags, apiKey, soCfg)

		if err := a.deps.Limiter.Wait(ctx, reqURL); err != nil {
			return candidates, err
		}

		items, err := a.fetchQuestions(ctx, reqURL)
		if err != nil {
			a.deps.logf("stackoverflow query %q failed: %v", keyword, err)
			continue
		}

		for _, item := range items {
			text, ok := extractErrorMessage(item.Title)
			if !ok {
				continue
			}
			candidates = append(candidates, model.RawCandidate{
				Text:     text,
				Provider: model.ProviderStackOverflow,
				Metrics: map[string]float64{
					model.MetricScore:       float64(item.Score),
					model.MetricViewCount:   float64(item.ViewCount),
					model.MetricAnswerCount: float64(item.AnswerCount),
				},
				SourceURL:    item.Link,
				Title:        item.Title,
				Tags:         item.Tags,
				DiscoveredAt: a.now().UTC(),
			})
		}
	}

	a.deps.logf("stackoverflow yielded %d candidates", len(candidates))
	return candidates, nil
}

func (a *StackOverflowAdapter) buildSearchURL(keyword string, tags []string, apiKey string, cfg model.StackOverflowConfig) string {
	if apiKey != "" {
		// Randomized window inside the past year spreads discovery over
		// older but still-trending questions.
		windowDays := 30 + a.deps.Rng.Intn(61)
		end := a.now().AddDate(0, 0, -a.deps.Rng.Intn(301))
		start := end.AddDate(0, 0, -windowDays)

		minScore := cfg.MinScore - 2
		if minScore < 1 {
			minScore = 1
		}
		pageSize := cfg.MaxResults
		if pageSize > 30 {
			pageSize = 30
		}

		return "https://api.stackexchange.com/2.3/search/advanced?" + url.Values{
			"order":     {"desc"},
			"sort":      {"votes"},
			"q":         {keyword},
			"tagged":    {strings.Join(tags, ";")},
			"site":      {"stackoverflow"},
			"pagesize":  {strconv.Itoa(pageSize)},
			"min_score": {strconv.Itoa(minScore)},
			"filter":    {"withbody"},
			"fromdate":  {strconv.FormatInt(start.Unix(), 10)},
			"todate":    {strconv.FormatInt(end.Unix(), 10)},
			"key":       {apiKey},
		}.Encode()
	}

	return "https://api.stackexchange.com/2.3/search?" + url.Values{
		"order":    {"desc"},
		"sort":     {"activity"},
		"intitle":  {keyword},
		"site":     {"stackoverflow"},
		"pagesize": {"15"},
		"filter":   {"default"},
	}.Encode()
}

func (a *StackOverflowAdapter) fetchQuestions(ctx context.Context, reqURL string) ([]stackExchangeQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.deps.Cfg.HTTP.UserAgent)

	resp, err := a.deps.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.deps.Cfg.HTTP.MaxBodyBytes))
	if err != nil {
		return nil, err
	}

	var parsed stackExchangeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return parsed.Items, nil
}

// extractErrorMessage pulls the error-message core from a question title.
// Falls back to the whole title when it is short enough to serve as one.
func extractErrorMessage(title string) (string, bool) {
	for _, pattern := range errorPatterns {
		if match := pattern.FindString(title); match != "" {
			return strings.TrimSpace(match), true
		}
	}
	if n := utf8.RuneCountInString(title); n > 0 && n < 100 {
		return title, true
	}
	return "", false
}

// normalizeCredential treats unexpanded placeholders as absent
func normalizeCredential(value string) string {
	if value == "" || strings.HasPrefix(value, "${") || strings.HasPrefix(value, "your_") {
		return ""
	}
	return value
}

// sampleStrings draws n distinct entries from the catalog
func sampleStrings(rng *rand.Rand, catalog []string, n int) []string {
	if n > len(catalog) {
		n = len(catalog)
	}
	perm := rng.Perm(len(catalog))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, catalog[idx])
	}
	return out
}
