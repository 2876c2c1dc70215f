package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/daishir0/AutoErrorArticleGen/internal/cache"
	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/daishir0/AutoErrorArticleGen/internal/util"
	"github.com/daishir0/AutoErrorArticleGen/internal/worker"
	"golang.org/x/net/html"
)

// Collector gathers solution fragments and citations for one chosen
// candidate from Microsoft Learn, Stack Overflow answers, and Apple support
// communities. Providers are queried one after another; each source failure
// is logged and skipped, never fatal.
type Collector struct {
	httpClient *http.Client
	cache      cache.Cache
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	classifier *SourceClassifier
	cfg        *model.Config
	verbose    bool
}

// NewCollector wires the collector from configuration. cache may be nil to
// disable response caching.
func NewCollector(cfg *model.Config, responseCache cache.Cache) *Collector {
	return &Collector{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
			},
		},
		cache:      responseCache,
		limiter:    worker.NewLimiter(cfg.Collection.RequestsPerSecond, cfg.Collection.Burst),
		robots:     util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		classifier: NewSourceClassifier(cfg.Collection),
		cfg:        cfg,
		verbose:    cfg.Output.Verbose,
	}
}

// Collect gathers raw solutions and citations for the candidate. Zero
// solutions is a valid outcome; the aggregator handles the empty case.
func (c *Collector) Collect(ctx context.Context, candidate model.ScoredCandidate) ([]model.SolutionFragment, []model.SourceCitation, error) {
	var solutions []model.SolutionFragment
	var citations []model.SourceCitation

	c.logf("Collecting from Microsoft Learn...")
	msSolutions, msCitations := c.searchMicrosoftLearn(ctx, candidate.Text)
	solutions = append(solutions, msSolutions...)
	citations = append(citations, msCitations...)

	c.logf("Collecting from Stack Overflow answers...")
	soSolutions, soCitations := c.searchStackOverflowAnswers(ctx, candidate.Text)
	solutions = append(solutions, soSolutions...)
	citations = append(citations, soCitations...)

	if isMacOSError(candidate.Text) {
		c.logf("Collecting from Apple support communities...")
		appleSolutions, appleCitations := c.searchAppleSupport(ctx, candidate.Text)
		solutions = append(solutions, appleSolutions...)
		citations = append(citations, appleCitations...)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.logf("Collected %d solutions and %d citations", len(solutions), len(citations))
	return solutions, citations, nil
}

// searchMicrosoftLearn scrapes the Microsoft Learn search results and pulls
// solutions out of the top hits.
func (c *Collector) searchMicrosoftLearn(ctx context.Context, errorMessage string) ([]model.SolutionFragment, []model.SourceCitation) {
	var solutions []model.SolutionFragment
	var citations []model.SourceCitation

	searchURL := "https://learn.microsoft.com/en-us/search/?" + url.Values{
		"terms": {errorMessage},
		"scope": {"Windows"},
	}.Encode()

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		c.logf("Microsoft Learn search failed: %v", err)
		return nil, nil
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil
	}

	results := findAll(doc, hasClass("search-result"))
	for i, result := range results {
		if i >= 5 {
			break
		}

		title := nodeText(firstMatch(result, isElement("h3")))
		link := attrValue(firstMatch(result, isElement("a")), "href")
		snippet := nodeText(firstMatch(result, isElement("p")))
		if title == "" || link == "" {
			continue
		}
		link = resolveURL(searchURL, link)

		sourceType, reliability := c.classifier.Classify(link)
		citations = append(citations, model.SourceCitation{
			Title:       title,
			URL:         link,
			Snippet:     snippet,
			Type:        sourceType,
			Reliability: reliability,
		})

		if solution := c.extractSolutionFromPage(ctx, link, title); solution != nil {
			solutions = append(solutions, *solution)
		}
	}

	return solutions, citations
}

// Stack Exchange API payloads
type soSearchResponse struct {
	Items []soQuestion `json:"items"`
}

type soQuestion struct {
	QuestionID int64  `json:"question_id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Score      int    `json:"score"`
	Body       string `json:"body"`
}

type soAnswersResponse struct {
	Items []soAnswer `json:"items"`
}

type soAnswer struct {
	IsAccepted bool   `json:"is_accepted"`
	Score      int    `json:"score"`
	Body       string `json:"body"`
}

// searchStackOverflowAnswers queries the Stack Exchange API for answered
// questions matching the error and converts strong answers into solution
// fragments. Answer reliability follows min(0.9, 0.5 + score*0.05), bounded
// by the community ceiling.
func (c *Collector) searchStackOverflowAnswers(ctx context.Context, errorMessage string) ([]model.SolutionFragment, []model.SourceCitation) {
	var solutions []model.SolutionFragment
	var citations []model.SourceCitation

	searchURL := "https://api.stackexchange.com/2.3/search/advanced?" + url.Values{
		"order":    {"desc"},
		"sort":     {"votes"},
		"q":        {errorMessage},
		"site":     {"stackoverflow"},
		"pagesize": {"10"},
		"filter":   {"withbody"},
		"accepted": {"True"},
	}.Encode()

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		c.logf("Stack Overflow search failed: %v", err)
		return nil, nil
	}

	var search soSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		c.logf("Stack Overflow response parse failed: %v", err)
		return nil, nil
	}

	for _, question := range search.Items {
		citations = append(citations, model.SourceCitation{
			Title:       question.Title,
			URL:         question.Link,
			Snippet:     ExtractSnippet(question.Body),
			Type:        model.SourceTypeCommunity,
			Reliability: c.classifier.Bound(communityCeiling, question.Link),
		})

		answers, err := c.fetchAnswers(ctx, question.QuestionID)
		if err != nil {
			c.logf("answers for question %d failed: %v", question.QuestionID, err)
			continue
		}

		for i, answer := range answers {
			if i >= 3 {
				break
			}
			if !answer.IsAccepted && answer.Score <= 5 {
				continue
			}

			reliability := 0.5 + float64(answer.Score)*0.05
			if reliability > 0.9 {
				reliability = 0.9
			}

			solutions = append(solutions, model.SolutionFragment{
				Description: fmt.Sprintf("Stack Overflow解決策 (スコア: %d)", answer.Score),
				Steps:       ExtractSteps(answer.Body),
				Reliability: c.classifier.Bound(reliability, question.Link),
				SourceURL:   question.Link,
				SourceTitle: question.Title,
				AnswerScore: answer.Score,
			})
		}
	}

	return solutions, citations
}

func (c *Collector) fetchAnswers(ctx context.Context, questionID int64) ([]soAnswer, error) {
	answersURL := fmt.Sprintf("https://api.stackexchange.com/2.3/questions/%d/answers?", questionID) + url.Values{
		"order":  {"desc"},
		"sort":   {"votes"},
		"site":   {"stackoverflow"},
		"filter": {"withbody"},
	}.Encode()

	body, err := c.fetch(ctx, answersURL)
	if err != nil {
		return nil, err
	}

	var resp soAnswersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return resp.Items, nil
}

// searchAppleSupport scrapes Apple's discussion search for macOS errors.
// Only citations come from here; discussion threads rarely yield clean
// step sequences.
func (c *Collector) searchAppleSupport(ctx context.Context, errorMessage string) ([]model.SolutionFragment, []model.SourceCitation) {
	var citations []model.SourceCitation

	searchURL := "https://discussions.apple.com/search?" + url.Values{"q": {errorMessage}}.Encode()

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		c.logf("Apple support search failed: %v", err)
		return nil, nil
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil
	}

	results := findAll(doc, hasClass("search-result-item"))
	for i, result := range results {
		if i >= 3 {
			break
		}

		title := nodeText(firstMatch(result, isElement("h3")))
		link := attrValue(firstMatch(result, isElement("a")), "href")
		if title == "" || link == "" {
			continue
		}
		link = resolveURL(searchURL, link)

		sourceType, reliability := c.classifier.Classify(link)
		citations = append(citations, model.SourceCitation{
			Title:       title,
			URL:         link,
			Type:        sourceType,
			Reliability: reliability,
		})
	}

	return nil, citations
}

// extractSolutionFromPage fetches a result page and distills it into a
// solution fragment. Returns nil when the page has no usable content.
func (c *Collector) extractSolutionFromPage(ctx context.Context, pageURL, title string) *model.SolutionFragment {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		c.logf("solution page fetch failed: %v", err)
		return nil
	}

	steps := ExtractSteps(string(body))
	if len(steps) == 0 {
		return nil
	}

	sourceType, ceiling := c.classifier.Classify(pageURL)
	reliability := ceiling
	if sourceType != model.SourceTypeOfficial {
		reliability = 0.6
	}

	return &model.SolutionFragment{
		Description: "公式ドキュメントからの解決策: " + title,
		Steps:       steps,
		Reliability: reliability,
		SourceURL:   pageURL,
		SourceTitle: title,
	}
}

// fetch performs a polite GET: robots.txt check, per-domain rate limit,
// cache lookup, then the request with a bounded body read.
func (c *Collector) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if c.cache != nil {
		if data, found := c.cache.Get(cache.CacheKey(rawURL)); found {
			return data, nil
		}
	}

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, rawURL)
	if err == nil && !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.HTTP.UserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.HTTP.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if c.cache != nil {
		_ = c.cache.Set(cache.CacheKey(rawURL), body, c.cfg.Cache.TTL)
	}
	return body, nil
}

func (c *Collector) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func isMacOSError(errorMessage string) bool {
	lower := strings.ToLower(errorMessage)
	for _, kw := range []string{"macos", "mac os", "darwin", "kernel panic", "cocoa", "xcode", "safari", "finder"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// HTML helpers shared with the extractors

func hasClass(className string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, attr := range n.Attr {
			if attr.Key == "class" {
				for _, class := range strings.Fields(attr.Val) {
					if class == className {
						return true
					}
				}
			}
		}
		return false
	}
}

func firstMatch(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	matches := findAll(n, predicate)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func attrValue(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
