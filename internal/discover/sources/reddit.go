package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/mmcdole/gofeed"
)

// Subreddits the adapter samples from: tech support, OS, programming,
// infrastructure, and database communities.
var redditSubreddits = []string{
	"techsupport", "pcmasterrace", "buildapc", "sysadmin",
	"windows", "MacOS", "linux", "Ubuntu", "debian",
	"programming", "learnprogramming", "Python", "javascript", "webdev",
	"docker", "kubernetes", "aws", "devops", "selfhosted",
	"mysql", "PostgreSQL", "mongodb", "Database",
	"ITCareerQuestions", "cscareerquestions", "node",
}

// Title/flair markers of an error-related post
var errorIndicators = []string{
	"error", "problem", "issue", "help", "failed", "crash",
	"not working", "broken", "bug", "trouble",
}

// RedditAdapter discovers error candidates from hot posts in sampled
// subreddits. With OAuth credentials it uses the official API; without them
// it degrades to the public RSS feeds.
type RedditAdapter struct {
	deps   *Deps
	parser *gofeed.Parser
	now    func() time.Time
}

func NewRedditAdapter(deps *Deps) *RedditAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = deps.Cfg.HTTP.UserAgent
	return &RedditAdapter{deps: deps, parser: parser, now: time.Now}
}

func (a *RedditAdapter) Name() string { return "reddit" }

func (a *RedditAdapter) Enabled() bool {
	return a.deps.Cfg.Discovery.Sources.Reddit.Enabled
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title         string `json:"title"`
	SelfText      string `json:"selftext"`
	Ups           int    `json:"ups"`
	NumComments   int    `json:"num_comments"`
	Permalink     string `json:"permalink"`
	LinkFlairText string `json:"link_flair_text"`
}

// Search samples 3-6 subreddits and pulls error-related hot posts
func (a *RedditAdapter) Search(ctx context.Context) ([]model.RawCandidate, error) {
	redditCfg := a.deps.Cfg.Discovery.Sources.Reddit
	clientID := normalizeCredential(redditCfg.ClientID)
	clientSecret := normalizeCredential(redditCfg.ClientSecret)

	subreddits := sampleStrings(a.deps.Rng, redditSubreddits, 3+a.deps.Rng.Intn(4))

	if clientID == "" || clientSecret == "" {
		a.deps.logf("reddit credentials unset, degrading to public feeds")
		return a.searchFeeds(ctx, subreddits)
	}

	token, err := a.authenticate(ctx, clientID, clientSecret)
	if err != nil {
		a.deps.logf("reddit OAuth failed, degrading to public feeds: %v", err)
		return a.searchFeeds(ctx, subreddits)
	}

	var candidates []model.RawCandidate
	for _, subreddit := range subreddits {
		listingURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/hot?limit=25", subreddit)

		if err := a.deps.Limiter.Wait(ctx, listingURL); err != nil {
			return candidates, err
		}

		posts, err := a.fetchListing(ctx, listingURL, token)
		if err != nil {
			a.deps.logf("reddit r/%s failed: %v", subreddit, err)
			continue
		}

		for _, post := range posts {
			if !isErrorRelatedPost(post) || post.Ups < redditCfg.MinUpvotes {
				continue
			}
			text, ok := extractRedditError(post)
			if !ok {
				continue
			}
			candidates = append(candidates, model.RawCandidate{
				Text:     text,
				Provider: model.ProviderReddit,
				Metrics: map[string]float64{
					model.MetricUpvotes:  float64(post.Ups),
					model.MetricComments: float64(post.NumComments),
				},
				SourceURL:    "https://reddit.com" + post.Permalink,
				Title:        post.Title,
				Tags:         []string{subreddit},
				DiscoveredAt: a.now().UTC(),
			})
		}
	}

	a.deps.logf("reddit yielded %d candidates", len(candidates))
	return candidates, nil
}

// authenticate runs the client-credentials OAuth flow
func (a *RedditAdapter) authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.reddit.com/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.deps.Cfg.HTTP.UserAgent)

	resp, err := a.deps.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request status %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return parsed.AccessToken, nil
}

func (a *RedditAdapter) fetchListing(ctx context.Context, listingURL, token string) ([]redditPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", a.deps.Cfg.HTTP.UserAgent)

	resp, err := a.deps.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.deps.Cfg.HTTP.MaxBodyBytes))
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// searchFeeds is the credential-free fallback over public subreddit RSS.
// Feeds carry no vote data, so engagement is estimated from hot-list
// position: earlier items are assumed hotter.
func (a *RedditAdapter) searchFeeds(ctx context.Context, subreddits []string) ([]model.RawCandidate, error) {
	if len(subreddits) > 3 {
		subreddits = subreddits[:3]
	}

	var candidates []model.RawCandidate
	for _, subreddit := range subreddits {
		feedURL := fmt.Sprintf("https://www.reddit.com/r/%s/hot/.rss", subreddit)

		if err := a.deps.Limiter.Wait(ctx, feedURL); err != nil {
			return candidates, err
		}

		feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			a.deps.logf("reddit feed r/%s failed: %v", subreddit, err)
			continue
		}

		for i, item := range feed.Items {
			if i >= 10 {
				break
			}
			post := redditPost{Title: item.Title}
			if !isErrorRelatedPost(post) {
				continue
			}
			text, ok := extractRedditError(post)
			if !ok {
				continue
			}
			candidates = append(candidates, model.RawCandidate{
				Text:     text,
				Provider: model.ProviderRedditFeed,
				Metrics: map[string]float64{
					model.MetricUpvotes:  estimateEngagement(i, 60, 10),
					model.MetricComments: estimateEngagement(i, 25, 4),
				},
				SourceURL:    item.Link,
				Title:        item.Title,
				Tags:         []string{subreddit},
				DiscoveredAt: a.now().UTC(),
			})
		}
	}

	a.deps.logf("reddit feeds yielded %d candidates", len(candidates))
	return candidates, nil
}

// estimateEngagement maps a hot-list position to a synthetic metric value,
// decaying with rank and floored at zero.
func estimateEngagement(position, top, decay int) float64 {
	v := top - position*decay
	if v < 0 {
		v = 0
	}
	return float64(v)
}

// isErrorRelatedPost checks the title and flair for error markers
func isErrorRelatedPost(post redditPost) bool {
	title := strings.ToLower(post.Title)
	flair := strings.ToLower(post.LinkFlairText)
	for _, indicator := range errorIndicators {
		if strings.Contains(title, indicator) || strings.Contains(flair, indicator) {
			return true
		}
	}
	return false
}

// extractRedditError derives the candidate text from a post title
func extractRedditError(post redditPost) (string, bool) {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		return "", false
	}
	runes := []rune(title)
	if len(runes) < 100 {
		return title, true
	}
	return string(runes[:100]) + "...", true
}
