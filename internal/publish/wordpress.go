// Package publish posts finished articles to WordPress over the REST v2 API
// using application-password basic auth. Categories and tags are resolved by
// name and created on first use.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Client talks to one WordPress site
type Client struct {
	baseURL         string
	username        string
	appPassword     string
	autoPublish     bool
	status          string
	defaultCategory string
	httpClient      *http.Client
	termDelay       time.Duration
	verbose         bool
}

func NewClient(cfg model.WordPressConfig, verbose bool) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wordpress base URL is required")
	}
	if cfg.Username == "" || cfg.AppPassword == "" {
		return nil, fmt.Errorf("wordpress credentials are required")
	}

	status := cfg.Status
	if status == "" {
		status = "publish"
	}
	category := cfg.DefaultCategory
	if category == "" {
		category = "エラー解決"
	}

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		username:        cfg.Username,
		appPassword:     cfg.AppPassword,
		autoPublish:     cfg.AutoPublish,
		status:          status,
		defaultCategory: category,
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		termDelay:       100 * time.Millisecond,
		verbose:         verbose,
	}, nil
}

func (c *Client) apiURL(path string) string {
	return c.baseURL + "/wp-json/wp/v2" + path
}

// TestConnection verifies the API root answers with our credentials
func (c *Client) TestConnection(ctx context.Context) error {
	var probe json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL(""), nil, &probe, http.StatusOK); err != nil {
		return fmt.Errorf("wordpress connection test: %w", err)
	}
	return nil
}

// postPayload is the REST v2 post creation body
type postPayload struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Excerpt       string         `json:"excerpt"`
	Status        string         `json:"status"`
	Slug          string         `json:"slug"`
	Categories    []int          `json:"categories"`
	Tags          []int          `json:"tags"`
	CommentStatus string         `json:"comment_status"`
	PingStatus    string         `json:"ping_status"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type postResponse struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
	Slug   string `json:"slug"`
	Date   string `json:"date"`
}

// Publish creates the post. The HTML body is preferred; term resolution
// failures degrade to an untagged post instead of failing the publication.
func (c *Client) Publish(ctx context.Context, article *model.Article, report *model.QualityReport) (*model.PublishResult, error) {
	if err := c.TestConnection(ctx); err != nil {
		return nil, err
	}

	category := article.Category
	if category == "" {
		category = c.defaultCategory
	}
	categoryID, err := c.ensureTerm(ctx, "/categories", category)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", category, err)
	}

	var tagIDs []int
	for _, tag := range article.Tags {
		id, err := c.ensureTerm(ctx, "/tags", tag)
		if err != nil {
			c.logf("skipping tag %q: %v", tag, err)
			continue
		}
		tagIDs = append(tagIDs, id)
		if err := sleepContext(ctx, c.termDelay); err != nil {
			return nil, err
		}
	}

	status := "draft"
	if c.autoPublish {
		status = c.status
	}

	content := article.HTMLContent
	if content == "" {
		content = article.Content
	}

	payload := postPayload{
		Title:         article.Title,
		Content:       content,
		Excerpt:       article.Excerpt,
		Status:        status,
		Slug:          article.Slug,
		Categories:    []int{categoryID},
		Tags:          tagIDs,
		CommentStatus: "open",
		PingStatus:    "open",
		Meta: map[string]any{
			"error_message": article.Keyword,
			"word_count":    article.WordCount,
			"generated_by":  "auto_error_article_generator",
		},
	}
	if report != nil {
		payload.Meta["seo_score"] = report.SEOScore
		payload.Meta["quality_score"] = report.OverallScore
	}

	var created postResponse
	if err := c.doJSON(ctx, http.MethodPost, c.apiURL("/posts"), payload, &created, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	c.logf("published post %d: %s", created.ID, created.Link)

	return &model.PublishResult{
		PostID:      created.ID,
		URL:         created.Link,
		Status:      created.Status,
		Slug:        created.Slug,
		PublishedAt: created.Date,
	}, nil
}

type term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ensureTerm finds a category or tag by exact name, creating it on miss
func (c *Client) ensureTerm(ctx context.Context, path, name string) (int, error) {
	searchURL := c.apiURL(path) + "?search=" + url.QueryEscape(name)

	var existing []term
	if err := c.doJSON(ctx, http.MethodGet, searchURL, nil, &existing, http.StatusOK); err != nil {
		return 0, err
	}
	for _, t := range existing {
		if t.Name == name {
			return t.ID, nil
		}
	}

	create := map[string]string{"name": name, "slug": termSlug(name)}
	var created term
	if err := c.doJSON(ctx, http.MethodPost, c.apiURL(path), create, &created, http.StatusCreated); err != nil {
		return 0, err
	}
	c.logf("created term %q (id %d)", name, created.ID)
	return created.ID, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

var (
	nonTermChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	termSeparator = regexp.MustCompile(`[-\s]+`)
)

// termSlug builds an ASCII slug for a term name. Names that sanitize to
// nothing (pure Japanese) are left to WordPress's own slug generation.
func termSlug(name string) string {
	s := strings.ToLower(name)
	s = nonTermChars.ReplaceAllString(s, "")
	s = termSeparator.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
