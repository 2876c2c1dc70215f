// Package generate synthesizes SEO-optimized error-solution articles from
// an aggregated bundle via the OpenAI chat completion API.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	openai "github.com/sashabaranov/go-openai"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Generator turns an aggregated bundle into a publishable article
type Generator struct {
	client   *openai.Client
	cfg      model.GenerationConfig
	markdown goldmark.Markdown
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	verbose  bool
}

// NewGenerator builds a generator. The API key is required.
func NewGenerator(cfg model.GenerationConfig, verbose bool) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &Generator{
		client:   openai.NewClient(cfg.APIKey),
		cfg:      cfg,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now:      time.Now,
		sleep:    sleepContext,
		verbose:  verbose,
	}, nil
}

// Generate synthesizes one article for the bundle's candidate. The raw model
// output is parsed as JSON when possible and degraded to a fallback article
// otherwise; post-processing then enforces the SEO invariants.
func (g *Generator) Generate(ctx context.Context, bundle model.AggregatedBundle) (*model.Article, error) {
	system := buildSystemPrompt(errorFamily(bundle.Candidate.Text))
	user := buildUserPrompt(bundle)

	content, err := g.chatWithRetry(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("article generation: %w", err)
	}

	article := g.extractArticle(content, bundle.Candidate.Text)
	g.optimize(article, bundle)

	htmlContent, err := g.renderHTML(article.Content)
	if err != nil {
		return nil, fmt.Errorf("render article: %w", err)
	}
	article.HTMLContent = htmlContent

	return article, nil
}

// chatWithRetry calls the chat completion API with exponential backoff.
// Retry belongs here, at the network boundary, not in the downstream
// scoring components.
func (g *Generator) chatWithRetry(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	delay := time.Duration(g.cfg.RetryDelay) * time.Second
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logf("retrying generation in %s (%d/%d)", delay, attempt, g.cfg.MaxRetries)
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
			delay *= time.Duration(g.cfg.BackoffFactor)
		}

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("exhausted %d retries: %w", g.cfg.MaxRetries, lastErr)
}

// articlePayload is the JSON shape the model is asked to produce
type articlePayload struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	MetaDescription string   `json:"meta_description"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	WordCount       int      `json:"word_count"`
}

// extractArticle parses the model output. A malformed payload never fails
// generation: the raw text becomes the article body with derived metadata.
func (g *Generator) extractArticle(content, errorMessage string) *model.Article {
	payload, ok := extractJSON(content)
	if !ok {
		g.logf("model did not return parseable JSON, using fallback article")
		return g.fallbackArticle(content, errorMessage)
	}

	article := &model.Article{
		Title:     payload.Title,
		Slug:      payload.Slug,
		Content:   payload.Content,
		Excerpt:   payload.Excerpt,
		Category:  payload.Category,
		Tags:      payload.Tags,
		WordCount: payload.WordCount,
		Keyword:   errorMessage,
	}

	if article.Title == "" {
		article.Title = errorMessage + "の解決方法"
	}
	if article.Content == "" {
		article.Content = content
	}
	if article.Excerpt == "" {
		article.Excerpt = payload.MetaDescription
	}
	if article.Category == "" {
		article.Category = "エラー解決"
	}
	if article.WordCount == 0 {
		article.WordCount = len([]rune(article.Content))
	}
	if article.Slug == "" {
		article.Slug = sanitizeSlug(article.Title, g.now)
	}

	return article
}

// fallbackArticle wraps unparseable model output into a usable article
func (g *Generator) fallbackArticle(content, errorMessage string) *model.Article {
	return &model.Article{
		Title:     fmt.Sprintf("%sの解決方法【%d年最新版】", errorMessage, g.now().Year()),
		Slug:      sanitizeSlug(errorMessage, g.now),
		Content:   content,
		Excerpt:   fmt.Sprintf("%sのエラーが発生した場合の解決方法を詳しく解説します。", errorMessage),
		Category:  "エラー解決",
		Tags:      []string{errorMessage, "エラー解決", "トラブルシューティング"},
		WordCount: len([]rune(content)),
		Keyword:   errorMessage,
	}
}

func (g *Generator) renderHTML(markdownText string) (string, error) {
	var buf bytes.Buffer
	if err := g.markdown.Convert([]byte(markdownText), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) logf(format string, args ...interface{}) {
	if g.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// extractJSON pulls the outermost JSON object out of the model output,
// tolerating prose around it.
func extractJSON(text string) (*articlePayload, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var payload articlePayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
