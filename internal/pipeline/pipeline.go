// Package pipeline orchestrates the full article cycle: discover a trending
// error, collect solution material, generate the article, gate its quality,
// store it, and publish to WordPress.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/daishir0/AutoErrorArticleGen/internal/cache"
	"github.com/daishir0/AutoErrorArticleGen/internal/collect"
	"github.com/daishir0/AutoErrorArticleGen/internal/discover"
	"github.com/daishir0/AutoErrorArticleGen/internal/discover/sources"
	"github.com/daishir0/AutoErrorArticleGen/internal/generate"
	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/daishir0/AutoErrorArticleGen/internal/publish"
	"github.com/daishir0/AutoErrorArticleGen/internal/quality"
	"github.com/daishir0/AutoErrorArticleGen/internal/store"
	"github.com/daishir0/AutoErrorArticleGen/internal/validate"
)

// Status is the terminal state of one pipeline run
type Status string

const (
	StatusSuccess          Status = "success"
	StatusNoErrorFound     Status = "no_error_found"
	StatusCollectionFailed Status = "info_collection_failed"
	StatusQualityFailed    Status = "quality_check_failed"
	StatusPublishFailed    Status = "wordpress_publish_failed"
)

// RunResult is the run summary handed back to the CLI
type RunResult struct {
	Status     Status                 `json:"status"`
	Selection  *model.SelectionResult `json:"selection,omitempty"`
	Article    *model.Article         `json:"article,omitempty"`
	Quality    *model.QualityReport   `json:"quality,omitempty"`
	Publish    *model.PublishResult   `json:"wordpress,omitempty"`
	ArticleDir string                 `json:"article_directory,omitempty"`
}

// Pipeline wires the phases together. Construction fails fast on missing
// credentials; a nil publisher means publishing is skipped, not an error.
type Pipeline struct {
	registry    *sources.Registry
	scorer      *discover.Scorer
	filter      *discover.Filter
	collector   *collect.Collector
	aggregator  *collect.Aggregator
	linkChecker *validate.LinkChecker
	generator   *generate.Generator
	gate        *quality.Gate
	articles    *store.Manager
	publisher   *publish.Client
	cfg         *model.Config
	rng         *rand.Rand
}

// NewPipeline builds a pipeline from configuration. The rand source drives
// adapter sampling and weighted candidate selection; tests seed it.
func NewPipeline(cfg *model.Config, rng *rand.Rand) (*Pipeline, error) {
	articles, err := store.NewManager(cfg.Storage.ArticlesDir)
	if err != nil {
		return nil, err
	}

	generator, err := generate.NewGenerator(cfg.Generation, cfg.Output.Verbose)
	if err != nil {
		return nil, err
	}

	var publisher *publish.Client
	if cfg.WordPress.BaseURL != "" {
		publisher, err = publish.NewClient(cfg.WordPress, cfg.Output.Verbose)
		if err != nil {
			return nil, err
		}
	}

	history := func(text string) bool {
		processed, err := articles.AlreadyProcessed(text)
		if err != nil {
			return false
		}
		return processed
	}

	responseCache := cache.FromConfig(cfg.Cache, cfg.Storage.ArticlesDir)

	return &Pipeline{
		registry:    sources.DefaultRegistry(cfg, rng),
		scorer:      discover.NewScorer(rng),
		filter:      discover.NewFilter(cfg.Discovery.Selection, history),
		collector:   collect.NewCollector(cfg, responseCache),
		aggregator:  collect.NewAggregator(cfg.Collection),
		linkChecker: validate.NewLinkChecker(cfg.HTTP.Timeout, 10, cfg.HTTP.UserAgent, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
		generator:   generator,
		gate:        quality.NewGate(cfg.Quality),
		articles:    articles,
		publisher:   publisher,
		cfg:         cfg,
		rng:         rng,
	}, nil
}

// Articles exposes the store for listing commands
func (p *Pipeline) Articles() *store.Manager {
	return p.articles
}

// Run executes the full cycle. A discovery that yields no viable candidate
// is a normal outcome, reported through Status, not an error.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	selection, found, err := p.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return &RunResult{Status: StatusNoErrorFound}, nil
	}

	p.logf("discovered error: %s (confidence %.2f)", selection.Candidate.Text, selection.Candidate.Confidence)

	result, err := p.process(ctx, selection.Candidate, true)
	if result != nil {
		result.Selection = selection
	}
	return result, err
}

// Discover runs discovery, scoring, filtering, and weighted selection.
// The boolean is false when no candidate survives.
func (p *Pipeline) Discover(ctx context.Context) (*model.SelectionResult, bool, error) {
	raws, err := p.registry.DiscoverAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("discovery: %w", err)
	}

	scored := p.scorer.ScorePool(raws)
	pool := p.filter.Apply(scored)
	p.logf("discovery pool: %d raw, %d after filtering", len(raws), len(pool))

	selection, ok := discover.Select(pool, p.rng)
	if !ok {
		return nil, false, nil
	}
	return selection, true, nil
}

// GenerateFromError skips discovery and builds an article for the given
// error message. The article is stored but never auto-published.
func (p *Pipeline) GenerateFromError(ctx context.Context, errorMessage string) (*RunResult, error) {
	candidate := model.ScoredCandidate{
		RawCandidate: model.RawCandidate{
			Text:     errorMessage,
			Provider: model.ProviderManual,
		},
		Confidence: 1.0,
	}
	return p.process(ctx, candidate, false)
}

func (p *Pipeline) process(ctx context.Context, candidate model.ScoredCandidate, allowPublish bool) (*RunResult, error) {
	p.logf("collecting solution material for %q", candidate.Text)
	solutions, citations, err := p.collector.Collect(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	if len(solutions) == 0 && len(citations) == 0 {
		return &RunResult{Status: StatusCollectionFailed}, nil
	}

	checks := p.linkChecker.Check(ctx, citations)
	citations = validate.FilterAccessible(citations, checks)
	p.logf("collected %d solutions, %d live citations", len(solutions), len(citations))

	bundle := p.aggregator.Aggregate(candidate, solutions, citations)

	article, err := p.generator.Generate(ctx, bundle)
	if err != nil {
		return nil, err
	}

	report := p.gate.Evaluate(*article)
	p.logf("quality score %.1f (passed=%v)", report.OverallScore, report.Passed)
	if !report.Passed && !p.cfg.Quality.AllowLowQuality {
		return &RunResult{Status: StatusQualityFailed, Article: article, Quality: &report}, nil
	}

	dir, err := p.articles.CreateArticleDir(candidate.Text)
	if err != nil {
		return nil, err
	}
	record := store.ArticleRecord{Article: article, Bundle: bundle, Quality: &report}
	if err := p.articles.SaveArticle(dir, record); err != nil {
		return nil, err
	}

	result := &RunResult{
		Status:     StatusSuccess,
		Article:    article,
		Quality:    &report,
		ArticleDir: dir,
	}

	// the publisher itself downgrades to a draft when auto-publish is off
	if allowPublish && p.publisher != nil {
		published, err := p.publisher.Publish(ctx, article, &report)
		if err != nil {
			result.Status = StatusPublishFailed
			return result, fmt.Errorf("publish: %w", err)
		}
		if err := p.articles.SavePublishResult(dir, *published); err != nil {
			return nil, err
		}
		result.Publish = published
	}

	return result, nil
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
