package pipeline

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// testConfig disables every discovery source so runs stay offline
func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Discovery.Sources.StackOverflow.Enabled = false
	cfg.Discovery.Sources.Reddit.Enabled = false
	cfg.Discovery.Sources.Trends.Enabled = false
	cfg.Generation.APIKey = "sk-test"
	cfg.Cache.Enabled = false
	cfg.Storage.ArticlesDir = filepath.Join(t.TempDir(), "articles")
	return cfg
}

func TestPipeline_RunWithNoCandidates(t *testing.T) {
	p, err := NewPipeline(testConfig(t), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("empty discovery must not be an error, got %v", err)
	}
	if result.Status != StatusNoErrorFound {
		t.Errorf("Status = %q, want %q", result.Status, StatusNoErrorFound)
	}
	if result.Article != nil {
		t.Error("no article expected when nothing was discovered")
	}
}

func TestPipeline_DiscoverEmpty(t *testing.T) {
	p, err := NewPipeline(testConfig(t), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	selection, found, err := p.Discover(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if found || selection != nil {
		t.Errorf("Discover() = %v, %v; want nil, false", selection, found)
	}
}

func TestNewPipeline_RequiresOpenAIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generation.APIKey = ""
	if _, err := NewPipeline(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("missing OpenAI key accepted")
	}
}

func TestNewPipeline_RejectsIncompleteWordPressConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.WordPress.BaseURL = "https://blog.example"
	// no username or app password
	if _, err := NewPipeline(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("wordpress config without credentials accepted")
	}
}

func TestPipeline_ArticlesStore(t *testing.T) {
	p, err := NewPipeline(testConfig(t), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := p.Articles().List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("fresh store has %d entries", len(entries))
	}
}
