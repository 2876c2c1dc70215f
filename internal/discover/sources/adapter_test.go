package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

type stubAdapter struct {
	name       string
	enabled    bool
	candidates []model.RawCandidate
	err        error
	calls      int
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Enabled() bool { return s.enabled }
func (s *stubAdapter) Search(ctx context.Context) ([]model.RawCandidate, error) {
	s.calls++
	return s.candidates, s.err
}

func registryConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Discovery.InterCallDelay = 0
	return cfg
}

func TestRegistry_PoolsAllAdapters(t *testing.T) {
	a := &stubAdapter{name: "a", enabled: true, candidates: []model.RawCandidate{
		{Text: "error one", Provider: model.ProviderStackOverflow},
	}}
	b := &stubAdapter{name: "b", enabled: true, candidates: []model.RawCandidate{
		{Text: "error two", Provider: model.ProviderReddit},
		{Text: "error three", Provider: model.ProviderReddit},
	}}

	registry := NewRegistry(registryConfig(), a, b)
	pool, err := registry.DiscoverAll(context.Background())
	if err != nil {
		t.Fatalf("DiscoverAll failed: %v", err)
	}

	if len(pool) != 3 {
		t.Errorf("expected 3 pooled candidates, got %d", len(pool))
	}
}

func TestRegistry_SkipsDisabledAdapters(t *testing.T) {
	disabled := &stubAdapter{name: "off", enabled: false, candidates: []model.RawCandidate{
		{Text: "should not appear"},
	}}
	enabled := &stubAdapter{name: "on", enabled: true}

	registry := NewRegistry(registryConfig(), disabled, enabled)
	pool, err := registry.DiscoverAll(context.Background())
	if err != nil {
		t.Fatalf("DiscoverAll failed: %v", err)
	}

	if disabled.calls != 0 {
		t.Errorf("disabled adapter was queried %d times", disabled.calls)
	}
	if len(pool) != 0 {
		t.Errorf("expected empty pool, got %d", len(pool))
	}
}

func TestRegistry_ToleratesAdapterFailure(t *testing.T) {
	broken := &stubAdapter{name: "broken", enabled: true, err: errors.New("provider down")}
	healthy := &stubAdapter{name: "healthy", enabled: true, candidates: []model.RawCandidate{
		{Text: "surviving candidate"},
	}}

	registry := NewRegistry(registryConfig(), broken, healthy)
	pool, err := registry.DiscoverAll(context.Background())
	if err != nil {
		t.Fatalf("expected adapter failure to be tolerated, got %v", err)
	}

	if len(pool) != 1 {
		t.Errorf("expected 1 candidate from the healthy adapter, got %d", len(pool))
	}
	if healthy.calls != 1 {
		t.Errorf("healthy adapter should still run after a failure")
	}
}

func TestRegistry_EmptyDiscoveryIsNotAnError(t *testing.T) {
	registry := NewRegistry(registryConfig(),
		&stubAdapter{name: "a", enabled: true},
		&stubAdapter{name: "b", enabled: true},
	)

	pool, err := registry.DiscoverAll(context.Background())
	if err != nil {
		t.Fatalf("DiscoverAll failed: %v", err)
	}
	if len(pool) != 0 {
		t.Errorf("expected no candidates, got %d", len(pool))
	}
}

func TestRegistry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := registryConfig()
	cfg.Discovery.InterCallDelay = time.Hour // cancellation must win the delay

	first := &stubAdapter{name: "first", enabled: true}
	second := &stubAdapter{name: "second", enabled: true}

	registry := NewRegistry(cfg, first, second)
	_, err := registry.DiscoverAll(ctx)
	if err == nil {
		t.Error("expected context error")
	}
	if second.calls != 0 {
		t.Error("second adapter should not run after cancellation")
	}
}
