// Package sources implements the discovery providers that propose trending
// error messages: the Stack Exchange API, Reddit (OAuth or public feeds),
// and a synthetic trends catalog.
package sources

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/daishir0/AutoErrorArticleGen/internal/util"
	"github.com/daishir0/AutoErrorArticleGen/internal/worker"
)

// Adapter is one discovery provider. Search returns raw candidates; an empty
// slice means no signal, which is a valid outcome and not an error.
type Adapter interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context) ([]model.RawCandidate, error)
}

// Deps carries the shared plumbing handed to every adapter
type Deps struct {
	Client  *http.Client
	Limiter *worker.Limiter
	Cfg     *model.Config
	Rng     *rand.Rand
	Verbose bool
}

// NewDeps builds adapter dependencies from configuration
func NewDeps(cfg *model.Config, rng *rand.Rand) *Deps {
	return &Deps{
		Client: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
			},
		},
		Limiter: worker.NewLimiter(cfg.Collection.RequestsPerSecond, cfg.Collection.Burst),
		Cfg:     cfg,
		Rng:     rng,
		Verbose: cfg.Output.Verbose,
	}
}

func (d *Deps) logf(format string, args ...interface{}) {
	if d.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Registry queries its adapters one after another with a fixed inter-call
// delay. Provider failures are tolerated: a broken adapter contributes zero
// candidates and the run continues.
type Registry struct {
	adapters       []Adapter
	interCallDelay time.Duration
	verbose        bool
}

// NewRegistry builds a registry over the given adapters
func NewRegistry(cfg *model.Config, adapters ...Adapter) *Registry {
	return &Registry{
		adapters:       adapters,
		interCallDelay: cfg.Discovery.InterCallDelay,
		verbose:        cfg.Output.Verbose,
	}
}

// DefaultRegistry wires the standard three providers
func DefaultRegistry(cfg *model.Config, rng *rand.Rand) *Registry {
	deps := NewDeps(cfg, rng)
	return NewRegistry(cfg,
		NewStackOverflowAdapter(deps),
		NewRedditAdapter(deps),
		NewTrendsAdapter(deps),
	)
}

// DiscoverAll runs every enabled adapter sequentially and pools the raw
// candidates. Returns all candidates gathered before a context cancellation.
func (r *Registry) DiscoverAll(ctx context.Context) ([]model.RawCandidate, error) {
	var pool []model.RawCandidate

	for i, adapter := range r.adapters {
		if !adapter.Enabled() {
			continue
		}
		if i > 0 && r.interCallDelay > 0 {
			select {
			case <-ctx.Done():
				return pool, ctx.Err()
			case <-time.After(r.interCallDelay):
			}
		}

		candidates, err := adapter.Search(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return pool, ctx.Err()
			}
			if r.verbose {
				fmt.Fprintf(os.Stderr, "%s search failed: %v\n", adapter.Name(), err)
			}
			continue
		}
		pool = append(pool, candidates...)
	}

	return pool, nil
}
