package collect

import (
	"sort"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Aggregator merges solution fragments and citations gathered from multiple
// providers into one ranked, deduplicated bundle. Pure transform: no network
// or generation activity happens here.
type Aggregator struct {
	maxSolutions int
	maxCitations int
	now          func() time.Time
}

// NewAggregator creates an aggregator with the configured retention limits.
// Non-positive limits fall back to the defaults (10 solutions, 15 citations).
func NewAggregator(cfg model.CollectionConfig) *Aggregator {
	maxSolutions := cfg.MaxSolutions
	if maxSolutions <= 0 {
		maxSolutions = 10
	}
	maxCitations := cfg.MaxCitations
	if maxCitations <= 0 {
		maxCitations = 15
	}
	return &Aggregator{
		maxSolutions: maxSolutions,
		maxCitations: maxCitations,
		now:          time.Now,
	}
}

// Aggregate builds the bundle for one chosen candidate:
//   - solutions sorted by reliability descending (stable on ties, keeping
//     collection order), truncated to the top N
//   - citations deduplicated by exact URL, first occurrence wins, truncated
//     to the top M
//   - summary statistics computed over the untruncated inputs
//
// An empty solutions slice is not an error; the bundle still carries the
// citations and downstream synthesis handles the empty case.
func (a *Aggregator) Aggregate(
	candidate model.ScoredCandidate,
	solutions []model.SolutionFragment,
	citations []model.SourceCitation,
) model.AggregatedBundle {
	ranked := make([]model.SolutionFragment, len(solutions))
	copy(ranked, solutions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Reliability > ranked[j].Reliability
	})

	seen := make(map[string]bool, len(citations))
	unique := make([]model.SourceCitation, 0, len(citations))
	for _, c := range citations {
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		unique = append(unique, c)
	}

	stats := model.CollectionStats{
		TotalSolutions:  len(solutions),
		UniqueCitations: len(unique),
		MeanReliability: meanReliability(solutions),
		CollectedAt:     a.now().UTC(),
	}

	if len(ranked) > a.maxSolutions {
		ranked = ranked[:a.maxSolutions]
	}
	if len(unique) > a.maxCitations {
		unique = unique[:a.maxCitations]
	}

	return model.AggregatedBundle{
		Candidate: candidate,
		Solutions: ranked,
		Citations: unique,
		Stats:     stats,
	}
}

func meanReliability(solutions []model.SolutionFragment) float64 {
	if len(solutions) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range solutions {
		sum += s.Reliability
	}
	return sum / float64(len(solutions))
}
