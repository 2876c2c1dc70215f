package discover

import (
	"math/rand"
	"sort"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Select draws one candidate from the filtered pool. The pool is sorted by
// confidence descending (stable, preserving discovery order on ties), a
// top-K window of K = max(3, n/3) is taken, and one candidate is drawn with
// position weight max(1, 4-i). The weighted draw keeps runs from always
// republishing the single strongest topic while still favoring confidence.
//
// The rand source is an explicit parameter so tests can seed it. Returns
// (nil, false) when the pool is empty: "no candidate found", not an error.
func Select(pool []model.ScoredCandidate, rng *rand.Rand) (*model.SelectionResult, bool) {
	if len(pool) == 0 {
		return nil, false
	}

	sorted := make([]model.ScoredCandidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	k := len(sorted) / 3
	if k < 3 {
		k = 3
	}
	if k > len(sorted) {
		k = len(sorted)
	}
	window := sorted[:k]

	idx := weightedDraw(len(window), rng)

	return &model.SelectionResult{
		Candidate:  window[idx],
		Rank:       idx,
		PoolSize:   len(sorted),
		WindowSize: len(window),
	}, true
}

// selectionWeight is the literal rank weighting: 4, 3, 2, then 1 for every
// later position.
func selectionWeight(i int) int {
	w := 4 - i
	if w < 1 {
		w = 1
	}
	return w
}

// weightedDraw picks an index in [0,n) proportionally to selectionWeight
func weightedDraw(n int, rng *rand.Rand) int {
	total := 0
	for i := 0; i < n; i++ {
		total += selectionWeight(i)
	}

	r := rng.Intn(total)
	for i := 0; i < n; i++ {
		r -= selectionWeight(i)
		if r < 0 {
			return i
		}
	}
	return n - 1 // unreachable
}
