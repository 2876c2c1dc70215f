package discover

import (
	"math/rand"
	"sort"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// MetricTier awards a fixed bonus when a metric strictly exceeds a threshold.
// Only the highest crossed tier per metric contributes, so confidence stays
// monotonic in every metric and never rewards the same signal twice.
type MetricTier struct {
	Metric    string
	Threshold float64
	Bonus     float64
}

// ScoreProfile is the declarative scoring table for one provider family
type ScoreProfile struct {
	Provider model.Provider
	Tiers    []MetricTier
}

// Bucketed thresholds per provider. Tuned to each provider's native scale
// (votes vs. upvotes vs. views) instead of normalizing across providers,
// which keeps scores stable for small samples.
var defaultProfiles = []ScoreProfile{
	{
		Provider: model.ProviderStackOverflow,
		Tiers: []MetricTier{
			{model.MetricScore, 10, 0.3},
			{model.MetricScore, 5, 0.2},
			{model.MetricScore, 0, 0.1},
			{model.MetricViewCount, 1000, 0.2},
			{model.MetricViewCount, 500, 0.1},
			{model.MetricAnswerCount, 2, 0.3},
			{model.MetricAnswerCount, 0, 0.2},
		},
	},
	{
		Provider: model.ProviderReddit,
		Tiers: []MetricTier{
			{model.MetricUpvotes, 50, 0.4},
			{model.MetricUpvotes, 20, 0.3},
			{model.MetricUpvotes, 5, 0.2},
			{model.MetricComments, 20, 0.3},
			{model.MetricComments, 10, 0.2},
			{model.MetricComments, 5, 0.1},
		},
	},
}

// Trend candidates carry no measured engagement, so their confidence is a
// per-run draw from this range. They are inherently speculative and the
// pseudo-random confidence is documented as such.
const (
	trendConfidenceMin = 0.4
	trendConfidenceMax = 0.8
)

// Scorer converts raw candidates into scored candidates using per-provider
// bucketed threshold tables. Pure over the candidate's metrics; missing
// metrics contribute nothing.
type Scorer struct {
	profiles map[model.Provider]*ScoreProfile
	rng      *rand.Rand
}

// NewScorer creates a scorer with the built-in provider profiles. The rand
// source is only consulted for synthetic trend candidates; tests inject a
// seeded source for reproducibility.
func NewScorer(rng *rand.Rand) *Scorer {
	profiles := make(map[model.Provider]*ScoreProfile, len(defaultProfiles))
	for i := range defaultProfiles {
		p := defaultProfiles[i]
		profiles[p.Provider] = &p
	}
	return &Scorer{profiles: profiles, rng: rng}
}

// RegisterProfile adds or replaces the scoring table for a provider
func (s *Scorer) RegisterProfile(profile ScoreProfile) {
	s.profiles[profile.Provider] = &profile
}

// Score converts a raw candidate into a scored candidate. It never fails:
// unknown providers and missing metrics yield a zero contribution, and the
// result is clamped to [0,1].
func (s *Scorer) Score(raw model.RawCandidate) model.ScoredCandidate {
	scored := model.ScoredCandidate{RawCandidate: raw}

	switch raw.Provider {
	case model.ProviderTrends:
		scored.Confidence = s.trendConfidence()
	case model.ProviderManual:
		// Operator-supplied candidates skip discovery scoring entirely.
		scored.Confidence = 1.0
	default:
		profile, ok := s.profiles[raw.Provider]
		if !ok && raw.Provider == model.ProviderRedditFeed {
			profile, ok = s.profiles[model.ProviderReddit]
		}
		if ok {
			scored.Confidence = applyProfile(profile, raw.Metrics)
		}
	}

	return scored
}

// ScorePool scores every raw candidate, preserving discovery order
func (s *Scorer) ScorePool(raws []model.RawCandidate) []model.ScoredCandidate {
	pool := make([]model.ScoredCandidate, 0, len(raws))
	for _, raw := range raws {
		pool = append(pool, s.Score(raw))
	}
	return pool
}

// applyProfile sums the best crossed tier per metric and clamps to [0,1]
func applyProfile(profile *ScoreProfile, metrics map[string]float64) float64 {
	best := make(map[string]float64)
	for _, tier := range profile.Tiers {
		value := metrics[tier.Metric] // missing metrics read as 0
		if value > tier.Threshold && tier.Bonus > best[tier.Metric] {
			best[tier.Metric] = tier.Bonus
		}
	}

	// Deterministic accumulation order keeps float results bit-stable.
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	confidence := 0.0
	for _, k := range keys {
		confidence += best[k]
	}
	return clamp01(confidence)
}

// trendConfidence draws uniformly from [trendConfidenceMin,
// trendConfidenceMax]. Adapter metrics stay descriptive; using them as
// confidence would let synthetic candidates outrank measured providers.
func (s *Scorer) trendConfidence() float64 {
	if s.rng == nil {
		return trendConfidenceMin
	}
	return trendConfidenceMin + s.rng.Float64()*(trendConfidenceMax-trendConfidenceMin)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
