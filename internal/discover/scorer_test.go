package discover

import (
	"math"
	"math/rand"
	"testing"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(rand.New(rand.NewSource(42)))
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func soCandidate(score, views, answers float64) model.RawCandidate {
	return model.RawCandidate{
		Text:     "ERROR_ACCESS_DENIED 0x80070005",
		Provider: model.ProviderStackOverflow,
		Metrics: map[string]float64{
			model.MetricScore:       score,
			model.MetricViewCount:   views,
			model.MetricAnswerCount: answers,
		},
	}
}

func TestScorer_StackOverflowBuckets(t *testing.T) {
	scorer := newTestScorer()

	cases := []struct {
		name                  string
		score, views, answers float64
		want                  float64
	}{
		{"all zero", 0, 0, 0, 0},
		{"minimal engagement", 1, 0, 1, 0.3},     // 0.1 + 0.2
		{"mid engagement", 6, 600, 1, 0.5},       // 0.2 + 0.1 + 0.2
		{"high engagement", 11, 1500, 3, 0.8},    // 0.3 + 0.2 + 0.3
		{"very large values", 1e9, 1e9, 1e9, 0.8}, // same buckets as high
	}

	for _, tc := range cases {
		got := scorer.Score(soCandidate(tc.score, tc.views, tc.answers)).Confidence
		if !approx(got, tc.want) {
			t.Errorf("%s: expected confidence %.2f, got %.2f", tc.name, tc.want, got)
		}
	}
}

func TestScorer_RedditBuckets(t *testing.T) {
	scorer := newTestScorer()

	raw := model.RawCandidate{
		Text:     "DISK_FULL error after update",
		Provider: model.ProviderReddit,
		Metrics: map[string]float64{
			model.MetricUpvotes:  51,
			model.MetricComments: 21,
		},
	}

	got := scorer.Score(raw).Confidence
	if !approx(got, 0.7) {
		t.Errorf("expected confidence 0.7, got %.2f", got)
	}

	// The RSS fallback provider shares the Reddit profile.
	raw.Provider = model.ProviderRedditFeed
	if got := scorer.Score(raw).Confidence; !approx(got, 0.7) {
		t.Errorf("expected reddit_feed confidence 0.7, got %.2f", got)
	}
}

func TestScorer_Monotonicity(t *testing.T) {
	scorer := newTestScorer()

	// For each metric, raising it while holding the others fixed must never
	// lower confidence.
	values := []float64{0, 1, 3, 5, 6, 10, 11, 100, 500, 501, 1000, 1001, 100000}

	for _, metric := range []string{model.MetricScore, model.MetricViewCount, model.MetricAnswerCount} {
		prev := -1.0
		for _, v := range values {
			raw := soCandidate(5, 500, 1)
			raw.Metrics[metric] = v
			conf := scorer.Score(raw).Confidence
			if conf < prev {
				t.Errorf("metric %s: confidence decreased from %.2f to %.2f at value %v", metric, prev, conf, v)
			}
			prev = conf
		}
	}
}

func TestScorer_ClampAndBounds(t *testing.T) {
	scorer := newTestScorer()

	// A custom profile whose raw sum exceeds 1 must be clamped.
	scorer.RegisterProfile(ScoreProfile{
		Provider: "hotlist",
		Tiers: []MetricTier{
			{"hits", 0, 0.7},
			{"stars", 0, 0.7},
		},
	})

	raw := model.RawCandidate{
		Text:     "segmentation fault core dumped",
		Provider: "hotlist",
		Metrics:  map[string]float64{"hits": 5, "stars": 5},
	}
	if got := scorer.Score(raw).Confidence; got != 1.0 {
		t.Errorf("expected clamped confidence 1.0, got %.2f", got)
	}

	// Arbitrary non-negative inputs always land in [0,1].
	for _, m := range []map[string]float64{
		nil,
		{},
		{model.MetricScore: 0},
		{model.MetricScore: 1e12, model.MetricViewCount: 1e12, model.MetricAnswerCount: 1e12},
	} {
		raw := model.RawCandidate{Text: "x", Provider: model.ProviderStackOverflow, Metrics: m}
		conf := scorer.Score(raw).Confidence
		if conf < 0 || conf > 1 {
			t.Errorf("confidence out of range for metrics %v: %v", m, conf)
		}
	}
}

func TestScorer_MissingMetricsDefaultToZero(t *testing.T) {
	scorer := newTestScorer()

	raw := model.RawCandidate{
		Text:     "Unable to mount volume",
		Provider: model.ProviderStackOverflow,
		// Metrics intentionally nil
	}

	if got := scorer.Score(raw).Confidence; got != 0 {
		t.Errorf("expected 0 confidence for missing metrics, got %.2f", got)
	}
}

func TestScorer_TrendConfidenceRange(t *testing.T) {
	scorer := newTestScorer()

	for i := 0; i < 100; i++ {
		raw := model.RawCandidate{
			Text:     "502 Bad Gateway nginx",
			Provider: model.ProviderTrends,
		}
		conf := scorer.Score(raw).Confidence
		if conf < trendConfidenceMin || conf > trendConfidenceMax {
			t.Fatalf("trend confidence %v outside [%v,%v]", conf, trendConfidenceMin, trendConfidenceMax)
		}
	}

	// Adapter metrics never leak into the confidence; a high trend_score
	// must not push the draw past the window.
	for i := 0; i < 100; i++ {
		raw := model.RawCandidate{
			Text:     "504 Gateway Timeout error",
			Provider: model.ProviderTrends,
			Metrics:  map[string]float64{model.MetricTrendScore: 0.9},
		}
		conf := scorer.Score(raw).Confidence
		if conf < trendConfidenceMin || conf > trendConfidenceMax {
			t.Fatalf("trend confidence %v outside [%v,%v] with trend_score metric", conf, trendConfidenceMin, trendConfidenceMax)
		}
	}
}

func TestScorer_ManualCandidate(t *testing.T) {
	scorer := newTestScorer()

	raw := model.RawCandidate{Text: "FILE_NOT_FOUND 0x80070002", Provider: model.ProviderManual}
	if got := scorer.Score(raw).Confidence; got != 1.0 {
		t.Errorf("expected manual candidate confidence 1.0, got %.2f", got)
	}
}

func TestScorer_ScorePoolPreservesOrder(t *testing.T) {
	scorer := newTestScorer()

	raws := []model.RawCandidate{
		soCandidate(11, 0, 0),
		soCandidate(0, 0, 0),
		soCandidate(6, 600, 3),
	}
	pool := scorer.ScorePool(raws)

	if len(pool) != 3 {
		t.Fatalf("expected 3 scored candidates, got %d", len(pool))
	}
	for i := range raws {
		if pool[i].Text != raws[i].Text || pool[i].Provider != raws[i].Provider {
			t.Errorf("candidate %d not preserved in order", i)
		}
	}
}
