package sources

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

func trendsAdapter(seed int64, maxCandidates int) *TrendsAdapter {
	cfg := model.DefaultConfig()
	cfg.Discovery.Sources.Trends.MaxCandidates = maxCandidates
	deps := &Deps{Cfg: cfg, Rng: rand.New(rand.NewSource(seed))}
	a := NewTrendsAdapter(deps)
	a.now = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestTrendsAdapter_Search(t *testing.T) {
	a := trendsAdapter(7, 20)

	candidates, err := a.Search(context.Background())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected candidates from the catalog")
	}
	if len(candidates) > 20 {
		t.Errorf("expected at most 20 candidates, got %d", len(candidates))
	}

	catalog := make(map[string]string)
	for family, errors := range errorCatalog {
		for _, e := range errors {
			catalog[e] = family
		}
	}

	for _, c := range candidates {
		if c.Provider != model.ProviderTrends {
			t.Errorf("wrong provider %s", c.Provider)
		}
		family, known := catalog[c.Text]
		if !known {
			t.Errorf("candidate %q not from the catalog", c.Text)
			continue
		}
		if len(c.Tags) != 1 || c.Tags[0] != family {
			t.Errorf("candidate %q tagged %v, want [%s]", c.Text, c.Tags, family)
		}

		volume := c.Metrics[model.MetricSearchVolume]
		if volume < 400 || volume > 2700 {
			t.Errorf("search volume %v outside plausible band", volume)
		}
		trend := c.Metrics[model.MetricTrendScore]
		if trend < 0.6 || trend > 0.9 {
			t.Errorf("trend score %v outside [0.6,0.9]", trend)
		}
	}
}

func TestTrendsAdapter_RespectsCandidateCap(t *testing.T) {
	a := trendsAdapter(3, 5)

	candidates, err := a.Search(context.Background())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) > 5 {
		t.Errorf("expected at most 5 candidates, got %d", len(candidates))
	}
}

func TestTrendsAdapter_SeededReproducibility(t *testing.T) {
	first, err := trendsAdapter(99, 20).Search(context.Background())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	second, err := trendsAdapter(99, 20).Search(context.Background())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("seeded runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("seeded runs diverge at %d: %q vs %q", i, first[i].Text, second[i].Text)
		}
	}
}

func TestSeasonalWeight(t *testing.T) {
	cases := []struct {
		family string
		month  time.Month
		want   float64
	}{
		{"windows_errors", time.December, 1.2},
		{"windows_errors", time.June, 1.0},
		{"web_server_errors", time.November, 1.3},
		{"web_server_errors", time.March, 1.0},
		{"programming_errors", time.April, 1.1},
		{"macos_errors", time.September, 1.1},
		{"macos_errors", time.February, 0.9},
		{"linux_errors", time.July, 1.0},
		{"database_errors", time.July, 1.0},
	}

	for _, tc := range cases {
		if got := seasonalWeight(tc.family, tc.month); got != tc.want {
			t.Errorf("seasonalWeight(%s, %s): want %v, got %v", tc.family, tc.month, tc.want, got)
		}
	}
}
