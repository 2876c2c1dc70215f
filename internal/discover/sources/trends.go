package sources

import (
	"context"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// errorCatalog holds realistic error messages per family. The trends
// provider has no stable public API, so this adapter emulates trend
// discovery from a curated catalog with seasonal weighting.
var errorCatalog = map[string][]string{
	"windows_errors": {
		"ERROR_ACCESS_DENIED 0x80070005",
		"ERROR_SHARING_VIOLATION 0x80070020",
		"ERROR_DISK_FULL 0x80070070",
		"ERROR_INVALID_PARAMETER 0x80070057",
		"ERROR_NOT_ENOUGH_MEMORY 0x80070008",
		"CRITICAL_PROCESS_DIED 0x000000EF",
		"IRQL_NOT_LESS_OR_EQUAL 0x0000000A",
		"PAGE_FAULT_IN_NONPAGED_AREA 0x00000050",
		"MEMORY_MANAGEMENT 0x0000001A",
		"SYSTEM_SERVICE_EXCEPTION 0x0000003B",
	},
	"macos_errors": {
		"Kernel Panic com.apple.kext",
		"macOS Monterey Boot Loop",
		"Metal Performance Shaders Error",
		"CoreData Migration Failed",
		"Keychain Access Denied",
		"Disk Utility First Aid Failed",
		"Time Machine Backup Error",
		"macOS Update Installation Failed",
	},
	"linux_errors": {
		"segmentation fault core dumped",
		"Permission denied /dev/null",
		"No space left on device",
		"command not found bash",
		"Failed to start systemd service",
		"Unable to locate package apt",
		"Connection refused ssh",
		"Input/output error mount",
	},
	"programming_errors": {
		"ModuleNotFoundError Python pip",
		"NullPointerException Java Runtime",
		"Cannot read property undefined",
		"CORS policy blocked request",
		"SSL certificate verify failed",
		"Database connection timeout",
		"Memory leak detected heap",
		"Stack overflow recursion limit",
	},
	"web_server_errors": {
		"502 Bad Gateway nginx",
		"504 Gateway Timeout error",
		"413 Request Entity Too Large",
		"500 Internal Server Error",
		"401 Unauthorized JWT token",
		"429 Too Many Requests rate limit",
		"Connection reset by peer",
		"DNS resolution failed",
	},
	"database_errors": {
		"MySQL connection refused 3306",
		"PostgreSQL authentication failed",
		"MongoDB connection timeout",
		"Redis NOAUTH Authentication required",
		"SQLite database locked",
		"Oracle ORA-12541 TNS no listener",
		"Elasticsearch cluster unavailable",
		"Table doesn't exist SQL",
	},
}

// seasonalWeight returns the demand multiplier for a family in a month:
// Windows update waves around year end, traffic spikes in the shopping
// season, macOS releases in autumn.
func seasonalWeight(family string, month time.Month) float64 {
	switch family {
	case "windows_errors":
		if month == time.January || month == time.February || month == time.December {
			return 1.2
		}
		return 1.0
	case "web_server_errors":
		if month == time.November || month == time.December {
			return 1.3
		}
		return 1.0
	case "programming_errors":
		return 1.1
	case "macos_errors":
		if month == time.September || month == time.October {
			return 1.1
		}
		return 0.9
	default:
		return 1.0
	}
}

// TrendsAdapter emits synthetic trend candidates from the catalog. Search
// volumes are randomized within a plausible band and scaled by the seasonal
// weight; the scorer later draws the confidence for these.
type TrendsAdapter struct {
	deps *Deps
	now  func() time.Time
}

func NewTrendsAdapter(deps *Deps) *TrendsAdapter {
	return &TrendsAdapter{deps: deps, now: time.Now}
}

func (a *TrendsAdapter) Name() string { return "google_trends" }

func (a *TrendsAdapter) Enabled() bool {
	return a.deps.Cfg.Discovery.Sources.Trends.Enabled
}

// Search samples 1-3 errors per family, shuffles, and caps the emission
func (a *TrendsAdapter) Search(ctx context.Context) ([]model.RawCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := a.deps.Rng
	month := a.now().Month()
	discoveredAt := a.now().UTC()

	type weightedError struct {
		text   string
		family string
		weight float64
	}

	var drawn []weightedError
	for _, family := range catalogFamilies() {
		errors := errorCatalog[family]
		weight := seasonalWeight(family, month)
		count := 1 + rng.Intn(3)
		if count > len(errors) {
			count = len(errors)
		}
		for _, idx := range rng.Perm(len(errors))[:count] {
			drawn = append(drawn, weightedError{errors[idx], family, weight})
		}
	}

	rng.Shuffle(len(drawn), func(i, j int) { drawn[i], drawn[j] = drawn[j], drawn[i] })

	limit := a.deps.Cfg.Discovery.Sources.Trends.MaxCandidates
	if limit <= 0 {
		limit = 20
	}
	if len(drawn) > limit {
		drawn = drawn[:limit]
	}

	candidates := make([]model.RawCandidate, 0, len(drawn))
	for _, e := range drawn {
		baseVolume := 500 + rng.Intn(1501)
		candidates = append(candidates, model.RawCandidate{
			Text:     e.text,
			Provider: model.ProviderTrends,
			Metrics: map[string]float64{
				model.MetricSearchVolume: float64(int(float64(baseVolume) * e.weight)),
				model.MetricTrendScore:   roundTo2(0.6 + rng.Float64()*0.3),
			},
			Tags:         []string{e.family},
			DiscoveredAt: discoveredAt,
		})
	}

	a.deps.logf("trends yielded %d candidates", len(candidates))
	return candidates, nil
}

// catalogFamilies returns the families in a fixed order so a seeded random
// source draws reproducibly.
func catalogFamilies() []string {
	return []string{
		"windows_errors", "macos_errors", "linux_errors",
		"programming_errors", "web_server_errors", "database_errors",
	}
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
