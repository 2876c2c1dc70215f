package model

import "time"

// Provider identifies the discovery source a candidate came from
type Provider string

const (
	ProviderStackOverflow Provider = "stackoverflow"
	ProviderReddit        Provider = "reddit"
	ProviderRedditFeed    Provider = "reddit_feed" // unauthenticated RSS fallback
	ProviderTrends        Provider = "google_trends"
	ProviderManual        Provider = "manual"
)

// Common metric keys reported by the source adapters. A provider only fills
// the metrics it actually measures; missing keys are treated as zero.
const (
	MetricScore        = "score"
	MetricViewCount    = "view_count"
	MetricAnswerCount  = "answer_count"
	MetricUpvotes      = "upvotes"
	MetricComments     = "comments"
	MetricSearchVolume = "search_volume"
	MetricTrendScore   = "trend_score"
)

// RawCandidate is an error-message string proposed by a source adapter,
// together with the provider-native engagement metrics. Immutable once
// produced; the scorer is its only consumer.
type RawCandidate struct {
	Text         string             `json:"error_message"`
	Provider     Provider           `json:"source"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	SourceURL    string             `json:"source_url,omitempty"`
	Title        string             `json:"title,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	DiscoveredAt time.Time          `json:"discovered_at"`
}

// ScoredCandidate is a RawCandidate with a normalized confidence estimate.
// Confidence is always in [0,1] and monotonic non-decreasing in each metric.
type ScoredCandidate struct {
	RawCandidate
	Confidence float64 `json:"confidence_score"`
}

// SelectionResult is the single candidate chosen from a discovery run,
// with provenance about where it sat in the pool.
type SelectionResult struct {
	Candidate  ScoredCandidate `json:"candidate"`
	Rank       int             `json:"rank"`        // 0-based rank in the confidence-sorted pool
	PoolSize   int             `json:"pool_size"`   // filtered pool size
	WindowSize int             `json:"window_size"` // top-K window the draw was made from
}
