package model

import "time"

// SourceType classifies where a citation comes from
type SourceType string

const (
	SourceTypeOfficial  SourceType = "official"  // vendor documentation, official support
	SourceTypeCommunity SourceType = "community" // Q&A sites, forums, discussions
)

// SolutionFragment is one candidate fix collected from an external source.
// Reliability is bounded to [0,1] and never exceeds the ceiling declared
// for the source it was collected from.
type SolutionFragment struct {
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Reliability float64  `json:"reliability"`
	SourceURL   string   `json:"source_url"`
	SourceTitle string   `json:"source_title"`
	AnswerScore int      `json:"answer_score,omitempty"`
}

// SourceCitation is a reference to a page consulted during collection.
// Unique by URL within an aggregated bundle.
type SourceCitation struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet,omitempty"`
	Type        SourceType `json:"type"`
	Reliability float64    `json:"reliability"`
}

// CollectionStats summarizes a collection run before truncation
type CollectionStats struct {
	TotalSolutions  int       `json:"total_solutions"`
	UniqueCitations int       `json:"total_sources"`
	MeanReliability float64   `json:"avg_reliability"`
	CollectedAt     time.Time `json:"collection_time"`
}

// AggregatedBundle is the merged, ranked, deduplicated solution material
// for one chosen candidate. Built once per run and handed whole to article
// generation; not mutated afterward.
type AggregatedBundle struct {
	Candidate ScoredCandidate    `json:"error_candidate"`
	Solutions []SolutionFragment `json:"solutions"`
	Citations []SourceCitation   `json:"sources"`
	Stats     CollectionStats    `json:"collection_summary"`
}
