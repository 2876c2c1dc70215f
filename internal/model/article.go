package model

// Article is the synthesized long-form piece handed to the quality gate and
// the publisher. Fields may be empty when generation under-delivers; the
// quality gate treats missing fields as empty rather than failing.
type Article struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Content     string   `json:"content"`      // Markdown
	HTMLContent string   `json:"html_content"` // rendered for publishing
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	WordCount   int      `json:"word_count"`
	Keyword     string   `json:"error_message"` // the driving error text
}

// Severity classifies a quality issue. A single high-severity issue blocks
// publication regardless of the overall score.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is one quality finding with its severity
type Issue struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Quality gate dimensions
const (
	DimensionBasic       = "basic_quality"
	DimensionSEO         = "seo_quality"
	DimensionStructure   = "content_structure"
	DimensionReadability = "readability"
)

// SubScore is the result of one quality dimension
type SubScore struct {
	Score    int     `json:"score"`
	MaxScore int     `json:"max_score"`
	Issues   []Issue `json:"issues"`
}

// IssueSummary counts issues by severity
type IssueSummary struct {
	Total  int `json:"total_issues"`
	High   int `json:"high_severity_issues"`
	Medium int `json:"medium_severity_issues"`
	Low    int `json:"low_severity_issues"`
}

// QualityReport is the deterministic verdict of the quality gate.
// Invariant: Passed implies OverallScore >= the configured minimum and
// zero high-severity issues.
type QualityReport struct {
	Passed           bool                `json:"passed"`
	OverallScore     float64             `json:"overall_score"`
	SEOScore         float64             `json:"seo_score"`
	ReadabilityScore float64             `json:"readability_score"`
	SubScores        map[string]SubScore `json:"detailed_results"`
	Issues           []Issue             `json:"issues"`
	Summary          IssueSummary        `json:"summary"`
}
