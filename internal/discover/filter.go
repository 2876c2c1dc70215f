package discover

import (
	"strings"
	"unicode/utf8"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// minTextLength rejects candidates too short to be a real error signal
const minTextLength = 10

// HistoryFunc reports whether an error text has already been processed.
// Supplied by the article store; the filter only consumes the predicate.
type HistoryFunc func(text string) bool

// Filter removes candidates that cannot become articles. Rules run in a
// fixed order and short-circuit on the first failure:
//  1. confidence below the configured minimum
//  2. normalized text shorter than 10 characters
//  3. text contains an exclusion keyword (case-insensitive substring)
//  4. text already present in processing history
type Filter struct {
	minConfidence float64
	exclude       []string
	history       HistoryFunc
}

// NewFilter builds a filter from selection criteria. history may be nil,
// in which case the duplicate rule is skipped.
func NewFilter(criteria model.SelectionConfig, history HistoryFunc) *Filter {
	exclude := make([]string, 0, len(criteria.ExcludeKeywords))
	for _, kw := range criteria.ExcludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			exclude = append(exclude, kw)
		}
	}
	return &Filter{
		minConfidence: criteria.MinConfidence,
		exclude:       exclude,
		history:       history,
	}
}

// Apply returns the candidates that pass every rule, preserving order
func (f *Filter) Apply(pool []model.ScoredCandidate) []model.ScoredCandidate {
	filtered := make([]model.ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		if f.Keep(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Keep applies the rules to a single candidate
func (f *Filter) Keep(c model.ScoredCandidate) bool {
	if c.Confidence < f.minConfidence {
		return false
	}

	text := strings.TrimSpace(c.Text)
	if utf8.RuneCountInString(text) < minTextLength {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range f.exclude {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	if f.history != nil && f.history(c.Text) {
		return false
	}

	return true
}
