package generate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

var (
	slugKeywordPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ERROR[_\s]+([A-Z_]+)`),
		regexp.MustCompile(`0x([0-9A-Fa-f]+)`),
		regexp.MustCompile(`([A-Za-z_]+)Exception`),
		regexp.MustCompile(`([A-Za-z_]+)Error`),
	}
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugWhitespace  = regexp.MustCompile(`[\s_]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// softwareTags maps product mentions in the error text to article tags.
// Ordered so derived tags are stable across runs.
var softwareTags = []struct {
	mention string
	tag     string
}{
	{"chrome", "Google Chrome"},
	{"firefox", "Firefox"},
	{"edge", "Microsoft Edge"},
	{"office", "Microsoft Office"},
	{"adobe", "Adobe"},
	{"steam", "Steam"},
}

// optimize enforces the SEO invariants on a generated article: the keyword
// appears in the title, lengths stay within search-snippet limits, and the
// slug and tags are derived from the error text when the model's own values
// are unusable.
func (g *Generator) optimize(article *model.Article, bundle model.AggregatedBundle) {
	year := g.now().Year()
	keyword := bundle.Candidate.Text

	article.Title = optimizeTitle(article.Title, keyword, year)
	article.Excerpt = optimizeMetaDescription(article.Excerpt, keyword, len(bundle.Solutions), errorFamily(keyword))
	article.Slug = optimizeSlug(article.Slug, keyword, year, g.now)
	article.Tags = optimizeTags(article.Tags, keyword)
	if article.WordCount == 0 {
		article.WordCount = len([]rune(article.Content))
	}
}

// optimizeTitle guarantees the keyword is present and the length fits a
// search result title. Lengths are in runes; Japanese titles count characters.
func optimizeTitle(title, keyword string, year int) string {
	if !strings.Contains(strings.ToLower(title), strings.ToLower(keyword)) {
		title = fmt.Sprintf("%sの解決方法【%d年最新版】", keyword, year)
	}

	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	if len(runes) < 30 {
		if !strings.Contains(title, "解決") {
			title += "の解決方法"
		}
		if !strings.Contains(title, fmt.Sprint(year)) {
			title += fmt.Sprintf("【%d年版】", year)
		}
	}
	return title
}

// optimizeMetaDescription builds a search-snippet description capped at 160
// characters, mentioning how many solutions the article covers.
func optimizeMetaDescription(current, keyword string, solutionCount int, f family) string {
	base := current
	if base == "" {
		base = fmt.Sprintf("%sのエラーでお困りですか?", keyword)
	}

	var b strings.Builder
	b.WriteString(base)
	if solutionCount > 0 {
		fmt.Fprintf(&b, " %d個の解決方法を詳しく解説。", solutionCount)
	}
	switch f {
	case familyWindows:
		b.WriteString("Windows対応。")
	case familyMacOS:
		b.WriteString("macOS対応。")
	case familyLinux:
		b.WriteString("Linux対応。")
	}

	runes := []rune(b.String())
	if len(runes) > 160 {
		return string(runes[:157]) + "..."
	}
	return string(runes)
}

// optimizeSlug prefers a keyword extracted from the error code over whatever
// the model produced, so URLs stay stable across regenerations.
func optimizeSlug(current, keyword string, year int, now func() time.Time) string {
	for _, pattern := range slugKeywordPatterns {
		if m := pattern.FindStringSubmatch(keyword); m != nil {
			kw := strings.ToLower(strings.ReplaceAll(m[1], "_", "-"))
			return fmt.Sprintf("%s-solution-%d", kw, year)
		}
	}

	if current != "" && isValidSlug(current) {
		return current
	}

	sanitized := sanitizeText(keyword)
	if sanitized == "" {
		return fmt.Sprintf("error-article-%d", now().Unix())
	}
	if len(sanitized) > 30 {
		sanitized = strings.Trim(sanitized[:30], "-")
	}
	return sanitized + "-solution"
}

var validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)

func isValidSlug(s string) bool {
	return validSlug.MatchString(s)
}

// optimizeTags merges the model's tags with derived ones, deduplicated in
// insertion order, at most 10.
func optimizeTags(current []string, keyword string) []string {
	tags := make([]string, 0, 10)
	seen := make(map[string]bool)

	add := func(tag string) {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" || seen[key] || len(tags) >= 10 {
			return
		}
		seen[key] = true
		tags = append(tags, strings.TrimSpace(tag))
	}

	add("エラー解決")
	add("トラブルシューティング")

	lower := strings.ToLower(keyword)
	switch errorFamily(keyword) {
	case familyWindows:
		add("Windows")
	case familyMacOS:
		add("macOS")
	case familyLinux:
		add("Linux")
	}
	if strings.Contains(lower, "0x") {
		add("エラーコード")
	}
	for _, st := range softwareTags {
		if strings.Contains(lower, st.mention) {
			add(st.tag)
		}
	}

	for _, tag := range current {
		add(tag)
	}

	return tags
}

// sanitizeSlug derives a slug from free text, falling back to a timestamped
// name when nothing survives sanitization.
func sanitizeSlug(text string, now func() time.Time) string {
	sanitized := sanitizeText(text)
	if sanitized == "" {
		return fmt.Sprintf("error-article-%d", now().Unix())
	}
	if len(sanitized) > 50 {
		sanitized = strings.Trim(sanitized[:50], "-")
	}
	return sanitized
}

func sanitizeText(text string) string {
	s := strings.ToLower(text)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
