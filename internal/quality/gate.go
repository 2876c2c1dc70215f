package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Gate scores a generated article across four dimensions and decides whether
// it may be published. Evaluation is a pure function of the article's fields:
// no I/O, no randomness, and calling it twice on the same article yields an
// identical report.
type Gate struct {
	minScore     float64
	minWordCount int
	maxWordCount int
	connectives  []string
}

// NewGate builds a gate from the quality configuration
func NewGate(cfg model.QualityConfig) *Gate {
	return &Gate{
		minScore:     cfg.MinScore,
		minWordCount: cfg.MinWordCount,
		maxWordCount: cfg.MaxWordCount,
		connectives:  cfg.Connectives,
	}
}

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9\-]+$`)
	imgTagPattern   = regexp.MustCompile(`<img[^>]*>`)
	h1Pattern       = regexp.MustCompile(`(?m)^# `)
	h2Pattern       = regexp.MustCompile(`(?m)^## `)
	h3Pattern       = regexp.MustCompile(`(?m)^### `)
	listItemPattern = regexp.MustCompile(`(?m)^[-*+] |^[0-9]+\. `)
	sentenceSplit   = regexp.MustCompile(`[。！？]`)
	kanjiPattern    = regexp.MustCompile(`[\x{4e00}-\x{9faf}]`)
	blankLines      = regexp.MustCompile(`\n\s*\n`)
)

// technicalTerms are acronyms the readability check expects to see explained
// with an adjacent parenthetical on first use.
var technicalTerms = []string{"API", "SQL", "HTTP", "URL", "OS", "CPU", "RAM"}

// Evaluate scores the article and returns the full report. Missing or
// malformed article fields count as empty; this never returns an error.
func (g *Gate) Evaluate(article model.Article) model.QualityReport {
	basic := g.checkBasicQuality(article)
	seo := g.checkSEOQuality(article)
	structure := g.checkContentStructure(article)
	readability := g.checkReadability(article)

	subScores := map[string]model.SubScore{
		model.DimensionBasic:       basic,
		model.DimensionSEO:         seo,
		model.DimensionStructure:   structure,
		model.DimensionReadability: readability,
	}

	var issues []model.Issue
	totalScore, maxScore := 0, 0
	for _, dim := range []string{model.DimensionBasic, model.DimensionSEO, model.DimensionStructure, model.DimensionReadability} {
		sub := subScores[dim]
		totalScore += sub.Score
		maxScore += sub.MaxScore
		issues = append(issues, sub.Issues...)
	}

	overall := 0.0
	if maxScore > 0 {
		overall = round1(float64(totalScore) / float64(maxScore) * 100)
	}

	summary := summarize(issues)
	passed := overall >= g.minScore && summary.High == 0

	return model.QualityReport{
		Passed:           passed,
		OverallScore:     overall,
		SEOScore:         ratioScore(seo),
		ReadabilityScore: ratioScore(readability),
		SubScores:        subScores,
		Issues:           issues,
		Summary:          summary,
	}
}

// checkBasicQuality verifies word count, title, content presence, and the
// meta description.
func (g *Gate) checkBasicQuality(article model.Article) model.SubScore {
	score := 0
	var issues []model.Issue

	switch {
	case article.WordCount < g.minWordCount:
		issues = append(issues, model.Issue{
			Message:  fmt.Sprintf("文字数不足: %d文字 (最小: %d文字)", article.WordCount, g.minWordCount),
			Severity: model.SeverityHigh,
		})
	case article.WordCount > g.maxWordCount:
		issues = append(issues, model.Issue{
			Message:  fmt.Sprintf("文字数過多: %d文字 (最大: %d文字)", article.WordCount, g.maxWordCount),
			Severity: model.SeverityMedium,
		})
	default:
		score += 30
	}

	titleLen := len([]rune(article.Title))
	switch {
	case article.Title == "":
		issues = append(issues, model.Issue{Message: "タイトルがありません", Severity: model.SeverityHigh})
	case titleLen < 20:
		issues = append(issues, model.Issue{Message: "タイトルが短すぎます", Severity: model.SeverityMedium})
	case titleLen > 70:
		issues = append(issues, model.Issue{Message: "タイトルが長すぎます", Severity: model.SeverityMedium})
	default:
		score += 25
	}

	if article.Content == "" {
		issues = append(issues, model.Issue{Message: "コンテンツがありません", Severity: model.SeverityHigh})
	} else {
		score += 20
	}

	excerptLen := len([]rune(article.Excerpt))
	switch {
	case article.Excerpt == "":
		issues = append(issues, model.Issue{Message: "メタディスクリプションがありません", Severity: model.SeverityMedium})
	case excerptLen < 100 || excerptLen > 160:
		issues = append(issues, model.Issue{Message: "メタディスクリプションの長さが不適切です", Severity: model.SeverityLow})
	default:
		score += 25
	}

	return model.SubScore{Score: score, MaxScore: 100, Issues: issues}
}

// checkSEOQuality verifies keyword placement, density, slug format, tags,
// and image ALT attributes.
func (g *Gate) checkSEOQuality(article model.Article) model.SubScore {
	score := 0
	var issues []model.Issue

	keyword := strings.ToLower(article.Keyword)
	if keyword != "" {
		if strings.Contains(strings.ToLower(article.Title), keyword) {
			score += 20
		} else {
			issues = append(issues, model.Issue{
				Message:  "タイトルにメインキーワードが含まれていません",
				Severity: model.SeverityHigh,
			})
		}

		if strings.Contains(strings.ToLower(article.Excerpt), keyword) {
			score += 15
		} else {
			issues = append(issues, model.Issue{
				Message:  "メタディスクリプションにキーワードが含まれていません",
				Severity: model.SeverityMedium,
			})
		}

		if article.Content != "" {
			keywordCount := strings.Count(strings.ToLower(article.Content), keyword)
			contentWords := len(strings.Fields(article.Content))
			if contentWords > 0 {
				density := float64(keywordCount) / float64(contentWords) * 100
				switch {
				case density >= 1 && density <= 3:
					score += 25
				case density >= 0.5 && density < 1:
					score += 15
					issues = append(issues, model.Issue{
						Message:  fmt.Sprintf("キーワード密度が低すぎます: %.2f%%", density),
						Severity: model.SeverityLow,
					})
				case density > 3:
					issues = append(issues, model.Issue{
						Message:  fmt.Sprintf("キーワード密度が高すぎます: %.2f%%", density),
						Severity: model.SeverityMedium,
					})
				default:
					issues = append(issues, model.Issue{
						Message:  "キーワードがコンテンツに十分含まれていません",
						Severity: model.SeverityMedium,
					})
				}
			}
		}
	}

	if article.Slug != "" {
		if slugPattern.MatchString(article.Slug) {
			score += 10
		} else {
			issues = append(issues, model.Issue{Message: "スラッグの形式が不適切です", Severity: model.SeverityLow})
		}
	}

	switch {
	case len(article.Tags) >= 3:
		score += 15
	case len(article.Tags) >= 1:
		score += 10
		issues = append(issues, model.Issue{Message: "タグの数が少なすぎます", Severity: model.SeverityLow})
	default:
		issues = append(issues, model.Issue{Message: "タグが設定されていません", Severity: model.SeverityMedium})
	}

	if article.HTMLContent != "" {
		withoutAlt := 0
		for _, img := range imgTagPattern.FindAllString(article.HTMLContent, -1) {
			if !strings.Contains(img, "alt=") {
				withoutAlt++
			}
		}
		if withoutAlt > 0 {
			issues = append(issues, model.Issue{
				Message:  fmt.Sprintf("%d個の画像にALTテキストがありません", withoutAlt),
				Severity: model.SeverityMedium,
			})
		} else {
			score += 15
		}
	}

	return model.SubScore{Score: score, MaxScore: 100, Issues: issues}
}

// checkContentStructure verifies the Markdown skeleton: heading hierarchy,
// lists, code fences, and paragraph length.
func (g *Gate) checkContentStructure(article model.Article) model.SubScore {
	score := 0
	var issues []model.Issue
	content := article.Content

	h1Count := len(h1Pattern.FindAllString(content, -1))
	h2Count := len(h2Pattern.FindAllString(content, -1))
	h3Count := len(h3Pattern.FindAllString(content, -1))

	switch {
	case h1Count == 1:
		score += 20
	case h1Count == 0:
		issues = append(issues, model.Issue{Message: "H1見出しがありません", Severity: model.SeverityHigh})
	default:
		issues = append(issues, model.Issue{
			Message:  fmt.Sprintf("H1見出しが複数あります: %d個", h1Count),
			Severity: model.SeverityMedium,
		})
	}

	switch {
	case h2Count >= 3:
		score += 25
	case h2Count >= 1:
		score += 15
		issues = append(issues, model.Issue{Message: "H2見出しの数が少なすぎます", Severity: model.SeverityLow})
	default:
		issues = append(issues, model.Issue{Message: "H2見出しがありません", Severity: model.SeverityMedium})
	}

	switch {
	case h3Count >= 2:
		score += 15
	case h3Count >= 1:
		score += 10
	}

	listCount := len(listItemPattern.FindAllString(content, -1))
	switch {
	case listCount >= 3:
		score += 20
	case listCount >= 1:
		score += 10
		issues = append(issues, model.Issue{Message: "リストアイテムが少なすぎます", Severity: model.SeverityLow})
	default:
		issues = append(issues, model.Issue{Message: "リストが含まれていません", Severity: model.SeverityLow})
	}

	// opening and closing fences count separately
	if strings.Count(content, "```") >= 2 {
		score += 10
	}

	longParagraphs := 0
	for _, paragraph := range strings.Split(content, "\n\n") {
		if len([]rune(paragraph)) > 500 {
			longParagraphs++
		}
	}
	if longParagraphs > 0 {
		issues = append(issues, model.Issue{
			Message:  fmt.Sprintf("%d個の段落が長すぎます", longParagraphs),
			Severity: model.SeverityLow,
		})
	} else {
		score += 10
	}

	return model.SubScore{Score: score, MaxScore: 100, Issues: issues}
}

// checkReadability verifies sentence length, ideographic density, acronym
// explanations, connective usage, and blank-line separation.
func (g *Gate) checkReadability(article model.Article) model.SubScore {
	content := article.Content
	if content == "" {
		return model.SubScore{
			Score:    0,
			MaxScore: 100,
			Issues:   []model.Issue{{Message: "コンテンツがありません", Severity: model.SeverityHigh}},
		}
	}

	score := 0
	var issues []model.Issue

	sentences := sentenceSplit.Split(content, -1)
	longSentences := 0
	for _, sentence := range sentences {
		if len([]rune(strings.TrimSpace(sentence))) > 100 {
			longSentences++
		}
	}
	if float64(longSentences)/float64(len(sentences)) < 0.2 {
		score += 25
	} else {
		issues = append(issues, model.Issue{Message: "長すぎる文が多すぎます", Severity: model.SeverityMedium})
	}

	kanjiCount := len(kanjiPattern.FindAllString(content, -1))
	totalChars := 0
	for _, r := range content {
		if !unicode.IsSpace(r) {
			totalChars++
		}
	}
	if totalChars > 0 {
		density := float64(kanjiCount) / float64(totalChars)
		if density >= 0.2 && density <= 0.4 {
			score += 25
		} else {
			issues = append(issues, model.Issue{
				Message:  fmt.Sprintf("漢字密度が不適切です: %.2f", density),
				Severity: model.SeverityLow,
			})
		}
	}

	if countExplainedTerms(content) > 0 {
		score += 15
	}

	connectiveCount := 0
	for _, conn := range g.connectives {
		connectiveCount += strings.Count(content, conn)
	}
	switch {
	case connectiveCount >= 3:
		score += 15
	case connectiveCount >= 1:
		score += 10
	default:
		issues = append(issues, model.Issue{Message: "接続詞の使用が少なすぎます", Severity: model.SeverityLow})
	}

	emptyLines := len(blankLines.FindAllString(content, -1))
	switch {
	case emptyLines >= 5:
		score += 20
	case emptyLines >= 2:
		score += 15
	default:
		issues = append(issues, model.Issue{Message: "改行や空白行が少なすぎます", Severity: model.SeverityLow})
	}

	return model.SubScore{Score: score, MaxScore: 100, Issues: issues}
}

// countExplainedTerms counts technical acronyms followed by an explanatory
// parenthetical, e.g. "API（アプリケーション...）".
func countExplainedTerms(content string) int {
	explained := 0
	for _, term := range technicalTerms {
		if !strings.Contains(content, term) {
			continue
		}
		pattern := regexp.MustCompile(regexp.QuoteMeta(term) + `[（(].*?[）)]`)
		if pattern.MatchString(content) {
			explained++
		}
	}
	return explained
}

func summarize(issues []model.Issue) model.IssueSummary {
	summary := model.IssueSummary{Total: len(issues)}
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityHigh:
			summary.High++
		case model.SeverityMedium:
			summary.Medium++
		case model.SeverityLow:
			summary.Low++
		}
	}
	return summary
}

func ratioScore(sub model.SubScore) float64 {
	if sub.MaxScore == 0 {
		return 0
	}
	return round1(float64(sub.Score) / float64(sub.MaxScore) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
