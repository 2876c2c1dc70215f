package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "articles"))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testRecord(errorMessage string) ArticleRecord {
	return ArticleRecord{
		Article: &model.Article{
			Title:       errorMessage + "の解決方法",
			Slug:        "test-solution",
			Content:     "# 見出し\n\n本文です。",
			HTMLContent: "<h1>見出し</h1>\n<p>本文です。</p>",
			Category:    "エラー解決",
			Tags:        []string{"エラー解決"},
			WordCount:   10,
			Keyword:     errorMessage,
		},
		Bundle: model.AggregatedBundle{
			Candidate: model.ScoredCandidate{
				RawCandidate: model.RawCandidate{Text: errorMessage, Provider: model.ProviderTrends},
			},
			Citations: []model.SourceCitation{
				{Title: "doc", URL: "https://learn.microsoft.com/a?b=1&c=2", Type: model.SourceTypeOfficial, Reliability: 1.0},
			},
		},
		Quality: &model.QualityReport{Passed: true, OverallScore: 85.0},
	}
}

func TestSanitizeErrorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ERROR_ACCESS_DENIED", "ERROR_ACCESS_DENIED"},
		{"code 0x80070005: denied!", "code_0x80070005_denied"},
		{"  spaces   and\ttabs  ", "spaces_and_tabs"},
		{"エラーが発生しました", "エラーが発生しました"},
		{"!!!", "UNKNOWN_ERROR"},
		{"", "UNKNOWN_ERROR"},
	}
	for _, tt := range tests {
		if got := SanitizeErrorName(tt.in); got != tt.want {
			t.Errorf("SanitizeErrorName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeErrorName(strings.Repeat("a", 80))
	if len([]rune(long)) != 50 {
		t.Errorf("long name not capped: %d runes", len([]rune(long)))
	}
}

func TestCreateArticleDir_SequentialNumbering(t *testing.T) {
	m := testManager(t)

	first, err := m.CreateArticleDir("ERROR_ONE")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.CreateArticleDir("ERROR_TWO")
	if err != nil {
		t.Fatal(err)
	}

	if base := filepath.Base(first); !strings.HasPrefix(base, "0001_") || !strings.HasSuffix(base, "_記事") {
		t.Errorf("first dir = %q", base)
	}
	if base := filepath.Base(second); !strings.HasPrefix(base, "0002_") {
		t.Errorf("second dir = %q", base)
	}
}

func TestCreateArticleDir_SkipsGaps(t *testing.T) {
	m := testManager(t)
	if err := os.MkdirAll(filepath.Join(m.dir, "0007_old_記事"), 0o755); err != nil {
		t.Fatal(err)
	}

	dir, err := m.CreateArticleDir("ERROR_NEW")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(dir), "0008_") {
		t.Errorf("dir = %q, want number 0008", filepath.Base(dir))
	}
}

func TestAlreadyProcessed(t *testing.T) {
	m := testManager(t)

	processed, err := m.AlreadyProcessed("ERROR_ACCESS_DENIED")
	if err != nil {
		t.Fatal(err)
	}
	if processed {
		t.Error("fresh store reports error as processed")
	}

	if _, err := m.CreateArticleDir("ERROR_ACCESS_DENIED"); err != nil {
		t.Fatal(err)
	}

	processed, err = m.AlreadyProcessed("ERROR_ACCESS_DENIED")
	if err != nil {
		t.Fatal(err)
	}
	if !processed {
		t.Error("stored error not detected as processed")
	}

	// raw messages that sanitize identically count as the same error
	processed, err = m.AlreadyProcessed("ERROR ACCESS DENIED!")
	if err != nil {
		t.Fatal(err)
	}
	if !processed {
		t.Error("sanitization-equivalent error not detected")
	}

	processed, err = m.AlreadyProcessed("ERROR_OTHER")
	if err != nil {
		t.Fatal(err)
	}
	if processed {
		t.Error("unrelated error reported as processed")
	}
}

func TestSaveArticle_WritesAllFiles(t *testing.T) {
	m := testManager(t)
	dir, err := m.CreateArticleDir("ERROR_X")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SaveArticle(dir, testRecord("ERROR_X")); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"article.md", "article.html", "metadata.json", "sources.json", "error_candidate.json", "seo_data.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// URLs must not be HTML-escaped in the sidecar files
	sources, err := os.ReadFile(filepath.Join(dir, "sources.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(sources), "https://learn.microsoft.com/a?b=1&c=2") {
		t.Errorf("sources.json mangles URL:\n%s", sources)
	}
}

func TestSaveArticle_NilArticle(t *testing.T) {
	m := testManager(t)
	dir, err := m.CreateArticleDir("ERROR_X")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SaveArticle(dir, ArticleRecord{}); err == nil {
		t.Error("nil article accepted")
	}
}

func TestList(t *testing.T) {
	m := testManager(t)

	for _, msg := range []string{"ERROR_B", "ERROR_A"} {
		dir, err := m.CreateArticleDir(msg)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.SaveArticle(dir, testRecord(msg)); err != nil {
			t.Fatal(err)
		}
	}

	dir := filepath.Join(m.dir, "0001_ERROR_B_記事")
	if err := m.SavePublishResult(dir, model.PublishResult{PostID: 42, URL: "https://blog.example/p/42", Status: "publish"}); err != nil {
		t.Fatal(err)
	}

	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Number != 1 || entries[1].Number != 2 {
		t.Errorf("orders = %d, %d", entries[0].Number, entries[1].Number)
	}
	if entries[0].ErrorMessage != "ERROR_B" {
		t.Errorf("ErrorMessage = %q", entries[0].ErrorMessage)
	}
	if entries[0].WordPressURL != "https://blog.example/p/42" {
		t.Errorf("WordPressURL = %q", entries[0].WordPressURL)
	}
	if entries[1].WordPressURL != "" {
		t.Errorf("unpublished entry has URL %q", entries[1].WordPressURL)
	}
}

func TestEmptyList(t *testing.T) {
	m := testManager(t)
	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}
