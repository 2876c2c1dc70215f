// Package store persists pipeline output as numbered article directories.
// Each processed error gets one directory named NNNN_<sanitized error>_記事
// holding the article body, metadata, collected sources, and quality data.
// The directory names double as the dedup index: an error whose sanitized
// form matches an existing directory is considered already processed.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

const dirSuffix = "_記事"

var (
	unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]`)
	underscoreRuns  = regexp.MustCompile(`_+`)
	numberedDir     = regexp.MustCompile(`^(\d{4})_`)
)

// Manager owns one articles directory
type Manager struct {
	dir string
	now func() time.Time
}

func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = "articles"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create articles directory: %w", err)
	}
	return &Manager{dir: dir, now: time.Now}, nil
}

// ArticleRecord is everything a run produces for one error
type ArticleRecord struct {
	Article *model.Article
	Bundle  model.AggregatedBundle
	Quality *model.QualityReport
}

type metadata struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Excerpt      string   `json:"excerpt"`
	WordCount    int      `json:"word_count"`
	CreatedAt    string   `json:"created_at"`
	ErrorMessage string   `json:"error_message"`
}

// Entry is one row of the article listing
type Entry struct {
	Number       int    `json:"number"`
	Directory    string `json:"directory"`
	Title        string `json:"title"`
	ErrorMessage string `json:"error_message"`
	CreatedAt    string `json:"created_at"`
	WordCount    int    `json:"word_count"`
	WordPressURL string `json:"wordpress_url,omitempty"`
}

// AlreadyProcessed reports whether an article directory for this error
// already exists. Comparison is on the sanitized name, so two raw messages
// that sanitize identically are treated as the same error.
func (m *Manager) AlreadyProcessed(errorMessage string) (bool, error) {
	want := SanitizeErrorName(errorMessage)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return false, fmt.Errorf("scan articles directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		_, rest, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		if strings.TrimSuffix(rest, dirSuffix) == want {
			return true, nil
		}
	}
	return false, nil
}

// CreateArticleDir allocates the next numbered directory for this error
func (m *Manager) CreateArticleDir(errorMessage string) (string, error) {
	number, err := m.nextNumber()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%04d_%s%s", number, SanitizeErrorName(errorMessage), dirSuffix)
	dir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create article directory: %w", err)
	}
	return dir, nil
}

func (m *Manager) nextNumber() (int, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("scan articles directory: %w", err)
	}

	max := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if match := numberedDir.FindStringSubmatch(entry.Name()); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1, nil
}

// SaveArticle writes the markdown and HTML bodies plus the structured
// sidecar files into an article directory.
func (m *Manager) SaveArticle(dir string, record ArticleRecord) error {
	if record.Article == nil {
		return fmt.Errorf("nil article")
	}

	if err := os.WriteFile(filepath.Join(dir, "article.md"), []byte(record.Article.Content), 0o644); err != nil {
		return fmt.Errorf("write article.md: %w", err)
	}
	if record.Article.HTMLContent != "" {
		if err := os.WriteFile(filepath.Join(dir, "article.html"), []byte(record.Article.HTMLContent), 0o644); err != nil {
			return fmt.Errorf("write article.html: %w", err)
		}
	}

	meta := metadata{
		Title:        record.Article.Title,
		Slug:         record.Article.Slug,
		Category:     record.Article.Category,
		Tags:         record.Article.Tags,
		Excerpt:      record.Article.Excerpt,
		WordCount:    record.Article.WordCount,
		CreatedAt:    m.now().Format(time.RFC3339),
		ErrorMessage: record.Bundle.Candidate.Text,
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "sources.json"), record.Bundle.Citations); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "error_candidate.json"), record.Bundle.Candidate); err != nil {
		return err
	}
	if record.Quality != nil {
		if err := writeJSON(filepath.Join(dir, "seo_data.json"), record.Quality); err != nil {
			return err
		}
	}
	return nil
}

// SavePublishResult records the WordPress outcome alongside the article
func (m *Manager) SavePublishResult(dir string, result model.PublishResult) error {
	return writeJSON(filepath.Join(dir, "wordpress_result.json"), result)
}

// List returns all stored articles ordered by number
func (m *Manager) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("scan articles directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		match := numberedDir.FindStringSubmatch(de.Name())
		if match == nil {
			continue
		}
		number, _ := strconv.Atoi(match[1])

		entry := Entry{Number: number, Directory: filepath.Join(m.dir, de.Name())}

		var meta metadata
		if readJSON(filepath.Join(entry.Directory, "metadata.json"), &meta) == nil {
			entry.Title = meta.Title
			entry.ErrorMessage = meta.ErrorMessage
			entry.CreatedAt = meta.CreatedAt
			entry.WordCount = meta.WordCount
		}
		var wp model.PublishResult
		if readJSON(filepath.Join(entry.Directory, "wordpress_result.json"), &wp) == nil {
			entry.WordPressURL = wp.URL
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return entries, nil
}

// SanitizeErrorName maps an error message to a filesystem-safe directory
// component: letters, digits, hyphens and underscores survive, everything
// else collapses to underscores, capped at 50 runes.
func SanitizeErrorName(errorMessage string) string {
	name := unsafeNameChars.ReplaceAllString(errorMessage, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if runes := []rune(name); len(runes) > 50 {
		name = strings.TrimRight(string(runes[:50]), "_")
	}
	if name == "" {
		return "UNKNOWN_ERROR"
	}
	return name
}

// writeJSON marshals without HTML escaping so URLs stay readable on disk
func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
