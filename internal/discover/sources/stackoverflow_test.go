package sources

import (
	"math/rand"
	"strings"
	"testing"
)

func TestExtractErrorMessage(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
		ok    bool
	}{
		{
			name:  "windows error constant",
			title: "Getting ERROR_ACCESS_DENIED 0x80070005 when installing",
			want:  "ERROR_ACCESS_DENIED 0x80070005",
			ok:    true,
		},
		{
			name:  "hex code",
			title: "Why does my app throw 0x80070057 sometimes",
			want:  "0x80070057",
			ok:    true,
		},
		{
			name:  "exception pattern",
			title: "Exception: java.lang.NullPointerException in service layer",
			want:  "Exception: java.lang.NullPointerException",
			ok:    true,
		},
		{
			name:  "cannot pattern",
			title: "Cannot read property of undefined in React",
			want:  "Cannot read property of undefined in React",
			ok:    true,
		},
		{
			name:  "unable to pattern",
			title: "Unable to locate package on Ubuntu 22.04",
			want:  "Unable to locate package on Ubuntu 22.04",
			ok:    true,
		},
		{
			name:  "short title fallback",
			title: "Weird npm install behavior on Windows",
			want:  "Weird npm install behavior on Windows",
			ok:    true,
		},
		{
			name:  "long title without a pattern is dropped",
			title: strings.Repeat("question about a really long topic ", 5),
			ok:    false,
		},
		{
			name:  "multibyte length measured in characters",
			title: strings.Repeat("エラーです", 19) + "困った", // 98 runes, well over 100 bytes
			want:  strings.Repeat("エラーです", 19) + "困った",
			ok:    true,
		},
		{
			name:  "empty title",
			title: "",
			ok:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractErrorMessage(tc.title)
			if ok != tc.ok {
				t.Fatalf("ok: want %v, got %v (text %q)", tc.ok, ok, got)
			}
			if ok && got != tc.want {
				t.Errorf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeCredential(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"${STACKOVERFLOW_API_KEY}", ""},
		{"your_stackoverflow_api_key", ""},
		{"real-key-123", "real-key-123"},
	}

	for _, tc := range cases {
		if got := normalizeCredential(tc.in); got != tc.want {
			t.Errorf("normalizeCredential(%q): want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSampleStrings(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	sample := sampleStrings(rng, stackOverflowTags, 6)
	if len(sample) != 6 {
		t.Fatalf("expected 6 samples, got %d", len(sample))
	}

	seen := make(map[string]bool)
	catalog := make(map[string]bool)
	for _, tag := range stackOverflowTags {
		catalog[tag] = true
	}
	for _, s := range sample {
		if seen[s] {
			t.Errorf("duplicate sample %q", s)
		}
		seen[s] = true
		if !catalog[s] {
			t.Errorf("sample %q not from catalog", s)
		}
	}
}

func TestSampleStrings_ClampsToCatalogSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	catalog := []string{"a", "b"}

	sample := sampleStrings(rng, catalog, 10)
	if len(sample) != 2 {
		t.Errorf("expected sample clamped to 2, got %d", len(sample))
	}
}
