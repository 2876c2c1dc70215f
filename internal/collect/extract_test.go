package collect

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractSteps_CodeBlocks(t *testing.T) {
	htmlBody := `<html><body>
		<p>Run the following to clear the DNS cache and restart the resolver service:</p>
		<pre><code>ipconfig /flushdns</code></pre>
	</body></html>`

	steps := ExtractSteps(htmlBody)
	if len(steps) == 0 {
		t.Fatal("expected steps, got none")
	}

	if !strings.HasPrefix(steps[0], "コマンド: ") {
		t.Errorf("expected command prefix, got %q", steps[0])
	}
	if !strings.Contains(steps[0], "ipconfig /flushdns") {
		t.Errorf("expected command text, got %q", steps[0])
	}
}

func TestExtractSteps_ListItems(t *testing.T) {
	htmlBody := `<ul>
		<li>Open the control panel</li>
		<li>Select network settings</li>
		<li>Restart the adapter</li>
	</ul>`

	steps := ExtractSteps(htmlBody)
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d: %v", len(steps), steps)
	}
	if steps[0] != "Open the control panel" {
		t.Errorf("unexpected first step: %q", steps[0])
	}
}

func TestExtractSteps_SkipsLongListItems(t *testing.T) {
	long := strings.Repeat("x", 250)
	htmlBody := "<ul><li>" + long + "</li><li>short item</li></ul>"

	steps := ExtractSteps(htmlBody)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0] != "short item" {
		t.Errorf("unexpected step: %q", steps[0])
	}
}

func TestExtractSteps_ParagraphLengthWindow(t *testing.T) {
	short := "<p>too short</p>"
	good := "<p>This paragraph is inside the acceptable length window for a step.</p>"
	long := "<p>" + strings.Repeat("y", 300) + "</p>"

	steps := ExtractSteps(short + good + long)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d: %v", len(steps), steps)
	}
}

func TestExtractSteps_CapsAtTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("<ul>")
	for i := 0; i < 20; i++ {
		b.WriteString("<li>step item number ")
		b.WriteByte(byte('a' + i))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")

	steps := ExtractSteps(b.String())
	if len(steps) != 10 {
		t.Errorf("expected cap of 10 steps, got %d", len(steps))
	}
}

func TestExtractSteps_Empty(t *testing.T) {
	if steps := ExtractSteps(""); len(steps) != 0 {
		t.Errorf("expected no steps for empty input, got %v", steps)
	}
}

func TestExtractSnippet(t *testing.T) {
	htmlBody := `<html><head><script>var x = 1;</script></head>
	<body><p>Visible answer text.</p><style>.a{}</style></body></html>`

	snippet := ExtractSnippet(htmlBody)
	if !strings.Contains(snippet, "Visible answer text.") {
		t.Errorf("expected visible text in snippet, got %q", snippet)
	}
	if strings.Contains(snippet, "var x") {
		t.Errorf("script content leaked into snippet: %q", snippet)
	}
}

func TestExtractSnippet_Truncates(t *testing.T) {
	htmlBody := "<p>" + strings.Repeat("a", 500) + "</p>"

	snippet := ExtractSnippet(htmlBody)
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("expected truncated snippet to end in an ellipsis, got %q", snippet)
	}
	if got := utf8.RuneCountInString(snippet); got > 203 {
		t.Errorf("expected snippet <= 200 chars plus ellipsis, got %d", got)
	}
}

// Snippets are clipped on character boundaries, so multibyte answer text
// stays valid UTF-8 after truncation.
func TestExtractSnippet_TruncatesOnRuneBoundary(t *testing.T) {
	htmlBody := "<p>" + strings.Repeat("エラーの解決方法を解説します。", 30) + "</p>"

	snippet := ExtractSnippet(htmlBody)
	if !utf8.ValidString(snippet) {
		t.Fatal("truncated snippet is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(snippet); got > 203 {
		t.Errorf("expected snippet <= 200 chars plus ellipsis, got %d", got)
	}
}

func TestExtractSteps_NestedCodeNotDuplicated(t *testing.T) {
	htmlBody := `<pre><code>sudo systemctl restart networking</code></pre>`

	steps := ExtractSteps(htmlBody)
	count := 0
	for _, s := range steps {
		if strings.Contains(s, "systemctl restart") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected nested code collected once, got %d times: %v", count, steps)
	}
}
