package collect

import (
	"strings"

	"golang.org/x/net/html"
)

const maxStepsPerSolution = 10

// ExtractSteps pulls actionable steps out of an HTML answer body: commands
// from code blocks, list items, and short paragraphs, in document order,
// capped at 10. Malformed HTML degrades to a truncated text fallback rather
// than an error.
func ExtractSteps(htmlContent string) []string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		fallback := strings.TrimSpace(htmlContent)
		if fallback == "" {
			return nil
		}
		if len(fallback) > 500 {
			fallback = fallback[:500]
		}
		return []string{fallback}
	}

	var steps []string
	add := func(s string) {
		if s != "" && len(steps) < maxStepsPerSolution {
			steps = append(steps, s)
		}
	}

	for _, n := range findAll(doc, isElement("code", "pre")) {
		if text := nodeText(n); text != "" {
			add("コマンド: " + text)
		}
	}
	for _, n := range findAll(doc, isElement("li")) {
		if text := nodeText(n); text != "" && len(text) < 200 {
			add(text)
		}
	}
	for _, n := range findAll(doc, isElement("p")) {
		text := nodeText(n)
		if len(text) > 20 && len(text) < 200 {
			add(text)
		}
	}

	return steps
}

// ExtractSnippet returns the first 200 characters of visible text
func ExtractSnippet(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return truncate(strings.TrimSpace(htmlContent), 200)
	}
	return truncate(visibleText(doc), 200)
}

// visibleText extracts text nodes from the document, skipping script and
// style subtrees.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

// nodeText flattens the text content of one node
func nodeText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// findAll returns every node matching the predicate, in document order
func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
			// Don't descend into a match: nested code inside pre would
			// otherwise be collected twice.
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

func isElement(names ...string) func(*html.Node) bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && set[n.Data]
	}
}

// truncate clips s to max characters, never splitting a rune
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
