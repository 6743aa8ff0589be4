package lyrics

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\[[^\]]*\]$`),
	regexp.MustCompile(`^\((?:verse|chorus|pre-chorus|bridge|intro|outro|hook|refrain)[^)]*\)$`),
	regexp.MustCompile(`^\d+\s+contributors?`),
	regexp.MustCompile(`^translations?\b`),
	regexp.MustCompile(`^\d*\s*embed$`),
	regexp.MustCompile(`^you might also like`),
	regexp.MustCompile(`^(?:lyrics|music|words|written|produced|composed|arranged|mixed|mastered)(?:\s+and\s+\w+)?\s+by\b`),
	regexp.MustCompile(`^see .+ live$`),
	regexp.MustCompile(`^get tickets as low as`),
}

// IsNoiseLine reports whether line is a section header, banner, or credit
// rather than sung text.
func IsNoiseLine(line string) bool {
	lowered := strings.ToLower(strings.TrimSpace(line))
	if lowered == "" {
		return false
	}
	for _, pattern := range noisePatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// CleanText drops noise lines, trims whitespace, and collapses runs of blank
// lines into one.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		if IsNoiseLine(line) {
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// StripTitleHeader drops a leading "<title> Lyrics" banner. Only the first
// non-empty line is considered, and only when it names title.
func StripTitleHeader(text, title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if strings.EqualFold(line, title+" Lyrics") {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		return text
	}
	return text
}

// collapseNewlines treats source newlines as plain whitespace; only <br> and
// block boundaries break lines.
func collapseNewlines(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// NodeText renders the text content of n, mapping <br> to newlines and
// skipping subtrees for which skip returns true.
func NodeText(n *html.Node, skip func(*html.Node) bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if skip != nil && skip(node) {
			return
		}
		switch node.Type {
		case html.TextNode:
			b.WriteString(collapseNewlines(node.Data))
			return
		case html.ElementNode:
			switch node.DataAtom {
			case atom.Br:
				b.WriteByte('\n')
				return
			case atom.Script, atom.Style:
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if node.Type == html.ElementNode && (node.DataAtom == atom.Div || node.DataAtom == atom.P) {
			b.WriteByte('\n')
		}
	}
	walk(n)
	return b.String()
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// FindAll returns every node under root for which match returns true, in
// document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if match(node) {
			found = append(found, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return found
}
