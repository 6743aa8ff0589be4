package captions

import (
	"strings"
	"unicode"
)

// Default layout values.
const (
	DefaultMaxChars    = 24
	DefaultBreakMarker = "\r"
)

// Wrap breaks text into lines of at most maxChars runes joined by marker.
// Breaks fall on the rightmost whitespace at or before maxChars; a word
// longer than the budget is hard-cut. Text that already contains marker is
// returned unchanged, so Wrap is idempotent. maxChars <= 0 disables wrapping.
func Wrap(text string, maxChars int, marker string) string {
	if maxChars <= 0 {
		return text
	}
	if marker == "" {
		marker = DefaultBreakMarker
	}
	if strings.Contains(text, marker) {
		return text
	}
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxChars {
		return trimmed
	}
	return strings.Join(wrapRunes(runes, maxChars), marker)
}

func wrapRunes(runes []rune, maxChars int) []string {
	var lines []string
	for len(runes) > maxChars {
		cut, skip := maxChars, 0
		for i := maxChars; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut, skip = i, 1
				break
			}
		}
		if head := strings.TrimSpace(string(runes[:cut])); head != "" {
			lines = append(lines, head)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut+skip:])))
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}

// Lines splits wrapped text back into its display lines.
func Lines(wrapped, marker string) []string {
	if marker == "" {
		marker = DefaultBreakMarker
	}
	return strings.Split(wrapped, marker)
}
