package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostropheReplacer folds typographic apostrophes onto ASCII.
var apostropheReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"ʼ", "'",
	"`", "'",
)

var foldCaser = cases.Fold()

// Fold lowercases text and removes combining marks, so "Café" becomes "cafe".
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return foldCaser.String(apostropheReplacer.Replace(stripped))
}

// Normalize splits text into lowercase words. Punctuation is dropped while
// letters, digits, and apostrophes are kept. The result is deterministic and
// never nil for non-empty word content.
func Normalize(text string) []string {
	folded := Fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
				b.WriteRune(r)
			}
		}
		word := b.String()
		if strings.Trim(word, "'") == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}

// NormalizeJoined returns Normalize(text) joined by single spaces.
func NormalizeJoined(text string) string {
	return strings.Join(Normalize(text), " ")
}

// WordCount reports how many normalized words text contains.
func WordCount(text string) int {
	return len(Normalize(text))
}
