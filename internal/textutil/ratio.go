package textutil

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the sequence similarity 2*M/T of a and b, where M is the number
// of matching runes and T the total rune count. Two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := splitRunes(a), splitRunes(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ra, rb).Ratio()
}

// WordsRatio compares two word sequences after joining them with spaces.
func WordsRatio(a, b []string) float64 {
	return Ratio(joinWords(a), joinWords(b))
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func joinWords(words []string) string {
	n := 0
	for _, w := range words {
		n += len(w) + 1
	}
	buf := make([]byte, 0, n)
	for i, w := range words {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, w...)
	}
	return string(buf)
}
