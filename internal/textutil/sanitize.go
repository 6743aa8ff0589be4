package textutil

import (
	"strings"
	"unicode"
)

// SanitizeToken turns value into a lowercase token usable as a folder name.
// Text is folded first so "Café Set" becomes "cafe_set"; letters, digits and
// hyphens are kept and every other run of characters collapses to a single
// underscore. Returns "unknown" when nothing usable remains.
func SanitizeToken(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range Fold(strings.TrimSpace(value)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
