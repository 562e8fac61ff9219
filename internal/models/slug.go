package models

import (
	"strings"
	"unicode"
)

// Slugify lower-cases title and joins its runs of letters and digits with
// single hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(title string) string {
	var b strings.Builder
	separate := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if separate && b.Len() > 0 {
				b.WriteByte('-')
			}
			separate = false
			b.WriteRune(r)
			continue
		}
		separate = true
	}
	return b.String()
}
