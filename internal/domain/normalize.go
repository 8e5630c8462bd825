package domain

import (
	"strings"
	"unicode"
)

// NormalizeForm folds a written form for case-insensitive lookup:
// surrounding whitespace is trimmed, letters are lowercased and inner
// whitespace runs collapse to one space. Diacritics and hyphens are kept,
// so "Åsna" and "åsna" match but "asna" does not.
func NormalizeForm(form string) string {
	form = strings.TrimSpace(form)
	if form == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(form))
	prevSpace := false
	for _, r := range form {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
