package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFC-less form and drops combining marks,
// so "Peón" becomes "Peon" instead of losing the rune entirely.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a stable identifier from a display name: lowercase,
// diacritics stripped, whitespace collapsed to single hyphens, everything
// outside [a-z0-9-_] removed. Item and member IDs are slugs of their names.
func Slugify(name string) string {
	flattened, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		flattened = name
	}

	lower := strings.ToLower(strings.TrimSpace(flattened))

	var b strings.Builder
	b.Grow(len(lower))
	lastHyphen := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
