package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

var nonWordRe = regexp.MustCompile(`\W+`)

// Slug derives the identity slug for a name prefix: extended characters are
// transliterated to their closest ASCII equivalents, non-word characters are
// stripped and the result is lower-cased. Slugs are used purely for
// uniqueness, never for display.
func Slug(prefix string) string {
	ascii := unidecode.Unidecode(prefix)
	s := nonWordRe.ReplaceAllString(ascii, "")
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Slug is the identity slug of the name's prefix.
func (n Name) Slug() string {
	return Slug(n.Prefix)
}
