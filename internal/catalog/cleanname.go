package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanName reduces a card name to the catalog's clean_name form: diacritics
// removed, hyphens turned into spaces, any other character that is not a
// letter, digit or space dropped, whitespace collapsed. Case is preserved.
//
//	CleanName("Jötun Grunt")          == "Jotun Grunt"
//	CleanName("Borrowing 100,000 Arrows") == "Borrowing 100000 Arrows"
//	CleanName("Will-o'-the-Wisp")     == "Will o the Wisp"
func CleanName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == '-':
			b.WriteRune(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
