// Package text provides the string canonicalization and similarity
// primitives used by the catalog matcher and the fitness scorer.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var romanNumerals = map[string]string{
	"i":    "1",
	"ii":   "2",
	"iii":  "3",
	"iv":   "4",
	"v":    "5",
	"vi":   "6",
	"vii":  "7",
	"viii": "8",
	"ix":   "9",
	"x":    "10",
}

var (
	leadingZeros = regexp.MustCompile(`\b0+(\d)`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize canonicalizes a title or attribute value for comparison:
// lowercase, standalone Roman numerals I..X become decimals, leading zeros
// are stripped from digit runs starting at a word boundary, and everything
// outside [a-z0-9] is dropped. The zero stripping runs before separators are
// removed, so digits glued to letters keep their zeros ("bar01" stays
// "bar01" while "01" becomes "1").
func Normalize(s string) string {
	s = strings.ToLower(s)

	fields := strings.Fields(s)
	for i, f := range fields {
		// Punctuation glued to a numeral ("II.", "IV:") must not hide it,
		// but letters do ("i'm" stays as is).
		core := strings.TrimFunc(f, isNotAlnum)
		if n, ok := romanNumerals[core]; ok {
			fields[i] = strings.Replace(f, core, n, 1)
		}
	}
	s = strings.Join(fields, " ")

	s = leadingZeros.ReplaceAllString(s, "$1")
	return nonAlnum.ReplaceAllString(s, "")
}

func isNotAlnum(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
