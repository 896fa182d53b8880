// Package postcode canonicalizes and validates UK postcodes.
package postcode

import (
	"regexp"
	"strings"
	"unicode"
)

var ukPostcodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][0-9A-Z]?\s?[0-9][A-Z]{2}$`)

// Normalize uppercases raw, drops everything that is not a letter or digit and
// splits the outward and inward codes with a single space. Inputs shorter than
// five characters after stripping are returned stripped but unsplit.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}

	stripped := b.String()
	if len(stripped) < 5 {
		return stripped
	}
	return stripped[:len(stripped)-3] + " " + stripped[len(stripped)-3:]
}

// IsValidFormat reports whether pc matches the UK postcode grammar.
func IsValidFormat(pc string) bool {
	return ukPostcodeRe.MatchString(pc)
}
