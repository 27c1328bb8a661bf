package market

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ligatures and letters that have no decomposition under NFD
var asciiFold = strings.NewReplacer(
	"œ", "oe",
	"æ", "ae",
	"ß", "ss",
	"ø", "o",
	"ł", "l",
	"đ", "d",
)

// Slug builds the provider locality key: "Montluçon", "03100" -> "montlucon-03100".
func Slug(city, zip string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := asciiFold.Replace(strings.ToLower(city))
	folded, _, err := transform.String(t, lower)
	if err != nil {
		folded = lower
	}

	var b strings.Builder
	b.Grow(len(folded) + len(zip) + 1)
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	b.WriteByte('-')
	b.WriteString(zip)
	return b.String()
}
