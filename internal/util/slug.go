package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymTail   = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	nonSlug       = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns a file name or title into a lowercase, hyphen-separated
// token usable as a file name: "Sales Q3 (Final).csv" -> "sales-q3-final-csv".
// Accents are folded to their base letters.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := acronymTail.ReplaceAllString(b.String(), "$1-$2")
	out = camelBoundary.ReplaceAllString(out, "$1-$2")
	out = nonSlug.ReplaceAllString(strings.ToLower(out), "-")
	return strings.Trim(out, "-")
}
