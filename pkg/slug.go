package pkg

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a lowercase, accent-free, dash separated slug,
// e.g. "Crème Brûlée, Again!" -> "creme-brulee-again"
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	slug, _, err := transform.String(t, s)
	if err != nil {
		slug = s
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = repeatedDashes.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
