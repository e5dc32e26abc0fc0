// Package trigram implements the trigram similarity metric of the
// postgres pg_trgm extension, so that stores without the extension
// rank search results the same way.
package trigram

import (
	"strings"
	"unicode"
)

type trigram [3]rune

// Set returns the distinct trigrams of s. The text is lowercased and split
// into words on any non alphanumeric rune; every word is padded with two
// spaces in front and one behind before trigrams are taken.
func Set(s string) map[trigram]struct{} {
	set := make(map[trigram]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := make([]rune, 0, len(w)+3)
		padded = append(padded, ' ', ' ')
		padded = append(padded, []rune(w)...)
		padded = append(padded, ' ')
		for i := 0; i+3 <= len(padded); i++ {
			set[trigram{padded[i], padded[i+1], padded[i+2]}] = struct{}{}
		}
	}
	return set
}

// Similarity is the number of shared trigrams divided by the number of
// distinct trigrams of both strings, in [0, 1].
func Similarity(a, b string) float64 {
	setA, setB := Set(a), Set(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(setA)+len(setB)-shared)
}
