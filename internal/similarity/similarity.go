// Package similarity scores how closely two pieces of free-text metadata agree
// on a 0-100 scale.
package similarity

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kana voicing marks decompose to nonspacing marks under NFD but carry meaning,
// so they survive diacritic stripping.
const (
	combiningDakuten    = 0x3099
	combiningHandakuten = 0x309A
)

// Pair is one field of a multi-field comparison.
type Pair struct {
	Source    string // value from the local file
	Candidate string // value from the provider
}

// Normalize folds a string for comparison:
// - strips diacritics
// - lower-cases
// - drops punctuation
// - collapses whitespace
func Normalize(s string) string {
	// transform.Chain keeps state, build one per call so workers can share Normalize.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(isStrippableMark)),
		norm.NFC,
	)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastWasSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func isStrippableMark(r rune) bool {
	if r == combiningDakuten || r == combiningHandakuten {
		return false
	}
	return unicode.Is(unicode.Mn, r)
}

// Similarity returns round(100 * (maxLen - distance) / maxLen) over the
// normalized inputs, where distance is the Levenshtein edit distance in runes.
// Two empty strings are identical.
func Similarity(a, b string) int {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 100
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}

	dist := edlib.LevenshteinDistance(a, b)
	score := int(math.Round(100 * float64(longest-dist) / float64(longest)))
	return min(max(score, 0), 100)
}

// Composite is the unweighted mean of the per-field similarities, rounded.
// A field missing from the source scores 0.
func Composite(pairs ...Pair) int {
	if len(pairs) == 0 {
		return 0
	}

	total := 0
	for _, p := range pairs {
		if strings.TrimSpace(p.Source) == "" {
			continue
		}
		total += Similarity(p.Source, p.Candidate)
	}
	return int(math.Round(float64(total) / float64(len(pairs))))
}
