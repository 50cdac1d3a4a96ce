// Package romaji detects Japanese text written in Latin letters and renders
// it back into kana so a failed search can be retried in the original script.
package romaji

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Script identifies one rendering of a field.
type Script string

// Renderings produced for a phonetic-Latin field. Hiragana is the "soft"
// rendering and katakana the "hard" one.
const (
	ScriptOriginal Script = "original"
	ScriptHiragana Script = "hiragana"
	ScriptKatakana Script = "katakana"
)

// MethodOriginal is the method id of the unmodified query.
const MethodOriginal = "original"

// longest syllable in the table, in runes
const maxChunk = 3

var macrons = strings.NewReplacer(
	"ā", "aa", "ī", "ii", "ū", "uu", "ē", "ei", "ō", "ou",
	"â", "aa", "î", "ii", "û", "uu", "ê", "ei", "ô", "ou",
)

// IsPhoneticLatin reports whether text contains at least one Latin letter and
// no kana or kanji.
func IsPhoneticLatin(text string) bool {
	hasLatin := false
	for _, r := range norm.NFKC.String(text) {
		if isJapanese(r) {
			return false
		}
		if unicode.Is(unicode.Latin, r) {
			hasLatin = true
		}
	}
	return hasLatin
}

func isJapanese(r rune) bool {
	return unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) ||
		r == 0x30FC || // prolonged sound mark
		r == 0x3005 // iteration mark
}

// ToHiragana segments romanized text into hiragana by greedy longest match
// (3, then 2, then 1 characters). Characters that match no syllable pass
// through unchanged. ok is true only when at least one syllable matched and
// no Latin letter was left over.
func ToHiragana(text string) (string, bool) {
	src := []rune(macrons.Replace(strings.ToLower(norm.NFKC.String(text))))

	var b strings.Builder
	matched := false
	leftover := false

	for i := 0; i < len(src); {
		r := src[i]
		if !isASCIILetter(r) {
			b.WriteRune(r)
			i++
			continue
		}

		// Sokuon: a doubled consonant, or "tch", becomes a small tsu.
		if i+1 < len(src) && (src[i+1] == r && isGeminate(r) || r == 't' && hasPrefixAt(src, i+1, "ch")) {
			b.WriteString(hiraganaSmallTsu)
			i++
			continue
		}

		if kana, n := longestSyllable(src, i); n > 0 {
			b.WriteString(kana)
			i += n
			matched = true
			continue
		}

		if r == 'n' {
			b.WriteString(hiraganaN)
			i++
			switch {
			case i < len(src) && src[i] == '\'':
				i++
			case i < len(src) && src[i] == 'n' && (i+1 == len(src) || !isVowelOrY(src[i+1])):
				i++
			}
			matched = true
			continue
		}

		b.WriteRune(r)
		leftover = true
		i++
	}

	return b.String(), matched && !leftover
}

// ToKatakana is ToHiragana followed by a hiragana to katakana shift. A hyphen
// right after kana becomes the prolonged sound mark.
func ToKatakana(text string) (string, bool) {
	hira, ok := ToHiragana(text)
	return hiraganaToKatakana(hira), ok
}

func hiraganaToKatakana(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 0x3041 && r <= 0x3096:
			out[i] = r + 0x60
		case r == '-' && i > 0 && isKatakana(out[i-1]):
			out[i] = prolongedMark
		}
	}
	return string(out)
}

func isKatakana(r rune) bool {
	return r >= 0x30A1 && r <= 0x30FC
}

func longestSyllable(src []rune, i int) (string, int) {
	for n := min(maxChunk, len(src)-i); n > 0; n-- {
		if kana, ok := syllables[string(src[i:i+n])]; ok {
			return kana, n
		}
	}
	return "", 0
}

func hasPrefixAt(src []rune, i int, prefix string) bool {
	p := []rune(prefix)
	if i+len(p) > len(src) {
		return false
	}
	for j := range p {
		if src[i+j] != p[j] {
			return false
		}
	}
	return true
}

func isVowelOrY(r rune) bool {
	return strings.ContainsRune("aeiouy", r)
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// isGeminate reports whether a doubled r is written with a small tsu.
func isGeminate(r rune) bool {
	return strings.ContainsRune("bcdfghjkmpqrstvwz", r)
}
