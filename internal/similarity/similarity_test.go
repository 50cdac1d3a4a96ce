package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Beyoncé", "beyonce"},
		{"  The   Beatles  ", "the beatles"},
		{"AC/DC", "ac dc"},
		{"Guns N' Roses", "guns n roses"},
		{"Sigur Rós", "sigur ros"},
		{"Hello, World!", "hello world"},
		{"under_score-dash", "under score dash"},
		{"ガガ", "ガガ"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "XG", "XG", 100},
		{"case and accents", "Beyonce", "BEYONCÉ", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"one edit in four", "abcd", "abce", 75},
		{"completely different", "abc", "xyz", 0},
		{"punctuation ignored", "AC/DC", "AC DC", 100},
		{"kitten sitting", "kitten", "sitting", 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Similarity(tt.a, tt.b))
		})
	}
}

func TestComposite(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []Pair
		expected int
	}{
		{
			name:     "no pairs",
			pairs:    nil,
			expected: 0,
		},
		{
			name:     "all fields match",
			pairs:    []Pair{{"XG", "XG"}, {"AWE", "AWE"}},
			expected: 100,
		},
		{
			name:     "missing source field scores zero",
			pairs:    []Pair{{"XG", "XG"}, {"", ""}},
			expected: 50,
		},
		{
			name:     "mean is rounded",
			pairs:    []Pair{{"abcd", "abce"}, {"XG", "XG"}, {"XG", "XG"}},
			expected: 92,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Composite(tt.pairs...))
		})
	}
}

func TestPropertySimilaritySymmetricAndBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		ab := Similarity(a, b)
		ba := Similarity(b, a)
		if ab != ba {
			t.Fatalf("Similarity not symmetric: %d vs %d (a=%q b=%q)", ab, ba, a, b)
		}
		if ab < 0 || ab > 100 {
			t.Fatalf("Similarity out of range: %d (a=%q b=%q)", ab, a, b)
		}
	})
}

func TestPropertySimilarityReflexive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.String().Draw(t, "x")
		if got := Similarity(x, x); got != 100 {
			t.Fatalf("Similarity(%q, %q) = %d, want 100", x, x, got)
		}
	})
}

func TestPropertyNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.String().Draw(t, "x")
		once := Normalize(x)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", x, once, twice)
		}
	})
}
