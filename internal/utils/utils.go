package utils

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// GetMaskedWord hides every word character behind "_ " and keeps the rest,
// so "Lee Sin" becomes "_ _ _  _ _ _".
func GetMaskedWord(word string) string {
	if word == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(word) * 2)
	for _, r := range word {
		if isWordChar(r) {
			b.WriteString("_ ")
		} else {
			b.WriteRune(r)
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// isWordChar matches the ASCII \w class.
func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// StripNonAlphanumeric drops everything except letters, digits and whitespace.
func StripNonAlphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// SampleWithReplacement draws n independent picks from pool. The same element
// can come up more than once. Returns nil for an empty pool.
func SampleWithReplacement[T any](rng *rand.Rand, pool []T, n int) []T {
	if len(pool) == 0 || n <= 0 {
		return nil
	}

	out := make([]T, 0, n)
	for range n {
		out = append(out, pool[rng.IntN(len(pool))])
	}
	return out
}
