// Package normkey computes the canonical comparison keys used for duplicate
// detection. A key is insensitive to whitespace, character width, and case:
// all whitespace (including ideographic space) is removed, full-width
// alphanumerics are folded to half-width, and the result is lower-cased.
package normkey

import (
	"strings"
	"unicode"
)

// Key normalizes a name or address into its comparison key. Normalizing an
// already-normalized key returns the same key.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(foldWidth(r)))
	}
	return b.String()
}

// foldWidth maps full-width alphanumerics (０-９, Ａ-Ｚ, ａ-ｚ) to their
// half-width equivalents. Other runes pass through unchanged.
func foldWidth(r rune) rune {
	switch {
	case r >= '０' && r <= '９',
		r >= 'Ａ' && r <= 'Ｚ',
		r >= 'ａ' && r <= 'ｚ':
		return r - 0xFEE0
	default:
		return r
	}
}

// Trim canonicalizes a display value: surrounding whitespace removed, the
// value otherwise untouched.
func Trim(s string) string {
	return strings.TrimSpace(s)
}
