// Package names normalizes student names coming from enrollment photo
// directories and CSV exports, which arrive with inconsistent casing,
// separators, and diacritics.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Gül" -> "Gul").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Normalize normalizes a name for comparison (lowercase, no diacritics,
// spaces for dashes and underscores).
func Normalize(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}

// SplitFull splits a directory- or form-style full name into first and
// last name. Everything before the final word is the first name, so
// multi-part given names survive. Single-word names get an empty last name.
func SplitFull(full string) (first, last string) {
	full = strings.ReplaceAll(full, "_", " ")
	full = strings.ReplaceAll(full, "-", " ")
	parts := strings.Fields(full)

	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
