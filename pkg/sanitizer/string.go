// Package sanitizer normalizes free-form request fields before validation.
package sanitizer

import "strings"

// TrimAndNormalize trims s and collapses every run of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeCode is for enum-like values such as rule types and currencies.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeID drops surrounding whitespace and lowercases hex object ids so
// "64B7..." and "64b7..." name the same document.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
