package domain

import "strings"

// NormalizeName canonicalizes a list or item name before comparison and
// storage: surrounding whitespace is trimmed, internal runs of whitespace
// collapse to a single space, and the result is case-folded. "  Milk " and
// "milk" address the same entity on every operation.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
