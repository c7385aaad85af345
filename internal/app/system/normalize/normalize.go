// Package normalize canonicalizes user-supplied identifiers before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Group trims and upper-cases a class group letter.
func Group(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Shift trims and lower-cases a shift name.
func Shift(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
