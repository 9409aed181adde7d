package validation

import (
	"strings"
	"unicode"
)

// SanitizeDescription trims and strips non-printable characters from
// user-supplied free text (descriptions, counterparty names, notes) before it
// reaches the database.
func SanitizeDescription(s string) string {
	return strings.TrimSpace(StripUnprintable(s))
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
