package domain

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CharCount returns the number of characters in s as a user sees them on
// screen: code points of the NFC form, so "é" typed either way counts once.
func CharCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// TruncateChars returns the NFC form of s cut to at most n characters.
func TruncateChars(s string, n int) string {
	s = norm.NFC.String(s)
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
