package vocab

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lowercases s using full Unicode case mapping.
//
// ASCII input takes the strings.ToLower path, which produces the same
// result without building a Caser.
func Fold(s string) string {
	if isASCII(s) {
		return strings.ToLower(s)
	}
	// A Caser carries state and must not be shared across goroutines.
	return cases.Lower(language.Und).String(s)
}

// Len returns the character length of s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
