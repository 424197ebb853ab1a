// Package message cleans model output and composes the final commit line.
package message

import (
	"strings"
	"unicode"
)

// Strictness selects how much of the raw model output survives normalization
type Strictness string

const (
	// Strict keeps only letters, digits, whitespace and hyphens
	Strict Strictness = "strict"
	// QuotesOnly peels wrapping quotes and leaves every other character alone
	QuotesOnly Strictness = "quotes"
)

// ParseStrictness maps a config value to a Strictness, defaulting to Strict
func ParseStrictness(s string) Strictness {
	if Strictness(strings.ToLower(strings.TrimSpace(s))) == QuotesOnly {
		return QuotesOnly
	}
	return Strict
}

const quoteChars = "\"'`"

// Normalize cleans raw model output. Both levels are idempotent.
func Normalize(raw string, strictness Strictness) string {
	s := strings.TrimSpace(raw)

	if strictness == QuotesOnly {
		for {
			unquoted, ok := stripQuotePair(s)
			if !ok {
				return s
			}
			s = strings.TrimSpace(unquoted)
		}
	}

	s, _ = stripQuotePair(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// stripQuotePair removes one matched pair of wrapping quote characters
func stripQuotePair(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	first, last := s[0], s[len(s)-1]
	if first != last || !strings.ContainsRune(quoteChars, rune(first)) {
		return s, false
	}
	return s[1 : len(s)-1], true
}
