package utils

import (
	"strings"
	"unicode"
)

// Bengali block boundaries.
const (
	bengaliFirst = '\u0980'
	bengaliLast  = '\u09FF'
)

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}

// IsBengali reports whether r belongs to the Bengali script block.
func IsBengali(r rune) bool {
	return r >= bengaliFirst && r <= bengaliLast
}

// ContainsBengali checks if any rune of s is Bengali.
func ContainsBengali(s string) bool {
	return strings.IndexFunc(s, IsBengali) >= 0
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits.
// Bengali digits (০-৯) count as digits.
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks if a string contains special characters.
// Combining marks are letters for this purpose: Bengali vowel signs and
// the hasanta are Mn/Mc and appear inside almost every word.
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsValidInput checks if a prefix should be processed for completions.
// Returns false for strings that are only numbers or contain special characters.
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) {
		return false
	}
	return !ContainsSpecialChars(s)
}
