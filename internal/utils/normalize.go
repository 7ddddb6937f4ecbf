package utils

import "golang.org/x/text/unicode/norm"

// NormalizeText brings Bengali text to NFC so composed and decomposed
// spellings (e.g. য় as one code point or as য + nukta) compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// NormalizeAll normalizes every entry in place and returns the slice.
func NormalizeAll(items []string) []string {
	for i, s := range items {
		items[i] = norm.NFC.String(s)
	}
	return items
}
