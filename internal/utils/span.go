package utils

import "strings"

// Span is a half-open [Start, End) range of rune offsets into a text.
type Span struct {
	Start int `msgpack:"s"`
	End   int `msgpack:"e"`
}

// Len returns the number of runes covered.
func (s Span) Len() int { return s.End - s.Start }

// FindAll returns every non-overlapping occurrence of sub in text,
// scanning forward from the start. Offsets are in runes.
func FindAll(text, sub string) []Span {
	if sub == "" {
		return nil
	}
	subLen := runeCount(sub)
	var spans []Span
	byteOff, runeOff := 0, 0
	for {
		i := strings.Index(text[byteOff:], sub)
		if i < 0 {
			return spans
		}
		runeOff += runeCount(text[byteOff : byteOff+i])
		spans = append(spans, Span{Start: runeOff, End: runeOff + subLen})
		runeOff += subLen
		byteOff += i + len(sub)
	}
}

// FindLast returns the last occurrence of sub in text.
func FindLast(text, sub string) (Span, bool) {
	if sub == "" {
		return Span{}, false
	}
	i := strings.LastIndex(text, sub)
	if i < 0 {
		return Span{}, false
	}
	start := runeCount(text[:i])
	return Span{Start: start, End: start + runeCount(sub)}, true
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
