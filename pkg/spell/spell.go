// Package spell flags buffer tokens that are not in the word list.
package spell

import (
	"strings"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

// WordSet is the membership test the checker needs. *lexicon.Lexicon
// satisfies it.
type WordSet interface {
	HasWord(token string) bool
}

// Result lists misspelled tokens and where they appear in the buffer.
type Result struct {
	// Misspelled holds each unknown token once, in first-appearance order.
	Misspelled []string
	// Marks are rune spans of every occurrence of every misspelled token.
	Marks []utils.Span
}

// OK reports whether nothing was flagged.
func (r Result) OK() bool { return len(r.Misspelled) == 0 }

// Tokens splits a buffer on whitespace. Punctuation stays attached, so
// "আমি।" and "আমি" are different tokens.
func Tokens(buffer string) []string {
	return strings.Fields(buffer)
}

// Check runs the spell check over buffer. A nil or empty word set flags
// every token. Marks come from a plain substring scan, so a misspelled
// token is also marked where it occurs inside a longer word.
func Check(buffer string, words WordSet) Result {
	var res Result
	seen := mapset.NewThreadUnsafeSet[string]()

	for _, tok := range Tokens(buffer) {
		if seen.Contains(tok) {
			continue
		}
		if words != nil && words.HasWord(tok) {
			continue
		}
		seen.Add(tok)
		res.Misspelled = append(res.Misspelled, tok)
		res.Marks = append(res.Marks, utils.FindAll(buffer, tok)...)
	}

	log.Debugf("Spell check: %d misspelled, %d marks", len(res.Misspelled), len(res.Marks))
	return res
}
