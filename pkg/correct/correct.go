// Package correct replaces unknown tokens with lexicon words, either
// automatically or by asking a Chooser for each one.
package correct

import (
	"context"
	"strings"

	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

const (
	// DefaultCutoff is the similarity floor for spelling candidates.
	DefaultCutoff = 0.6
	// DefaultCandidates caps the candidates offered per token.
	DefaultCandidates = 5
)

// Lexicon is what the engine reads from the word list.
type Lexicon interface {
	HasWord(token string) bool
	Words() []string
}

// Engine corrects whitespace-separated tokens against a word list.
type Engine struct {
	Words         Lexicon
	Matcher       *fuzzy.Matcher
	Cutoff        float64
	MaxCandidates int
}

// NewEngine returns an engine with default cutoff and candidate count.
// A nil matcher uses fuzzy.Default.
func NewEngine(words Lexicon, matcher *fuzzy.Matcher) *Engine {
	if matcher == nil {
		matcher = fuzzy.Default
	}
	return &Engine{
		Words:         words,
		Matcher:       matcher,
		Cutoff:        DefaultCutoff,
		MaxCandidates: DefaultCandidates,
	}
}

// Auto swaps every unknown token for its single best match, keeping
// tokens with no match. The result is rejoined with single spaces.
func (e *Engine) Auto(buffer string) string {
	tokens := strings.Fields(buffer)
	words := e.Words.Words()
	changed := 0

	for i, tok := range tokens {
		if e.Words.HasWord(tok) {
			continue
		}
		if best := e.Matcher.Match(tok, words, 1, e.Cutoff); len(best) > 0 {
			log.Debugf("Auto-correct %q -> %q", tok, best[0])
			tokens[i] = best[0]
			changed++
		}
	}

	log.Debugf("Auto-correct replaced %d of %d tokens", changed, len(tokens))
	return strings.Join(tokens, " ")
}

// Candidates returns up to MaxCandidates words close to token.
func (e *Engine) Candidates(token string) []string {
	return e.Matcher.Match(token, e.Words.Words(), e.MaxCandidates, e.Cutoff)
}

// Manual asks chooser about each unknown token in order. A kept or
// empty answer leaves the token as is. If ctx ends or the chooser fails
// the buffer is returned unchanged along with the error.
func (e *Engine) Manual(ctx context.Context, buffer string, chooser Chooser) (string, error) {
	tokens := strings.Fields(buffer)
	words := e.Words.Words()

	for i, tok := range tokens {
		if e.Words.HasWord(tok) {
			continue
		}
		prompt := Prompt{
			Token:      tok,
			Candidates: e.Matcher.Match(tok, words, e.MaxCandidates, e.Cutoff),
			Index:      i,
			Total:      len(tokens),
		}
		choice, err := chooser.Choose(ctx, prompt)
		if err != nil {
			log.Debugf("Manual correction aborted at %q: %v", tok, err)
			return buffer, err
		}
		if !choice.Keep && choice.Text != "" {
			tokens[i] = choice.Text
		}
	}
	return strings.Join(tokens, " "), nil
}

// Replace substitutes every literal occurrence of find in the trimmed
// buffer and returns the new text with the number of replacements.
func Replace(buffer, find, replacement string) (string, int) {
	text := strings.TrimSpace(buffer)
	if find == "" {
		return text, 0
	}
	n := strings.Count(text, find)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, find, replacement), n
}
