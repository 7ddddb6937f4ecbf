package suggest

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is one completion candidate. Rank is its 1-based position.
type Suggestion struct {
	Word string `msgpack:"w"`
	Rank int    `msgpack:"r"`
}

// Completer holds lexicon words in a patricia trie. Safe for concurrent use.
type Completer struct {
	trie       *patricia.Trie
	totalWords int
	maxRunes   int
	mu         sync.RWMutex
}

// NewCompleter returns an empty completer.
func NewCompleter() *Completer {
	return &Completer{trie: patricia.NewTrie()}
}

// FromWords builds a completer over words.
func FromWords(words []string) *Completer {
	c := NewCompleter()
	for _, w := range words {
		c.AddWord(w)
	}
	log.Debugf("Completer built with %d words", c.totalWords)
	return c
}

// AddWord inserts word, normalized. Duplicates are ignored.
func (c *Completer) AddWord(word string) {
	word = utils.NormalizeText(strings.TrimSpace(word))
	if word == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trie.Insert(patricia.Prefix(word), struct{}{}) {
		c.totalWords++
		if n := utf8.RuneCountInString(word); n > c.maxRunes {
			c.maxRunes = n
		}
	}
}

// Complete returns words that extend prefix, shorter words first and
// then in byte order. The prefix itself is never returned.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	prefix = utils.NormalizeText(prefix)
	if prefix == "" || limit <= 0 {
		return nil
	}

	c.mu.RLock()
	var words []string
	err := c.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		if word := string(p); word != prefix {
			words = append(words, word)
		}
		return nil
	})
	c.mu.RUnlock()
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	sort.Slice(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li < lj
		}
		return words[i] < words[j]
	})
	if len(words) > limit {
		words = words[:limit]
	}

	suggestions := make([]Suggestion, len(words))
	for i, w := range words {
		suggestions[i] = Suggestion{Word: w, Rank: i + 1}
	}
	return suggestions
}

// Stats returns word counts for status output.
func (c *Completer) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]int{
		"totalWords": c.totalWords,
		"maxRunes":   c.maxRunes,
	}
}

// CurrentWord returns the token being typed at the end of text, or ""
// when text ends in whitespace.
func CurrentWord(text string) string {
	i := strings.LastIndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text
	}
	_, size := utf8.DecodeRuneInString(text[i:])
	return text[i+size:]
}

// Filter drops suggestions equal to the input or already seen. Used when
// the server's enable_filter option is on.
func Filter(input string, suggestions []Suggestion) []Suggestion {
	if !utils.IsValidInput(input) {
		return nil
	}
	f := utils.NewSuggestionFilter(input)
	out := suggestions[:0]
	for _, s := range suggestions {
		if f.ShouldInclude(s.Word) {
			s.Rank = len(out) + 1
			out = append(out, s)
		}
	}
	return out
}
