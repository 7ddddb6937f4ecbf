/*
Package lexicon loads the reference word list and sentence corpus.

Both files are flat UTF-8 text, one entry per line. Blank lines are
dropped and every entry is trimmed and NFC-normalized. The word list
becomes a set; the sentence list keeps file order because neighbouring
lines define which sentence follows which.

Loading fails softly: a missing or unreadable file leaves its collection
empty and is reported through the returned error, while the other file
still loads.
*/
package lexicon

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

// Kind names which list a LoadError refers to.
type Kind string

const (
	KindWords     Kind = "words"
	KindSentences Kind = "sentences"
)

// LoadError describes one list that could not be read.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s from %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Lexicon is the word set plus the ordered sentence corpus.
// It is read-only after construction and safe for concurrent readers.
type Lexicon struct {
	words     mapset.Set[string]
	sentences []string
}

// Stats summarizes a loaded lexicon.
type Stats struct {
	Words     int
	Sentences int
}

// Load reads both lists. The returned lexicon is never nil; err joins a
// *LoadError for every list that failed.
func Load(wordsPath, sentencesPath string) (*Lexicon, error) {
	lex := Empty()
	var errs []error

	words, err := readList(KindWords, wordsPath)
	if err != nil {
		errs = append(errs, err)
	} else {
		for _, w := range words {
			lex.words.Add(w)
		}
	}

	sentences, err := readList(KindSentences, sentencesPath)
	if err != nil {
		errs = append(errs, err)
	} else {
		lex.sentences = sentences
	}

	log.Debugf("Lexicon loaded: words=%d sentences=%d", lex.words.Cardinality(), len(lex.sentences))
	return lex, errors.Join(errs...)
}

func readList(kind Kind, path string) ([]string, error) {
	if path == "" {
		return nil, &LoadError{Kind: kind, Path: path, Err: errors.New("no path configured")}
	}
	lines, err := utils.ReadLines(path)
	if err != nil {
		log.Errorf("Failed to load %s: %v", kind, err)
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}
	return utils.NormalizeAll(lines), nil
}

// Empty returns a lexicon with no words and no sentences.
func Empty() *Lexicon {
	return &Lexicon{words: mapset.NewSet[string]()}
}

// FromEntries builds a lexicon from in-memory lists, applying the same
// trimming and normalization as Load.
func FromEntries(words, sentences []string) *Lexicon {
	lex := Empty()
	for _, w := range clean(words) {
		lex.words.Add(w)
	}
	lex.sentences = clean(sentences)
	return lex
}

func clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := utils.NormalizeText(strings.TrimSpace(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasWord reports whether token is a known word.
func (l *Lexicon) HasWord(token string) bool {
	return l.words.Contains(utils.NormalizeText(token))
}

// Words returns the word set as a sorted slice, so callers that rank
// candidates see the same order on every run.
func (l *Lexicon) Words() []string {
	words := l.words.ToSlice()
	slices.Sort(words)
	return words
}

// Sentences returns a copy of the ordered corpus.
func (l *Lexicon) Sentences() []string {
	return slices.Clone(l.sentences)
}

// WordCount returns the number of distinct words.
func (l *Lexicon) WordCount() int { return l.words.Cardinality() }

// SentenceCount returns the number of corpus lines.
func (l *Lexicon) SentenceCount() int { return len(l.sentences) }

// Stats returns the collection sizes.
func (l *Lexicon) Stats() Stats {
	return Stats{Words: l.WordCount(), Sentences: l.SentenceCount()}
}
