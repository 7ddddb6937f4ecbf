// Package suggest completes the word being typed from the lexicon word
// list, using a patricia trie for prefix lookups.
package suggest

// ICompleter defines the interface for word completion engines
type ICompleter interface {
	// Complete returns at most limit words starting with prefix
	Complete(prefix string, limit int) []Suggestion

	// AddWord inserts a word into the completer
	AddWord(word string)

	// Stats returns statistics about the loaded words
	Stats() map[string]int
}

var _ ICompleter = (*Completer)(nil)
