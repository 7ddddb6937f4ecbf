package predict

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/shohayok/internal/utils"
)

// Terminators end a sentence fragment. The comma counts so that a
// clause is suggested as soon as it starts.
const Terminators = "।,?!"

// LastSentence returns the trimmed fragment after the last terminator
// of the trimmed text. It is empty when the text ends with a terminator.
func LastSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndexAny(text, Terminators); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		text = text[i+size:]
	}
	return strings.TrimSpace(text)
}

// Highlight locates the current sentence in the trimmed text, as a rune
// span of its last occurrence.
func Highlight(text string) (utils.Span, bool) {
	sentence := LastSentence(text)
	if sentence == "" {
		return utils.Span{}, false
	}
	return utils.FindLast(strings.TrimSpace(text), sentence)
}

// NextSentences returns the corpus entries that directly follow each
// entry equal to sentence, in corpus order, at most MaxSuggestions.
// Repeated sentences fan out to every successor.
func NextSentences(corpus []string, sentence string) []string {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" || len(corpus) == 0 {
		return nil
	}
	var next []string
	for i := 0; i+1 < len(corpus) && len(next) < MaxSuggestions; i++ {
		if strings.TrimSpace(corpus[i]) == sentence {
			next = append(next, corpus[i+1])
		}
	}
	return next
}
