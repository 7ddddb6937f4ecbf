/*
Package predict suggests whole sentences from the corpus while the user
types, and the sentences that usually follow once one is accepted.

The predictor does not draw anything. Each call returns an Update that
says what to highlight and where a suggestion popup should be, and the
caller renders it.
*/
package predict

import (
	"strings"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

const (
	// DefaultCutoff is the similarity floor for sentence suggestions.
	DefaultCutoff = 0.3
	// MaxSuggestions caps both fuzzy and next-sentence suggestions.
	MaxSuggestions = 5

	PopupWidth  = 300
	PopupHeight = 150

	offsetX = 30
	offsetY = 40
)

// Point is a screen position.
type Point struct {
	X int `msgpack:"x"`
	Y int `msgpack:"y"`
}

// Rect is a box relative to the text area.
type Rect struct {
	X int `msgpack:"x"`
	Y int `msgpack:"y"`
	W int `msgpack:"w"`
	H int `msgpack:"h"`
}

// Geometry describes where the text area and cursor are on screen.
// Cursor is nil when the cursor position is not visible.
type Geometry struct {
	Origin       Point `msgpack:"o"`
	Cursor       *Rect `msgpack:"c,omitempty"`
	BufferHeight int   `msgpack:"bh"`
}

// Popup is the suggestion box state. A hidden popup has no items.
type Popup struct {
	Visible bool     `msgpack:"v"`
	Items   []string `msgpack:"items,omitempty"`
	Box     Rect     `msgpack:"box"`
}

// Update is what the caller should show after a keystroke or accept.
type Update struct {
	Highlight    utils.Span `msgpack:"hl"`
	HasHighlight bool       `msgpack:"has_hl"`
	Popup        Popup      `msgpack:"popup"`
}

// Predictor matches the current sentence against a sentence corpus.
// It remembers the last geometry so that Accept can place the follow-up
// popup in the same spot.
type Predictor struct {
	corpus  []string
	matcher *fuzzy.Matcher
	cutoff  float64
	max     int
	geom    Geometry
}

// New returns a predictor over corpus. A nil matcher uses fuzzy.Default.
func New(corpus []string, matcher *fuzzy.Matcher) *Predictor {
	if matcher == nil {
		matcher = fuzzy.Default
	}
	return &Predictor{
		corpus:  corpus,
		matcher: matcher,
		cutoff:  DefaultCutoff,
		max:     MaxSuggestions,
	}
}

// SetCutoff changes the similarity floor.
func (p *Predictor) SetCutoff(cutoff float64) { p.cutoff = cutoff }

// SetMaxResults changes how many sentences are suggested, up to MaxSuggestions.
func (p *Predictor) SetMaxResults(n int) {
	if n > 0 && n <= MaxSuggestions {
		p.max = n
	}
}

// Suggest returns corpus sentences close to the current sentence of text.
func (p *Predictor) Suggest(text string) []string {
	sentence := LastSentence(text)
	if sentence == "" || len(p.corpus) == 0 {
		return nil
	}
	return p.matcher.Match(sentence, p.corpus, p.max, p.cutoff)
}

// OnKey is run after every key release.
func (p *Predictor) OnKey(text string, geom Geometry) Update {
	p.geom = geom

	var u Update
	u.Highlight, u.HasHighlight = Highlight(text)

	if items := p.Suggest(text); len(items) > 0 {
		u.Popup = p.popup(items)
	}
	return u
}

// Accept puts selected in place of the current sentence, or appends it
// after a space when there is no current sentence, and ends the text
// with a space. The returned update offers the sentences that follow
// selected in the corpus.
func (p *Predictor) Accept(text, selected string) (string, Update) {
	content := strings.TrimSpace(text)
	sentence := LastSentence(content)

	var updated string
	if sentence != "" && strings.HasSuffix(content, sentence) {
		updated = strings.TrimSuffix(content, sentence) + selected
	} else {
		updated = content + " " + selected
	}
	updated += " "

	var u Update
	if next := NextSentences(p.corpus, selected); len(next) > 0 {
		u.Popup = p.popup(next)
	}
	log.Debugf("Accepted sentence, %d follow-ups", len(u.Popup.Items))
	return updated, u
}

func (p *Predictor) popup(items []string) Popup {
	return Popup{Visible: true, Items: items, Box: Place(p.geom)}
}

// Place positions the popup just below and right of the cursor, or at
// the bottom-left of the text area when the cursor box is unknown.
func Place(g Geometry) Rect {
	if g.Cursor != nil {
		return Rect{
			X: g.Origin.X + g.Cursor.X + offsetX,
			Y: g.Origin.Y + g.Cursor.Y + g.Cursor.H + offsetY,
			W: PopupWidth,
			H: PopupHeight,
		}
	}
	return Rect{X: g.Origin.X, Y: g.Origin.Y + g.BufferHeight, W: PopupWidth, H: PopupHeight}
}
