/*
Package editor holds the state of one editing session: the buffer, the
loaded lexicon, the suggestion popup, the status line and the dictation
and OCR services, with one method per editor operation.

A Session is meant to be driven by a single owner goroutine. Its mutex
only makes reads from other goroutines safe; it does not serialize
operations. Dictation output reaches the buffer solely through
ApplyEvent, called by the owner for each value from DictationEvents.
*/
package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/correct"
	"github.com/bastiangx/shohayok/pkg/dictation"
	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/bastiangx/shohayok/pkg/lexicon"
	"github.com/bastiangx/shohayok/pkg/ocr"
	"github.com/bastiangx/shohayok/pkg/predict"
	"github.com/bastiangx/shohayok/pkg/spell"
	"github.com/bastiangx/shohayok/pkg/suggest"
	"github.com/charmbracelet/log"
)

// ErrNoPath is returned by Save when neither an argument nor the
// session has a file path.
var ErrNoPath = errors.New("no file path")

// Notice titles and texts shown to the user.
const (
	titleError     = "Error"
	titleSpelling  = "বানান পরিক্ষা"
	titleWordCheck = "শব্দ পরিক্ষা"
	titleAuto      = "স্বয়ংক্রিয় সংশোধন"
	titleManual    = "ভূল শব্দ পরিবর্তন"
	titleReplace   = "পরিবর্তন"
	titleVoice     = "Voice Typing"
	msgSpellingOK  = "অভিনন্দন! কোন ভূল শব্দ পাওয়া যায় নি"
	msgSpellingBad = "দুঃখিত! ভূল বানান খুঁজে পাওয়া গেছে। লাল রঙ করা শব্দ গুলো ভূল বানান বলে বিবেচিত হয়েছে"
	msgAutoDone    = "স্বয়ংক্রিয় সংশোধন সম্পূর্ন হয়েছে"
	msgManualDone  = "ভূল শব্দ গুলো সঠিক ভাবে পরিবর্তিত হয়েছে "
	msgVoiceActive = "Voice typing is already active."
	statusNewFile  = "New file opened."
	statusVoiceOn  = "Voice Typing Started. Say 'stop' to stop."
	statusVoiceOff = "Voice Typing Stopped."
)

// Options wire a session to its services. Nil services are replaced by
// defaults where one exists.
type Options struct {
	Matcher        *fuzzy.Matcher
	WordCutoff     float64
	SentenceCutoff float64
	// ExactCutoffs uses both cutoffs as given, zero included. Otherwise
	// a zero cutoff keeps the default.
	ExactCutoffs bool
	MaxResults   int

	OCR *ocr.Importer
	// InlineOCRErrors inserts "Error: ..." text into the buffer instead
	// of returning OCR failures.
	InlineOCRErrors bool

	// Dictation is created on first use when nil.
	Dictation    *dictation.Service
	NewDictation func() (*dictation.Service, error)

	Notifier Notifier
}

// Status is a snapshot for status bars and the status request.
type Status struct {
	Text       string `msgpack:"text"`
	Path       string `msgpack:"path"`
	Words      int    `msgpack:"words"`
	Sentences  int    `msgpack:"sentences"`
	Dictation  string `msgpack:"dictation"`
	Misspelled int    `msgpack:"misspelled"`
	Runes      int    `msgpack:"runes"`
}

// Session is one editor instance.
type Session struct {
	mu sync.RWMutex

	buf        string
	path       string
	status     string
	marks      []utils.Span
	misspelled int
	highlight  utils.Span
	hasHL      bool
	popup      predict.Popup

	lex       *lexicon.Lexicon
	engine    *correct.Engine
	predictor *predict.Predictor
	completer suggest.ICompleter

	importer  *ocr.Importer
	inlineOCR bool

	dict    *dictation.Service
	newDict func() (*dictation.Service, error)

	notify Notifier
}

// New returns a session with an empty buffer. A nil lexicon is empty.
func New(lex *lexicon.Lexicon, opts Options) *Session {
	if lex == nil {
		lex = lexicon.Empty()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}

	engine := correct.NewEngine(lex, opts.Matcher)
	if opts.WordCutoff > 0 || opts.ExactCutoffs {
		engine.Cutoff = opts.WordCutoff
	}
	if opts.MaxResults > 0 {
		engine.MaxCandidates = min(opts.MaxResults, predict.MaxSuggestions)
	}

	predictor := predict.New(lex.Sentences(), opts.Matcher)
	if opts.SentenceCutoff > 0 || opts.ExactCutoffs {
		predictor.SetCutoff(opts.SentenceCutoff)
	}
	predictor.SetMaxResults(opts.MaxResults)

	importer := opts.OCR
	if importer == nil {
		importer = ocr.NewImporter(nil, ocr.Options{})
	}

	return &Session{
		lex:       lex,
		engine:    engine,
		predictor: predictor,
		completer: suggest.FromWords(lex.Words()),
		importer:  importer,
		inlineOCR: opts.InlineOCRErrors,
		dict:      opts.Dictation,
		newDict:   opts.NewDictation,
		notify:    opts.Notifier,
	}
}

// Text returns the buffer.
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf
}

// SetText replaces the buffer.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = text
	s.marks, s.misspelled = nil, 0
}

// Insert appends text at the end of the buffer.
func (s *Session) Insert(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf += text
	s.marks, s.misspelled = nil, 0
}

// NewFile clears the buffer and forgets the file path.
func (s *Session) NewFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf, s.path, s.marks, s.misspelled = "", "", nil, 0
	s.popup = predict.Popup{}
	s.status = statusNewFile
}

// Open loads a UTF-8 file into the buffer. On failure the buffer is untouched.
func (s *Session) Open(path string) error {
	text, err := utils.ReadTextFile(path)
	if err != nil {
		s.notify.Error(titleError, fmt.Sprintf("Failed to open file: %v", err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf, s.path, s.marks, s.misspelled = text, path, nil, 0
	s.status = "Opened file: " + filepath.Base(path)
	return nil
}

// Save writes the trimmed buffer to path, or to the session's path when
// path is empty.
func (s *Session) Save(path string) error {
	s.mu.RLock()
	if path == "" {
		path = s.path
	}
	content := strings.TrimSpace(s.buf)
	s.mu.RUnlock()

	if path == "" {
		return ErrNoPath
	}
	if err := utils.WriteTextFile(path, content); err != nil {
		s.notify.Error(titleError, fmt.Sprintf("Failed to save file: %v", err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.status = "File saved: " + filepath.Base(path)
	return nil
}

// CheckSpelling flags unknown tokens and remembers their marks.
func (s *Session) CheckSpelling() spell.Result {
	s.mu.Lock()
	res := spell.Check(s.buf, s.lex)
	s.marks = res.Marks
	s.misspelled = len(res.Misspelled)
	s.mu.Unlock()

	if res.OK() {
		s.notify.Info(titleWordCheck, msgSpellingOK)
	} else {
		s.notify.Info(titleSpelling, msgSpellingBad)
	}
	return res
}

// Marks returns the spans flagged by the last spell check.
func (s *Session) Marks() []utils.Span {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks
}

// AutoCorrect replaces every unknown token with its best match.
func (s *Session) AutoCorrect() string {
	s.mu.Lock()
	s.buf = s.engine.Auto(strings.TrimSpace(s.buf))
	s.marks, s.misspelled = nil, 0
	text := s.buf
	s.mu.Unlock()

	s.notify.Info(titleAuto, msgAutoDone)
	return text
}

// ManualCorrect asks chooser about each unknown token. The buffer is
// only replaced when the whole pass completes.
func (s *Session) ManualCorrect(ctx context.Context, chooser correct.Chooser) (string, error) {
	text := strings.TrimSpace(s.Text())
	corrected, err := s.engine.Manual(ctx, text, chooser)
	if err != nil {
		return s.Text(), err
	}

	s.mu.Lock()
	s.buf = corrected
	s.marks, s.misspelled = nil, 0
	s.mu.Unlock()

	s.notify.Info(titleManual, msgManualDone)
	return corrected, nil
}

// FindReplace replaces every occurrence of find and returns the count.
func (s *Session) FindReplace(find, replacement string) int {
	s.mu.Lock()
	text, n := correct.Replace(s.buf, find, replacement)
	s.buf = text
	s.marks, s.misspelled = nil, 0
	s.mu.Unlock()

	s.notify.Info(titleReplace, fmt.Sprintf("বাংলা শব্দ '%s' থেকে '%s'পরিবর্তিত হয়েছে", find, replacement))
	return n
}

// KeyRelease refreshes the highlight and the sentence popup.
func (s *Session) KeyRelease(geom predict.Geometry) predict.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.predictor.OnKey(s.buf, geom)
	s.highlight, s.hasHL = u.Highlight, u.HasHighlight
	s.popup = u.Popup
	return u
}

// Highlight returns the current sentence span from the last key release.
func (s *Session) Highlight() (utils.Span, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlight, s.hasHL
}

// AcceptSuggestion applies a popup choice and opens the follow-up popup.
func (s *Session) AcceptSuggestion(selected string) predict.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, u := s.predictor.Accept(s.buf, selected)
	s.buf = text
	s.marks, s.misspelled = nil, 0
	s.popup = u.Popup
	return u
}

// Popup returns the current popup state.
func (s *Session) Popup() predict.Popup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.popup
}

// HidePopup dismisses the popup.
func (s *Session) HidePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = predict.Popup{}
}

// CompleteWord suggests completions for the word at the end of the buffer.
func (s *Session) CompleteWord(limit int) []suggest.Suggestion {
	word := suggest.CurrentWord(s.Text())
	if word == "" {
		return nil
	}
	return s.completer.Complete(word, limit)
}

// ImportImage runs OCR on an image and appends the text on a new line.
// With inline errors on, a failure is appended as "Error: ..." text and
// nil is returned.
func (s *Session) ImportImage(ctx context.Context, path string) error {
	var text string
	if s.inlineOCR {
		text = s.importer.Extract(ctx, path)
	} else {
		var err error
		text, err = s.importer.ExtractErr(ctx, path)
		if err != nil {
			s.notify.Error(titleError, fmt.Sprintf("Failed to extract text: %v", err))
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf += "\n" + text
	s.marks, s.misspelled = nil, 0
	s.status = "Imported text from " + filepath.Base(path)
	return nil
}

func (s *Session) dictation() (*dictation.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dict != nil {
		return s.dict, nil
	}
	if s.newDict == nil {
		return nil, dictation.ErrUnavailable
	}
	d, err := s.newDict()
	if err != nil {
		return nil, err
	}
	s.dict = d
	return d, nil
}

// StartDictation starts voice typing. ctx bounds the whole session.
func (s *Session) StartDictation(ctx context.Context) error {
	d, err := s.dictation()
	if err != nil {
		s.notify.Error(titleVoice, fmt.Sprintf("Voice typing unavailable: %v", err))
		return err
	}
	if err := d.Start(ctx); err != nil {
		if errors.Is(err, dictation.ErrAlreadyActive) {
			s.notify.Info(titleVoice, msgVoiceActive)
		}
		return err
	}
	s.setStatus(statusVoiceOn)
	return nil
}

// StopDictation stops voice typing after the current utterance.
func (s *Session) StopDictation() {
	s.mu.RLock()
	d := s.dict
	s.mu.RUnlock()
	if d != nil {
		d.Stop()
	}
	s.setStatus(statusVoiceOff)
}

// DictationEvents returns the dictation event stream, or nil before
// dictation was first started. Receiving from nil blocks, so owners can
// select on it unconditionally and fetch it again after starting.
func (s *Session) DictationEvents() <-chan dictation.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dict == nil {
		return nil
	}
	return s.dict.Events()
}

// ApplyEvent folds one dictation event into the session.
func (s *Session) ApplyEvent(ev dictation.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case dictation.EventTranscript:
		s.buf += ev.Text
		s.marks, s.misspelled = nil, 0
	case dictation.EventStatus, dictation.EventError:
		s.status = ev.Text
	case dictation.EventStopped:
		s.status = statusVoiceOff
	default:
		log.Warnf("Unknown dictation event %q", ev.Kind)
	}
}

func (s *Session) setStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Text:       s.status,
		Path:       s.path,
		Words:      s.lex.WordCount(),
		Sentences:  s.lex.SentenceCount(),
		Dictation:  dictation.Idle.String(),
		Misspelled: s.misspelled,
		Runes:      len([]rune(s.buf)),
	}
	if s.dict != nil {
		st.Dictation = s.dict.State().String()
	}
	return st
}

// Close stops dictation and releases the microphone.
func (s *Session) Close() error {
	s.mu.RLock()
	d := s.dict
	s.mu.RUnlock()
	if d != nil {
		return d.Close()
	}
	return nil
}
