package editor

import (
	"fmt"

	"github.com/bastiangx/shohayok/pkg/config"
	"github.com/bastiangx/shohayok/pkg/dictation"
	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/bastiangx/shohayok/pkg/lexicon"
	"github.com/bastiangx/shohayok/pkg/ocr"
)

// FromConfig builds a session with Tesseract OCR and, on first use,
// PortAudio capture with Whisper transcription.
func FromConfig(cfg *config.Config, lex *lexicon.Lexicon, notifier Notifier) (*Session, error) {
	matcher, err := fuzzy.New(cfg.Match.Algorithm)
	if err != nil {
		return nil, err
	}

	importer := ocr.NewImporter(ocr.NewTesseract(), ocr.Options{
		Languages:  cfg.OCR.Languages,
		Preprocess: cfg.OCR.Preprocess,
		Threshold:  uint8(cfg.OCR.Threshold),
	})

	return New(lex, Options{
		Matcher:         matcher,
		WordCutoff:      cfg.Match.WordCutoff,
		SentenceCutoff:  cfg.Match.SentenceCutoff,
		ExactCutoffs:    true,
		MaxResults:      cfg.Match.MaxResults,
		OCR:             importer,
		InlineOCRErrors: cfg.OCR.InlineErrors,
		NewDictation:    func() (*dictation.Service, error) { return NewDictation(cfg.Dictation) },
		Notifier:        notifier,
	}), nil
}

// NewDictation opens the default microphone and the transcription client.
func NewDictation(cfg config.DictationConfig) (*dictation.Service, error) {
	rec, err := dictation.NewWhisperRecognizer(dictation.WhisperOptions{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, err
	}
	mic, err := dictation.NewPortAudioMicrophone(cfg.SampleRate, cfg.PhraseLimit())
	if err != nil {
		return nil, fmt.Errorf("microphone: %w", err)
	}
	return dictation.NewService(mic, rec, dictation.Options{
		Language:    cfg.Language,
		Timeout:     cfg.Timeout(),
		StopKeyword: cfg.StopKeyword,
	}), nil
}
