package dictation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when no transcription key is configured.
var ErrNoAPIKey = errors.New("no speech API key: set dictation.api_key or OPENAI_API_KEY")

// WhisperOptions configure the cloud recognizer.
type WhisperOptions struct {
	APIKey  string
	BaseURL string
	Model   string
}

// WhisperRecognizer sends utterances to an OpenAI-compatible
// transcription endpoint.
type WhisperRecognizer struct {
	client *openai.Client
	model  string
}

// NewWhisperRecognizer builds a recognizer. The key falls back to the
// OPENAI_API_KEY environment variable.
func NewWhisperRecognizer(opts WhisperOptions) (*WhisperRecognizer, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}

	cfg := openai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperRecognizer{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (w *WhisperRecognizer) Recognize(ctx context.Context, a *Audio, language string) (string, error) {
	if a == nil || len(a.Samples) == 0 {
		return "", ErrNoSpeech
	}

	tmp, err := os.CreateTemp("", "shohayok-utterance-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := WriteWAV(path, a); err != nil {
		return "", fmt.Errorf("failed to write utterance: %w", err)
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Language: PrimaryLanguage(language),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	log.Debugf("Transcribed %s of audio", a.Duration())
	return text, nil
}

// PrimaryLanguage reduces a BCP 47 tag to its language subtag, "bn-BD" to "bn".
func PrimaryLanguage(tag string) string {
	primary, _, _ := strings.Cut(tag, "-")
	primary, _, _ = strings.Cut(primary, "_")
	return strings.ToLower(strings.TrimSpace(primary))
}
