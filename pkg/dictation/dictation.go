/*
Package dictation turns speech into buffer text.

A Service runs at most one worker goroutine. The worker calibrates the
microphone once, then repeatedly captures an utterance and sends it to a
Recognizer until it is stopped, hears the stop keyword, or hits an
unrecoverable error. Transcripts are never written to the buffer
directly; they are delivered on Events and the buffer owner applies them.
*/
package dictation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrAlreadyActive is returned by Start while a session is listening.
	ErrAlreadyActive = errors.New("voice typing is already active")
	// ErrNoSpeech means nothing intelligible was heard. The worker keeps listening.
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrUnavailable means no audio backend is compiled in.
	ErrUnavailable = errors.New("audio capture unavailable")
)

const (
	DefaultLanguage    = "bn-BD"
	DefaultTimeout     = 5 * time.Second
	DefaultStopKeyword = "stop"
	calibrateFor       = time.Second
	eventBuffer        = 32
)

// State is the service state.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// EventKind tells the buffer owner what to do with an Event.
type EventKind string

const (
	// EventTranscript carries text to append to the buffer.
	EventTranscript EventKind = "transcript"
	// EventStatus carries status line text.
	EventStatus EventKind = "status"
	// EventError carries the error that ended a session.
	EventError EventKind = "error"
	// EventStopped is sent once when a session's worker exits.
	EventStopped EventKind = "stopped"
)

// Event is one message from the worker.
type Event struct {
	Kind    EventKind
	Session string
	Text    string
	Err     error
	Time    time.Time
}

// Audio is one captured utterance of 16-bit mono PCM.
type Audio struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the length of the utterance.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(a.Samples)) * time.Second / time.Duration(a.SampleRate)
}

// Microphone captures utterances.
type Microphone interface {
	// Calibrate measures ambient noise for d to set the speech threshold.
	Calibrate(ctx context.Context, d time.Duration) error
	// Listen waits up to timeout for speech to start and returns the
	// utterance once it ends. No speech within timeout is ErrNoSpeech.
	Listen(ctx context.Context, timeout time.Duration) (*Audio, error)
	Close() error
}

// Recognizer converts an utterance to text. Unintelligible audio is ErrNoSpeech.
type Recognizer interface {
	Recognize(ctx context.Context, audio *Audio, language string) (string, error)
}

// Options configure a Service. Zero values take the defaults.
type Options struct {
	Language    string
	Timeout     time.Duration
	StopKeyword string
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.StopKeyword == "" {
		o.StopKeyword = DefaultStopKeyword
	}
	return o
}

// Service is the dictation state machine. Safe for concurrent use.
type Service struct {
	mic    Microphone
	rec    Recognizer
	opts   Options
	events chan Event

	mu      sync.Mutex
	state   State
	session string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewService returns an idle service.
func NewService(mic Microphone, rec Recognizer, opts Options) *Service {
	return &Service{
		mic:    mic,
		rec:    rec,
		opts:   opts.withDefaults(),
		events: make(chan Event, eventBuffer),
	}
}

// Events delivers worker output in order. It is shared by all sessions.
func (s *Service) Events() <-chan Event {
	return s.events
}

// State returns the current state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the id of the current or last session.
func (s *Service) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Start begins listening. If a stopped worker is still finishing its
// last capture, Start waits for it so only one worker ever runs.
// The worker lives until stopped or until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Listening {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	prev := s.done
	s.mu.Unlock()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Listening {
		return ErrAlreadyActive
	}

	wctx, cancel := context.WithCancel(ctx)
	s.state = Listening
	s.session = uuid.NewString()
	s.cancel = cancel
	s.done = make(chan struct{})

	log.Debugf("Dictation session %s started", s.session)
	go s.run(wctx, s.session, s.done)
	return nil
}

// Stop asks the worker to finish after its current utterance. Stopping
// an idle service does nothing.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	s.state = Idle
	log.Debugf("Dictation session %s stopping", s.session)
}

// Close stops the service, abandons any capture in progress and waits
// for the worker to exit. The microphone is closed as well.
func (s *Service) Close() error {
	s.mu.Lock()
	s.state = Idle
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if s.mic != nil {
		return s.mic.Close()
	}
	return nil
}

func (s *Service) listening(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Listening && s.session == session
}

func (s *Service) finish(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == session {
		s.state = Idle
		if s.cancel != nil {
			s.cancel()
		}
	}
}

func (s *Service) run(ctx context.Context, session string, done chan struct{}) {
	defer close(done)
	defer func() {
		s.finish(session)
		s.emit(ctx, Event{Kind: EventStopped, Session: session, Text: "Voice typing stopped."})
	}()

	if err := s.mic.Calibrate(ctx, calibrateFor); err != nil {
		s.fail(ctx, session, err)
		return
	}

	for s.listening(session) {
		s.emit(ctx, Event{Kind: EventStatus, Session: session, Text: "Listening for voice input..."})

		text, err := s.capture(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, ErrNoSpeech) {
				log.Debugf("Dictation: %v", err)
				s.emit(ctx, Event{Kind: EventStatus, Session: session, Text: "Could not understand audio."})
				continue
			}
			s.fail(ctx, session, err)
			return
		}

		s.emit(ctx, Event{Kind: EventTranscript, Session: session, Text: text + " "})
		if strings.Contains(strings.ToLower(text), strings.ToLower(s.opts.StopKeyword)) {
			log.Debugf("Dictation: stop keyword heard")
			return
		}
	}
}

func (s *Service) capture(ctx context.Context) (string, error) {
	audio, err := s.mic.Listen(ctx, s.opts.Timeout)
	if err != nil {
		return "", err
	}
	return s.rec.Recognize(ctx, audio, s.opts.Language)
}

func (s *Service) fail(ctx context.Context, session string, err error) {
	log.Errorf("Dictation stopped: %v", err)
	s.emit(ctx, Event{Kind: EventError, Session: session, Text: "Voice typing error: " + err.Error(), Err: err})
}

// emit blocks until the event is taken or ctx ends, so transcripts are
// not dropped while the owner is busy.
func (s *Service) emit(ctx context.Context, ev Event) {
	ev.Time = time.Now()
	select {
	case s.events <- ev:
	case <-ctx.Done():
		select {
		case s.events <- ev:
		default:
			log.Debugf("Dictation event dropped after cancel: %s", ev.Kind)
		}
	}
}
