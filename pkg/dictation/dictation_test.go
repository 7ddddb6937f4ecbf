package dictation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeMic struct {
	mu        sync.Mutex
	calErr    error
	listenErr []error
	listens   int
	gate      chan struct{}
	calGate   chan struct{}
	entered   chan struct{}
	closed    bool
}

func (m *fakeMic) Calibrate(ctx context.Context, _ time.Duration) error {
	if m.calGate != nil {
		select {
		case <-m.calGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.calErr
}

func (m *fakeMic) Listen(ctx context.Context, _ time.Duration) (*Audio, error) {
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	i := m.listens
	m.listens++
	m.mu.Unlock()

	if i < len(m.listenErr) && m.listenErr[i] != nil {
		return nil, m.listenErr[i]
	}
	return &Audio{Samples: []int16{1, 2, 3}, SampleRate: 16000}, nil
}

func (m *fakeMic) captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listens
}

func (m *fakeMic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type step struct {
	text string
	err  error
}

// fakeRecognizer replays steps, then reports no speech forever.
type fakeRecognizer struct {
	mu    sync.Mutex
	steps []step
	langs []string
}

func (r *fakeRecognizer) Recognize(ctx context.Context, _ *Audio, lang string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs = append(r.langs, lang)
	if len(r.steps) == 0 {
		time.Sleep(time.Millisecond)
		return "", ErrNoSpeech
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	return s.text, s.err
}

// drain collects events until the session's stopped event.
func drain(t *testing.T, svc *Service) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			events = append(events, ev)
			if ev.Kind == EventStopped {
				return events
			}
		case <-timeout:
			t.Fatalf("no stopped event, got %d events", len(events))
			return nil
		}
	}
}

func transcripts(events []Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Kind == EventTranscript {
			out = append(out, ev.Text)
		}
	}
	return out
}

func hasKind(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestStopKeyword(t *testing.T) {
	rec := &fakeRecognizer{steps: []step{{text: "আমি"}, {text: "ভালো"}, {text: "ok STOP now"}}}
	svc := NewService(&fakeMic{}, rec, Options{})

	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := drain(t, svc)

	got := transcripts(events)
	want := []string{"আমি ", "ভালো ", "ok STOP now "}
	if len(got) != len(want) {
		t.Fatalf("transcripts = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transcript %d = %q, want %q", i, got[i], want[i])
		}
	}
	if svc.State() != Idle {
		t.Errorf("state = %v after stop keyword", svc.State())
	}
	if rec.langs[0] != "bn-BD" {
		t.Errorf("language = %q", rec.langs[0])
	}
	for _, ev := range events {
		if ev.Session != svc.Session() {
			t.Errorf("event from session %q, want %q", ev.Session, svc.Session())
		}
	}
}

func TestNoSpeechContinues(t *testing.T) {
	mic := &fakeMic{listenErr: []error{ErrNoSpeech}}
	rec := &fakeRecognizer{steps: []step{{err: ErrNoSpeech}, {text: "stop"}}}
	svc := NewService(mic, rec, Options{})

	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := drain(t, svc)

	if got := transcripts(events); len(got) != 1 || got[0] != "stop " {
		t.Errorf("transcripts = %q", got)
	}
	if hasKind(events, EventError) {
		t.Error("no-speech must not end the session with an error")
	}
	unclear := 0
	for _, ev := range events {
		if ev.Kind == EventStatus && ev.Text == "Could not understand audio." {
			unclear++
		}
	}
	if unclear != 2 {
		t.Errorf("expected 2 no-speech statuses, got %d", unclear)
	}
}

func TestRecognizerErrorStops(t *testing.T) {
	boom := errors.New("network unreachable")
	rec := &fakeRecognizer{steps: []step{{text: "এক"}, {err: boom}, {text: "never"}}}
	svc := NewService(&fakeMic{}, rec, Options{})

	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := drain(t, svc)

	if got := transcripts(events); len(got) != 1 || got[0] != "এক " {
		t.Errorf("transcripts = %q", got)
	}
	var errEv *Event
	for i := range events {
		if events[i].Kind == EventError {
			errEv = &events[i]
		}
	}
	if errEv == nil || !errors.Is(errEv.Err, boom) {
		t.Fatalf("expected error event wrapping %v, got %+v", boom, errEv)
	}
	if svc.State() != Idle {
		t.Errorf("state = %v", svc.State())
	}
}

func TestCalibrationFailure(t *testing.T) {
	svc := NewService(&fakeMic{calErr: ErrUnavailable}, &fakeRecognizer{}, Options{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := drain(t, svc)
	if !hasKind(events, EventError) || hasKind(events, EventTranscript) {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestStartStop(t *testing.T) {
	mic := &fakeMic{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	svc := NewService(mic, &fakeRecognizer{steps: []step{{text: "শেষ কথা"}}}, Options{})

	svc.Stop()
	if svc.State() != Idle {
		t.Fatal("Stop on idle service changed state")
	}

	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := svc.Session()
	if err := svc.Start(context.Background()); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("second Start: expected ErrAlreadyActive, got %v", err)
	}
	if svc.Session() != first {
		t.Error("rejected Start replaced the session")
	}

	select {
	case <-mic.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started capturing")
	}

	// the capture in flight finishes after Stop and is still delivered
	svc.Stop()
	svc.Stop()
	if svc.State() != Idle {
		t.Fatal("state should be idle right after Stop")
	}
	close(mic.gate)

	events := drain(t, svc)
	if got := transcripts(events); len(got) != 1 || got[0] != "শেষ কথা " {
		t.Errorf("transcripts = %q", got)
	}
	if n := mic.captures(); n != 1 {
		t.Errorf("worker kept listening after Stop: %d captures", n)
	}
}

func TestStopBeforeFirstCapture(t *testing.T) {
	mic := &fakeMic{calGate: make(chan struct{})}
	svc := NewService(mic, &fakeRecognizer{steps: []step{{text: "কথা"}}}, Options{})

	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.Stop()
	close(mic.calGate)

	events := drain(t, svc)
	if got := transcripts(events); len(got) != 0 {
		t.Errorf("transcripts = %q", got)
	}
	if n := mic.captures(); n != 0 {
		t.Errorf("captured %d times after Stop", n)
	}
}

func TestCloseAbandonsCapture(t *testing.T) {
	mic := &fakeMic{gate: make(chan struct{})}
	svc := NewService(mic, &fakeRecognizer{}, Options{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan error)
	go func() { done <- svc.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	if !mic.closed {
		t.Error("microphone not closed")
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Language != "bn-BD" || o.Timeout != 5*time.Second || o.StopKeyword != "stop" {
		t.Errorf("defaults = %+v", o)
	}
}
