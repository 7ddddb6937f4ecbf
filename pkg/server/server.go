package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/shohayok/pkg/config"
	"github.com/bastiangx/shohayok/pkg/correct"
	"github.com/bastiangx/shohayok/pkg/dictation"
	"github.com/bastiangx/shohayok/pkg/editor"
	"github.com/bastiangx/shohayok/pkg/predict"
	"github.com/bastiangx/shohayok/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for one editor session. The goroutine running
// Start owns the session; a second goroutine only decodes requests.
type Server struct {
	session *editor.Session
	config  *config.Config

	dec *msgpack.Decoder
	enc *msgpack.Encoder
	out *bufio.Writer
	wmu sync.Mutex

	requestCount int
}

// NewServer creates a server on stdin/stdout.
func NewServer(session *editor.Session, cfg *config.Config) *Server {
	return NewServerIO(session, cfg, os.Stdin, os.Stdout)
}

// NewServerIO creates a server on the given streams.
func NewServerIO(session *editor.Session, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := bufio.NewWriter(w)
	return &Server{
		session: session,
		config:  cfg,
		dec:     msgpack.NewDecoder(bufio.NewReader(r)),
		enc:     msgpack.NewEncoder(out),
		out:     out,
	}
}

// Start serves requests until the input ends or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests := make(chan Request)
	readErr := make(chan error, 1)
	go s.read(ctx, requests, readErr)

	s.send(Response{Type: TypeReady, Status: "ready"})

	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return <-readErr
			}
			s.handleRequest(ctx, req, requests)
		case ev := <-s.session.DictationEvents():
			s.applyEvent(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) read(ctx context.Context, requests chan<- Request, readErr chan<- error) {
	defer close(requests)
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				readErr <- nil
			} else {
				log.Errorf("Reading request: %v", err)
				readErr <- err
			}
			return
		}
		select {
		case requests <- req:
		case <-ctx.Done():
			readErr <- ctx.Err()
			return
		}
	}
}

// send encodes one message. Writes are serialized.
func (s *Server) send(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		log.Errorf("Encoding message: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing message: %v", err)
	}
}

func (s *Server) sendError(id, message string) {
	s.send(Response{Type: TypeResponse, ID: id, Status: "error", Error: message})
}

func (s *Server) applyEvent(ev dictation.Event) {
	s.session.ApplyEvent(ev)
	s.send(EventMessage{Type: TypeEvent, Kind: string(ev.Kind), Text: ev.Text, Session: ev.Session})
}

func text(s string) *string { return &s }

func (s *Server) handleRequest(ctx context.Context, req Request, requests <-chan Request) {
	s.requestCount++
	start := time.Now()
	resp := Response{Type: TypeResponse, ID: req.ID, Status: "ok"}
	var err error

	switch req.Action {
	case "get":
		resp.Text = text(s.session.Text())
	case "set":
		s.session.SetText(req.Text)
	case "new":
		s.session.NewFile()
	case "open":
		if err = s.session.Open(req.Path); err == nil {
			resp.Text = text(s.session.Text())
		}
	case "save":
		err = s.session.Save(req.Path)
	case "check":
		res := s.session.CheckSpelling()
		resp.Misspelled, resp.Marks, resp.Count = res.Misspelled, res.Marks, len(res.Misspelled)
	case "auto":
		resp.Text = text(s.session.AutoCorrect())
	case "correct":
		var corrected string
		if corrected, err = s.correct(ctx, req.ID, requests); err == nil {
			resp.Text = text(corrected)
		}
	case "replace":
		resp.Count = s.session.FindReplace(req.Find, req.Replace)
		resp.Text = text(s.session.Text())
	case "key":
		var geom predict.Geometry
		if req.Geometry != nil {
			geom = *req.Geometry
		}
		u := s.session.KeyRelease(geom)
		resp.Update = &u
	case "accept":
		u := s.session.AcceptSuggestion(req.Selected)
		resp.Update = &u
		resp.Text = text(s.session.Text())
	case "hide":
		s.session.HidePopup()
	case "complete":
		resp.Suggestions = s.complete(req.Limit)
		resp.Count = len(resp.Suggestions)
	case "ocr":
		if err = s.session.ImportImage(ctx, req.Path); err == nil {
			resp.Text = text(s.session.Text())
		}
	case "listen":
		err = s.session.StartDictation(ctx)
	case "stop":
		s.session.StopDictation()
	case "status":
		st := s.session.Status()
		resp.Session = &st
	case "choice", "cancel":
		err = errors.New("no correction in progress")
	default:
		err = fmt.Errorf("unknown action: %q", req.Action)
	}

	if err != nil {
		log.Debugf("Request %s (%s) failed: %v", req.ID, req.Action, err)
		s.sendError(req.ID, err.Error())
		return
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.send(resp)
}

func (s *Server) complete(limit int) []suggest.Suggestion {
	if limit <= 0 {
		limit = s.config.CLI.DefaultLimit
	}
	if s.config.Server.MaxLimit > 0 && limit > s.config.Server.MaxLimit {
		limit = s.config.Server.MaxLimit
	}
	suggestions := s.session.CompleteWord(limit)
	if s.config.Server.EnableFilter {
		suggestions = suggest.Filter(suggest.CurrentWord(s.session.Text()), suggestions)
	}
	return suggestions
}

// correct runs a manual correction pass in its own goroutine and relays
// its prompts to the client. Dictation events that arrive meanwhile are
// held back and applied once the pass has written the buffer.
func (s *Server) correct(ctx context.Context, id string, requests <-chan Request) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chooser := correct.NewChannelChooser()
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.session.ManualCorrect(ctx, chooser)
		done <- result{text, err}
	}()

	var pending *correct.Request
	var held []dictation.Event
	defer func() {
		for _, ev := range held {
			s.applyEvent(ev)
		}
	}()

	for {
		select {
		case r := <-chooser.Requests():
			pending = r
			s.send(ChooseMessage{Type: TypeChoose, ID: id, Prompt: r.Prompt})
		case req, ok := <-requests:
			if !ok {
				requests = nil
				cancel()
				continue
			}
			switch {
			case req.ID == id && req.Action == "cancel":
				cancel()
			case req.ID == id && req.Action == "choice" && pending != nil:
				if req.Keep {
					pending.Keep()
				} else {
					pending.Answer(req.Choice)
				}
				pending = nil
			default:
				s.sendError(req.ID, "correction in progress")
			}
		case ev := <-s.session.DictationEvents():
			held = append(held, ev)
		case res := <-done:
			return res.text, res.err
		}
	}
}
