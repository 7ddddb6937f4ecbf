package server

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/config"
	"github.com/bastiangx/shohayok/pkg/correct"
	"github.com/bastiangx/shohayok/pkg/editor"
	"github.com/bastiangx/shohayok/pkg/lexicon"
	"github.com/bastiangx/shohayok/pkg/ocr"
	"github.com/bastiangx/shohayok/pkg/predict"
	"github.com/bastiangx/shohayok/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

// message is the union of every outbound message shape.
type message struct {
	Type        string               `msgpack:"type"`
	ID          string               `msgpack:"id"`
	Status      string               `msgpack:"status"`
	Error       string               `msgpack:"error"`
	Text        *string              `msgpack:"text"`
	Misspelled  []string             `msgpack:"misspelled"`
	Marks       []utils.Span         `msgpack:"marks"`
	Count       int                  `msgpack:"c"`
	Update      *predict.Update      `msgpack:"update"`
	Suggestions []suggest.Suggestion `msgpack:"s"`
	Session     *editor.Status       `msgpack:"session"`
	Prompt      correct.Prompt       `msgpack:"prompt"`
	Kind        string               `msgpack:"kind"`
}

type client struct {
	t   *testing.T
	in  *io.PipeWriter
	enc *msgpack.Encoder
	dec *msgpack.Decoder
}

func (c *client) send(req Request) {
	c.t.Helper()
	if err := c.enc.Encode(req); err != nil {
		c.t.Fatalf("encode request: %v", err)
	}
}

func (c *client) recv() message {
	c.t.Helper()
	var m message
	if err := c.dec.Decode(&m); err != nil {
		c.t.Fatalf("decode message: %v", err)
	}
	return m
}

func (c *client) call(req Request) message {
	c.t.Helper()
	c.send(req)
	m := c.recv()
	if m.ID != req.ID {
		c.t.Fatalf("response id %q, want %q", m.ID, req.ID)
	}
	return m
}

func startServer(t *testing.T) (*client, <-chan error) {
	t.Helper()
	lex := lexicon.FromEntries(
		[]string{"আমি", "ভালো", "আছি", "তুমি", "কেমন", "আছ", "কলম", "কলা"},
		[]string{"আমি ভালো আছি", "তুমি কেমন আছ", "আজ আকাশ মেঘলা"},
	)
	session := editor.New(lex, editor.Options{
		OCR: ocr.NewImporter(ocr.EngineFunc(func(context.Context, string, []string) (string, error) {
			return "ছবি", nil
		}), ocr.Options{}),
	})
	t.Cleanup(func() { session.Close() })

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	t.Cleanup(func() { inW.Close() })
	srv := NewServerIO(session, config.DefaultConfig(), inR, outW)

	done := make(chan error, 1)
	go func() {
		done <- srv.Start(context.Background())
		outW.Close()
	}()

	c := &client{t: t, in: inW, enc: msgpack.NewEncoder(inW), dec: msgpack.NewDecoder(outR)}
	if m := c.recv(); m.Type != TypeReady {
		t.Fatalf("first message = %+v, want ready", m)
	}
	return c, done
}

func TestServerEditing(t *testing.T) {
	c, done := startServer(t)

	if m := c.call(Request{ID: "1", Action: "set", Text: "আমি ভালা আছি। তুমি কেমন"}); m.Status != "ok" {
		t.Fatalf("set: %+v", m)
	}
	if m := c.call(Request{ID: "2", Action: "get"}); m.Text == nil || *m.Text != "আমি ভালা আছি। তুমি কেমন" {
		t.Errorf("get: %+v", m)
	}

	// punctuation stays on the token, so "আছি।" is unknown too
	m := c.call(Request{ID: "3", Action: "check"})
	if m.Count != 2 || m.Misspelled[0] != "ভালা" || m.Misspelled[1] != "আছি।" || len(m.Marks) != 2 {
		t.Errorf("check: %+v", m)
	}

	geom := &predict.Geometry{Origin: predict.Point{X: 10, Y: 20}, Cursor: &predict.Rect{X: 5, Y: 5, H: 10}}
	m = c.call(Request{ID: "4", Action: "key", Geometry: geom})
	if m.Update == nil || !m.Update.Popup.Visible || m.Update.Popup.Items[0] != "তুমি কেমন আছ" {
		t.Fatalf("key: %+v", m.Update)
	}
	if m.Update.Popup.Box.X != 45 || m.Update.Popup.Box.Y != 75 {
		t.Errorf("popup box = %+v", m.Update.Popup.Box)
	}

	m = c.call(Request{ID: "5", Action: "accept", Selected: "তুমি কেমন আছ"})
	if m.Text == nil || *m.Text != "আমি ভালা আছি। তুমি কেমন আছ " {
		t.Errorf("accept: %+v", m)
	}
	if m.Update == nil || m.Update.Popup.Items[0] != "আজ আকাশ মেঘলা" {
		t.Errorf("accept follow-up: %+v", m.Update)
	}

	if m := c.call(Request{ID: "6", Action: "auto"}); m.Text == nil || *m.Text != "আমি ভালো আছি তুমি কেমন আছ" {
		t.Errorf("auto: %+v", m)
	}

	m = c.call(Request{ID: "7", Action: "replace", Find: "আছি", Replace: "ছিলাম"})
	if m.Count != 1 || *m.Text != "আমি ভালো ছিলাম তুমি কেমন আছ" {
		t.Errorf("replace: %+v", m)
	}

	c.call(Request{ID: "8", Action: "set", Text: "আমি কল"})
	m = c.call(Request{ID: "9", Action: "complete", Limit: 5})
	if m.Count != 2 || m.Suggestions[0].Word != "কলম" {
		t.Errorf("complete: %+v", m)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	if m := c.call(Request{ID: "10", Action: "save", Path: path}); m.Status != "ok" {
		t.Errorf("save: %+v", m)
	}
	if m := c.call(Request{ID: "11", Action: "status"}); m.Session == nil || m.Session.Path != path || m.Session.Words != 8 {
		t.Errorf("status: %+v", m.Session)
	}

	if m := c.call(Request{ID: "12", Action: "fly"}); m.Status != "error" {
		t.Errorf("unknown action: %+v", m)
	}
	if m := c.call(Request{ID: "13", Action: "listen"}); m.Status != "error" {
		t.Errorf("listen without dictation: %+v", m)
	}

	c.in.Close()
	if err := <-done; err != nil {
		t.Errorf("Start returned %v", err)
	}
}

func TestServerManualCorrection(t *testing.T) {
	c, _ := startServer(t)
	c.call(Request{ID: "1", Action: "set", Text: "আমি ভালা xyz"})

	c.send(Request{ID: "fix", Action: "correct"})

	p := c.recv()
	if p.Type != TypeChoose || p.ID != "fix" || p.Prompt.Token != "ভালা" || p.Prompt.Candidates[0] != "ভালো" {
		t.Fatalf("first prompt = %+v", p)
	}
	c.send(Request{ID: "fix", Action: "choice", Choice: "ভালো"})

	p = c.recv()
	if p.Type != TypeChoose || p.Prompt.Token != "xyz" {
		t.Fatalf("second prompt = %+v", p)
	}

	if m := c.call(Request{ID: "busy", Action: "get"}); m.Status != "error" {
		t.Errorf("request during correction: %+v", m)
	}

	c.send(Request{ID: "fix", Action: "choice", Keep: true})
	m := c.recv()
	if m.Type != TypeResponse || m.ID != "fix" || m.Text == nil || *m.Text != "আমি ভালো xyz" {
		t.Fatalf("correct response = %+v", m)
	}
}

func TestServerCorrectionCancel(t *testing.T) {
	c, _ := startServer(t)
	c.call(Request{ID: "1", Action: "set", Text: "ভালা"})

	c.send(Request{ID: "fix", Action: "correct"})
	if p := c.recv(); p.Type != TypeChoose {
		t.Fatalf("prompt = %+v", p)
	}
	c.send(Request{ID: "fix", Action: "cancel"})
	if m := c.recv(); m.ID != "fix" || m.Status != "error" {
		t.Errorf("cancel response = %+v", m)
	}
	if m := c.call(Request{ID: "2", Action: "get"}); *m.Text != "ভালা" {
		t.Errorf("buffer after cancel = %q", *m.Text)
	}
}
