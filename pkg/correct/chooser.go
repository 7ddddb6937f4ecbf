package correct

import (
	"context"
	"sync"
)

// Prompt is one unknown token offered for correction.
type Prompt struct {
	Token      string   `msgpack:"t"`
	Candidates []string `msgpack:"c"`
	Index      int      `msgpack:"i"`
	Total      int      `msgpack:"n"`
}

// Choice is the answer to a Prompt. Keep, or an empty Text, leaves the
// token unchanged. Text may be a candidate or any free replacement.
type Choice struct {
	Text string
	Keep bool
}

// Chooser decides what an unknown token becomes. Choose blocks until
// an answer is available or ctx ends.
type Chooser interface {
	Choose(ctx context.Context, p Prompt) (Choice, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, p Prompt) (Choice, error)

func (f ChooserFunc) Choose(ctx context.Context, p Prompt) (Choice, error) { return f(ctx, p) }

// Request is a pending prompt waiting for Answer or Keep.
type Request struct {
	Prompt
	reply chan Choice
	once  sync.Once
}

// Answer replies with text. Only the first reply counts.
func (r *Request) Answer(text string) {
	r.send(Choice{Text: text})
}

// Keep replies that the token stays as it is.
func (r *Request) Keep() {
	r.send(Choice{Keep: true})
}

func (r *Request) send(c Choice) {
	r.once.Do(func() {
		r.reply <- c
	})
}

// ChannelChooser hands each prompt to whoever reads Requests and blocks
// the correcting goroutine until it is answered.
type ChannelChooser struct {
	requests chan *Request
}

// NewChannelChooser returns a chooser with an unbuffered request channel.
func NewChannelChooser() *ChannelChooser {
	return &ChannelChooser{requests: make(chan *Request)}
}

// Requests yields prompts as the engine reaches them.
func (c *ChannelChooser) Requests() <-chan *Request {
	return c.requests
}

func (c *ChannelChooser) Choose(ctx context.Context, p Prompt) (Choice, error) {
	req := &Request{Prompt: p, reply: make(chan Choice, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return Choice{}, ctx.Err()
	}
	select {
	case choice := <-req.reply:
		return choice, nil
	case <-ctx.Done():
		return Choice{}, ctx.Err()
	}
}
