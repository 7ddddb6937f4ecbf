/*
Package server implements msgpack IPC for the editor core.

A front end starts the process and exchanges msgpack messages over
stdin/stdout. Messages are a plain stream of msgpack maps with no extra
framing. Every request carries an id and an action; every outbound
message carries a type so the client can tell responses from prompts
and pushed events.

# IPC

Requests use this structure:

	{"id": "req_001", "a": "set", "text": "আমি ভালো আছি। তুমি কেমন"}
	{"id": "req_002", "a": "key", "geom": {"o": {"x": 10, "y": 40}, "c": {"x": 120, "y": 18, "w": 2, "h": 16}}}

and are answered with a response of the same id:

	{"type": "response", "id": "req_002", "status": "ok", "update": {...}, "t": 212}

# Actions

get, set, open, save, check, auto, replace, key, accept, complete, ocr,
listen, stop and status map one to one onto editor session operations.

correct starts a manual correction pass. For every unknown token the
server sends a prompt

	{"type": "choose", "id": "req_009", "prompt": {"t": "ভালা", "c": ["ভালো"], "i": 1, "n": 4}}

and waits for a choice message with the same id:

	{"id": "req_009", "a": "choice", "choice": "ভালো"}
	{"id": "req_009", "a": "choice", "keep": true}
	{"id": "req_009", "a": "cancel"}

Other requests are rejected while a correction is in progress.

While voice typing is active, dictation output is pushed as events:

	{"type": "event", "kind": "transcript", "text": "আমি ", "session": "..."}

Transcripts are already applied to the buffer when the event is sent.
*/
package server

import (
	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/correct"
	"github.com/bastiangx/shohayok/pkg/editor"
	"github.com/bastiangx/shohayok/pkg/predict"
	"github.com/bastiangx/shohayok/pkg/suggest"
)

// Outbound message types.
const (
	TypeReady    = "ready"
	TypeResponse = "response"
	TypeChoose   = "choose"
	TypeEvent    = "event"
)

// Request - one client message
type Request struct {
	ID       string            `msgpack:"id"`
	Action   string            `msgpack:"a"`
	Text     string            `msgpack:"text,omitempty"`
	Path     string            `msgpack:"path,omitempty"`
	Find     string            `msgpack:"find,omitempty"`
	Replace  string            `msgpack:"replace,omitempty"`
	Selected string            `msgpack:"sel,omitempty"`
	Geometry *predict.Geometry `msgpack:"geom,omitempty"`
	Limit    int               `msgpack:"l,omitempty"`
	Choice   string            `msgpack:"choice,omitempty"`
	Keep     bool              `msgpack:"keep,omitempty"`
}

// Response - answer to one request
type Response struct {
	Type        string               `msgpack:"type"`
	ID          string               `msgpack:"id"`
	Status      string               `msgpack:"status"`
	Error       string               `msgpack:"error,omitempty"`
	Text        *string              `msgpack:"text,omitempty"`
	Misspelled  []string             `msgpack:"misspelled,omitempty"`
	Marks       []utils.Span         `msgpack:"marks,omitempty"`
	Count       int                  `msgpack:"c,omitempty"`
	Update      *predict.Update      `msgpack:"update,omitempty"`
	Suggestions []suggest.Suggestion `msgpack:"s,omitempty"`
	Session     *editor.Status       `msgpack:"session,omitempty"`
	TimeTaken   int64                `msgpack:"t"`
}

// ChooseMessage - correction prompt sent while a correct request runs
type ChooseMessage struct {
	Type   string         `msgpack:"type"`
	ID     string         `msgpack:"id"`
	Prompt correct.Prompt `msgpack:"prompt"`
}

// EventMessage - pushed dictation event
type EventMessage struct {
	Type    string `msgpack:"type"`
	Kind    string `msgpack:"kind"`
	Text    string `msgpack:"text,omitempty"`
	Session string `msgpack:"session"`
}
