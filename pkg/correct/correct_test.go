package correct

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/bastiangx/shohayok/pkg/lexicon"
)

func testEngine() *Engine {
	lex := lexicon.FromEntries([]string{"আমি", "ভালো", "আছি", "apple", "ape"}, nil)
	return NewEngine(lex, nil)
}

func TestAuto(t *testing.T) {
	e := testEngine()
	testCases := []struct {
		input string
		want  string
	}{
		{"আমি ভালো আছি", "আমি ভালো আছি"},
		{"আমি ভালা আছি", "আমি ভালো আছি"},
		{"appel  xyz\n", "apple xyz"},
		{"", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := e.Auto(tc.input); got != tc.want {
				t.Errorf("Auto(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// Each unknown token must become exactly the top match, or stay.
func TestAutoAgreesWithMatch(t *testing.T) {
	e := testEngine()
	words := e.Words.Words()
	input := "ভালা appe আমি zzz"
	got := strings.Fields(e.Auto(input))
	for i, tok := range strings.Fields(input) {
		want := tok
		if !e.Words.HasWord(tok) {
			if m := fuzzy.Match(tok, words, 1, DefaultCutoff); len(m) > 0 {
				want = m[0]
			}
		}
		if got[i] != want {
			t.Errorf("token %d: got %q, want %q", i, got[i], want)
		}
	}
}

func TestManualWithChannelChooser(t *testing.T) {
	e := testEngine()
	chooser := NewChannelChooser()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var prompts []Prompt
	go func() {
		for req := range chooser.Requests() {
			prompts = append(prompts, req.Prompt)
			switch req.Token {
			case "ভালা":
				req.Answer(req.Candidates[0])
			case "appel":
				req.Answer("")
			default:
				req.Keep()
			}
		}
	}()

	got, err := e.Manual(ctx, "আমি ভালা xyz appel", chooser)
	if err != nil {
		t.Fatalf("Manual: %v", err)
	}
	if want := "আমি ভালো xyz appel"; got != want {
		t.Errorf("Manual = %q, want %q", got, want)
	}
	if len(prompts) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(prompts))
	}
	if prompts[0].Index != 1 || prompts[0].Total != 4 {
		t.Errorf("prompt position = %d/%d", prompts[0].Index, prompts[0].Total)
	}
	if len(prompts[1].Candidates) != 0 {
		t.Errorf("xyz should have no candidates, got %q", prompts[1].Candidates)
	}
	if len(prompts[2].Candidates) == 0 || prompts[2].Candidates[0] != "apple" {
		t.Errorf("appel candidates = %q", prompts[2].Candidates)
	}
}

func TestManualFreeTextAnswer(t *testing.T) {
	e := testEngine()
	chooser := ChooserFunc(func(_ context.Context, p Prompt) (Choice, error) {
		return Choice{Text: "কলম"}, nil
	})
	got, err := e.Manual(context.Background(), "আমি xyz", chooser)
	if err != nil {
		t.Fatal(err)
	}
	if got != "আমি কলম" {
		t.Errorf("Manual = %q", got)
	}
}

func TestManualCancelled(t *testing.T) {
	e := testEngine()
	chooser := NewChannelChooser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "আমি  ভালা"
	got, err := e.Manual(ctx, input, chooser)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got != input {
		t.Errorf("buffer changed on cancel: %q", got)
	}
}

func TestManualNoUnknownTokens(t *testing.T) {
	e := testEngine()
	chooser := ChooserFunc(func(context.Context, Prompt) (Choice, error) {
		t.Fatal("chooser should not be called")
		return Choice{}, nil
	})
	got, err := e.Manual(context.Background(), "আমি ভালো", chooser)
	if err != nil || got != "আমি ভালো" {
		t.Errorf("Manual = %q, %v", got, err)
	}
}

func TestRequestAnswersOnce(t *testing.T) {
	req := &Request{reply: make(chan Choice, 1)}
	req.Answer("a")
	req.Keep()
	if c := <-req.reply; c.Text != "a" || c.Keep {
		t.Errorf("first reply lost: %+v", c)
	}
}

func TestReplace(t *testing.T) {
	testCases := []struct {
		buffer, find, repl string
		want               string
		n                  int
	}{
		{"  আমি ভালো, তুমি ভালো  ", "ভালো", "খারাপ", "আমি খারাপ, তুমি খারাপ", 2},
		{"abc", "x", "y", "abc", 0},
		{"abc ", "", "y", "abc", 0},
		{"aaa", "aa", "b", "ba", 1},
	}
	for _, tc := range testCases {
		got, n := Replace(tc.buffer, tc.find, tc.repl)
		if got != tc.want || n != tc.n {
			t.Errorf("Replace(%q, %q, %q) = %q, %d; want %q, %d", tc.buffer, tc.find, tc.repl, got, n, tc.want, tc.n)
		}
	}
}
