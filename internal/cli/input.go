// Package cli is a line-based front-end over an editor session, used for
// debugging and trying the editor features without a GUI.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bastiangx/shohayok/internal/logger"
	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/config"
	"github.com/bastiangx/shohayok/pkg/correct"
	"github.com/bastiangx/shohayok/pkg/dictation"
	"github.com/bastiangx/shohayok/pkg/editor"
	"github.com/bastiangx/shohayok/pkg/fuzzy"
	"github.com/bastiangx/shohayok/pkg/predict"
	"github.com/charmbracelet/log"
	"github.com/cheynewallace/tabby"
)

// errInputClosed ends an interactive correction when stdin runs out.
var errInputClosed = errors.New("input closed")

const helpText = `commands:
  <text>               append text and show suggestions
  :accept N            take popup suggestion N
  :hide                close the popup
  :complete            complete the last word
  :check               spell check the buffer
  :auto                auto-correct unknown words
  :correct             correct unknown words one by one
  :replace FIND REPL   replace every FIND with REPL
  :ocr IMAGE           append text read from an image
  :listen / :stop      start or stop voice typing
  :open PATH / :save [PATH] / :new
  :show / :status / :help / :quit`

// InputHandler reads lines from stdin and turns them into editor
// operations. Plain lines are typed into the buffer; lines starting with
// ':' are commands.
type InputHandler struct {
	session    *editor.Session
	in         io.Reader
	w          io.Writer
	out        *log.Logger
	matcher    *fuzzy.Matcher
	styles     styles
	limit      int
	showScores bool
}

// NewInputHandler creates a handler on stdin and stdout.
func NewInputHandler(session *editor.Session, cfg *config.Config) *InputHandler {
	return NewInputHandlerIO(session, cfg, os.Stdin, os.Stdout)
}

// NewInputHandlerIO creates a handler on the given streams.
func NewInputHandlerIO(session *editor.Session, cfg *config.Config, in io.Reader, out io.Writer) *InputHandler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	matcher, err := fuzzy.New(cfg.Match.Algorithm)
	if err != nil {
		log.Warnf("CLI scores fall back to ratcliff: %v", err)
		matcher = fuzzy.Default
	}
	return &InputHandler{
		session:    session,
		in:         in,
		w:          out,
		out:        logger.NewTo(out, ""),
		matcher:    matcher,
		styles:     defaultStyles(),
		limit:      cfg.CLI.DefaultLimit,
		showScores: cfg.CLI.ShowScores,
	}
}

// Start runs the loop until input ends, :quit is entered or ctx is done.
// Dictation events are applied between lines.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("Shohayok CLI [BETA]")
	h.out.Print("type text and press Enter, :help lists commands (Ctrl+C to exit)")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-h.session.DictationEvents():
			h.applyEvent(ev)
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if quit := h.handleInput(ctx, line, lines); quit {
				return nil
			}
		}
	}
}

func (h *InputHandler) applyEvent(ev dictation.Event) {
	h.session.ApplyEvent(ev)
	switch ev.Kind {
	case dictation.EventTranscript:
		h.out.Print("voice: " + strings.TrimSpace(ev.Text))
	case dictation.EventError:
		h.out.Print(h.styles.misspelled.Render(ev.Text))
	default:
		h.out.Print(h.styles.status.Render(ev.Text))
	}
}

// handleInput runs one line and reports whether the loop should end.
func (h *InputHandler) handleInput(ctx context.Context, line string, lines <-chan string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if !strings.HasPrefix(trimmed, ":") {
		h.typeText(trimmed)
		return false
	}

	cmd, args, _ := strings.Cut(trimmed[1:], " ")
	args = strings.TrimSpace(args)
	start := time.Now()
	defer func() {
		log.Debugf("Took [ %v ] for :%s", time.Since(start), cmd)
	}()

	switch cmd {
	case "q", "quit", "exit":
		return true
	case "help", "h":
		h.out.Print(helpText)
	case "show":
		h.show()
	case "status":
		h.status()
	case "new":
		h.session.NewFile()
		h.status()
	case "open":
		if err := h.session.Open(args); err == nil {
			h.show()
		}
	case "save":
		if err := h.session.Save(args); err != nil {
			h.out.Printf("save failed: %v", err)
		}
	case "check":
		res := h.session.CheckSpelling()
		if !res.OK() {
			h.out.Printf("%d unknown: %s", len(res.Misspelled), strings.Join(res.Misspelled, ", "))
		}
		h.show()
	case "auto":
		h.out.Print(h.session.AutoCorrect())
	case "correct":
		text, err := h.session.ManualCorrect(ctx, h.lineChooser(lines))
		if err != nil {
			h.out.Printf("correction stopped: %v", err)
			return errors.Is(err, errInputClosed)
		}
		h.out.Print(text)
	case "replace":
		find, repl, ok := strings.Cut(args, " ")
		if !ok || find == "" {
			h.out.Print("usage: :replace FIND REPL")
			return false
		}
		n := h.session.FindReplace(find, strings.TrimSpace(repl))
		h.out.Printf("%d replaced", n)
		h.show()
	case "accept":
		h.accept(args)
	case "hide":
		h.session.HidePopup()
	case "complete":
		h.complete()
	case "ocr":
		if err := h.session.ImportImage(ctx, args); err != nil {
			h.out.Printf("ocr failed: %v", err)
			return false
		}
		h.show()
	case "listen":
		if err := h.session.StartDictation(ctx); err != nil {
			h.out.Printf("voice typing: %v", err)
		}
	case "stop":
		h.session.StopDictation()
	default:
		h.out.Printf("unknown command :%s (try :help)", cmd)
	}
	return false
}

// typeText appends a line the way typing it would, then shows what the
// editor would offer after the key release.
func (h *InputHandler) typeText(text string) {
	buf := h.session.Text()
	if buf != "" && !strings.HasSuffix(buf, " ") && !strings.HasSuffix(buf, "\n") {
		text = " " + text
	}
	h.session.Insert(text)
	u := h.session.KeyRelease(predict.Geometry{})

	if u.HasHighlight {
		h.out.Print(renderSpans(h.session.Text(), []utils.Span{u.Highlight}, h.styles.highlight))
	}
	h.printPopup(u.Popup)
}

func (h *InputHandler) printPopup(p predict.Popup) {
	if !p.Visible {
		return
	}
	sentence := predict.LastSentence(h.session.Text())
	for i, item := range p.Items {
		line := fmt.Sprintf("%s %s", h.styles.index.Render(fmt.Sprintf("%2d.", i+1)), h.styles.item.Render(item))
		if h.showScores {
			line += fmt.Sprintf("  (%.2f)", h.matcher.Score(sentence, item))
		}
		h.out.Print(line)
	}
}

func (h *InputHandler) accept(arg string) {
	popup := h.session.Popup()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(popup.Items) {
		h.out.Printf("no suggestion %q", arg)
		return
	}
	u := h.session.AcceptSuggestion(popup.Items[n-1])
	h.out.Print(h.session.Text())
	h.printPopup(u.Popup)
}

func (h *InputHandler) complete() {
	suggestions := h.session.CompleteWord(h.limit)
	if len(suggestions) == 0 {
		h.out.Print("no completions")
		return
	}
	for _, s := range suggestions {
		h.out.Printf("%s %s", h.styles.index.Render(fmt.Sprintf("%2d.", s.Rank)), h.styles.item.Render(s.Word))
	}
}

func (h *InputHandler) show() {
	h.out.Print(renderSpans(h.session.Text(), h.session.Marks(), h.styles.misspelled))
}

func (h *InputHandler) status() {
	st := h.session.Status()
	if st.Text != "" {
		h.out.Print(h.styles.status.Render(st.Text))
	}
	table := tabby.NewCustom(tabwriter.NewWriter(h.w, 0, 0, 2, ' ', 0))
	table.AddLine("path", st.Path)
	table.AddLine("runes", st.Runes)
	table.AddLine("misspelled", st.Misspelled)
	table.AddLine("words", st.Words)
	table.AddLine("sentences", st.Sentences)
	table.AddLine("voice", st.Dictation)
	table.Print()
}

// lineChooser asks on the terminal for each unknown token. A number
// picks a candidate, an empty line keeps the token and anything else is
// used as typed.
func (h *InputHandler) lineChooser(lines <-chan string) correct.Chooser {
	return correct.ChooserFunc(func(ctx context.Context, p correct.Prompt) (correct.Choice, error) {
		h.out.Printf("[%d/%d] %s", p.Index+1, p.Total, h.styles.misspelled.Render(p.Token))
		for i, c := range p.Candidates {
			h.out.Printf("%s %s", h.styles.index.Render(fmt.Sprintf("%2d.", i+1)), h.styles.item.Render(c))
		}
		h.out.Print("number, replacement, or Enter to keep:")

		select {
		case <-ctx.Done():
			return correct.Choice{}, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return correct.Choice{}, errInputClosed
			}
			answer := strings.TrimSpace(line)
			if answer == "" {
				return correct.Choice{Keep: true}, nil
			}
			if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(p.Candidates) {
				return correct.Choice{Text: p.Candidates[n-1]}, nil
			}
			return correct.Choice{Text: answer}, nil
		}
	})
}
