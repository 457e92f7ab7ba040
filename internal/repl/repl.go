// Package repl is a line-mode host for a tutoring session. Lines starting
// with a slash are commands; anything else is sent to the tutor.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/lingo/internal/exercise"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/transcript"
)

const helpText = `Commands:
  /mode [conversation|exercise]  switch or toggle the mode
  /lang [name]                   set the language, or list them
  /level [name]                  set the level, or list them
  /feedback [on|off]             set or toggle feedback
  /start                         ask the tutor to open a conversation
  /exercise                      request a vocabulary exercise
  /stats                         show progress
  /help                          show this help
  /quit                          leave
Any other line is sent to the tutor.`

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// REPL reads commands from in and writes the transcript to out.
type REPL struct {
	ctrl    *session.Controller
	out     io.Writer
	printed int
}

// New creates a REPL driving ctrl.
func New(ctrl *session.Controller, out io.Writer) *REPL {
	return &REPL{ctrl: ctrl, out: out}
}

// Run is a shorthand for New(ctrl, out).Run(ctx, in).
func Run(ctx context.Context, ctrl *session.Controller, in io.Reader, out io.Writer) error {
	return New(ctrl, out).Run(ctx, in)
}

// Run processes lines until EOF, /quit or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	st := r.ctrl.State()
	fmt.Fprintf(r.out, "Lingo · %s · %s · %s. Type /help for commands.\n",
		st.Config.Language.Title(), st.Config.Level.Title(), st.Config.Mode.Title())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, r.prompt())
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.Exec(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		r.flush()
		r.report(err)
	}
}

// Exec runs a single input line.
func (r *REPL) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return r.ctrl.SendMessage(ctx, line)
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "mode":
		mode := r.ctrl.State().Config.Mode.Toggle()
		if arg != "" {
			m, err := session.ParseMode(arg)
			if err != nil {
				return err
			}
			mode = m
		}
		if err := r.ctrl.SetMode(mode); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Mode: %s\n", mode.Title())
		return nil
	case "lang", "language":
		if arg == "" {
			r.listLanguages()
			return nil
		}
		l, err := session.ParseLanguage(arg)
		if err != nil {
			return err
		}
		if err := r.ctrl.SetLanguage(l); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Language: %s\n", l.Title())
		return nil
	case "level":
		if arg == "" {
			r.listLevels()
			return nil
		}
		l, err := session.ParseLevel(arg)
		if err != nil {
			return err
		}
		if err := r.ctrl.SetLevel(l); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Level: %s\n", l.Title())
		return nil
	case "feedback":
		enabled := !r.ctrl.State().Config.FeedbackEnabled
		switch strings.ToLower(arg) {
		case "":
		case "on", "true", "yes":
			enabled = true
		case "off", "false", "no":
			enabled = false
		default:
			return fmt.Errorf("feedback: expected on or off, got %q", arg)
		}
		r.ctrl.SetFeedback(enabled)
		fmt.Fprintf(r.out, "Feedback: %s\n", onOff(enabled))
		return nil
	case "start":
		return r.ctrl.StartConversation(ctx)
	case "exercise", "ex":
		return r.ctrl.GetExercise(ctx)
	case "stats":
		r.printStats()
		return nil
	default:
		return fmt.Errorf("unknown command /%s (try /help)", name)
	}
}

func (r *REPL) prompt() string {
	st := r.ctrl.State()
	if ex := st.Exercise; ex != nil {
		return "answer> "
	}
	if st.Config.Mode == session.ModeExercise {
		return "exercise> "
	}
	return "> "
}

// flush prints transcript entries appended since the last flush. The
// learner's own lines are skipped since the terminal already echoed them.
func (r *REPL) flush() {
	n := 0
	for m := range r.ctrl.Messages() {
		n++
		if n <= r.printed {
			continue
		}
		if m.Sender != transcript.SenderUser {
			fmt.Fprintln(r.out, formatMessage(m))
		}
	}
	r.printed = n
}

// report prints err. Remote failures are shown through the session
// notice, which is dismissed once printed.
func (r *REPL) report(err error) {
	if notice := r.ctrl.State().Notice; notice != "" {
		fmt.Fprintf(r.out, "! %s\n", notice)
		r.ctrl.DismissNotice()
		return
	}
	switch {
	case err == nil, errors.Is(err, session.ErrEmptyInput):
	case errors.Is(err, exercise.ErrActive):
		fmt.Fprintln(r.out, "! Answer the current exercise first.")
	case errors.Is(err, session.ErrBusy):
		fmt.Fprintln(r.out, "! Still waiting for the tutor.")
	default:
		fmt.Fprintf(r.out, "! %v\n", err)
	}
}

func (r *REPL) listLanguages() {
	current := r.ctrl.State().Config.Language
	for _, l := range session.Languages() {
		mark := " "
		if l == current {
			mark = "*"
		}
		fmt.Fprintf(r.out, " %s %s\n", mark, l)
	}
}

func (r *REPL) listLevels() {
	current := r.ctrl.State().Config.Level
	for _, l := range session.Levels() {
		mark := " "
		if l == current {
			mark = "*"
		}
		fmt.Fprintf(r.out, " %s %s\n", mark, l)
	}
}

func (r *REPL) printStats() {
	s := r.ctrl.State().Stats
	fmt.Fprintf(r.out, "Graded turns:  %d\n", s.TotalSessions)
	fmt.Fprintf(r.out, "Average score: %d%%\n", s.AverageScore)
}

func formatMessage(m transcript.Message) string {
	var b strings.Builder
	switch m.Sender {
	case transcript.SenderExercise:
		fmt.Fprintf(&b, "[%s] %s", exerciseLabel(m.ExerciseType), m.Text)
		if m.Instructions != "" {
			fmt.Fprintf(&b, "\n  %s", m.Instructions)
		}
	default:
		fmt.Fprintf(&b, "tutor: %s", m.Text)
	}
	if fb := m.Feedback; fb != nil {
		if fb.IsCorrect {
			b.WriteString("\n  ✓ correct")
		} else {
			b.WriteString("\n  ✗ not quite")
		}
		if len(fb.CorrectAnswers) > 0 {
			fmt.Fprintf(&b, " (answers: %s)", strings.Join(fb.CorrectAnswers, ", "))
		}
	}
	return b.String()
}

func exerciseLabel(kind string) string {
	if kind == "" {
		return "exercise"
	}
	return "exercise · " + kind
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
