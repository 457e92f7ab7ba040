package chat

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/exercise"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/settings"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
)

// ChatScreen implements screen.Screen for a tutoring session.
type ChatScreen struct {
	ctrl    *session.Controller
	changes chan struct{}
	state   session.State
	input   components.TextInput
	spinner spinner.Model
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen bound to ctrl. The screen subscribes for the
// lifetime of the program.
func New(ctrl *session.Controller) *ChatScreen {
	s := &ChatScreen{
		ctrl:    ctrl,
		changes: make(chan struct{}, 1),
		state:   ctrl.State(),
		input:   components.NewTextInput("Type a message...", 500),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	ctrl.Subscribe(func(session.State) {
		// Coalesce: the screen re-reads State() when it wakes up.
		select {
		case s.changes <- struct{}{}:
		default:
		}
	})
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	return tea.Batch(
		s.input.Init(),
		s.waitForChange(),
	)
}

func (s *ChatScreen) Title() string {
	return s.state.Config.Mode.Title()
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Mode"},
	}
	if s.state.Config.Mode == session.ModeConversation {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Start"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+E", Description: "Exercise"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "Ctrl+F", Description: "Feedback"},
		layout.KeyHint{Key: "Ctrl+L", Description: "Settings"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
	return hints
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		wasLoading := s.state.Loading()
		s.state = s.ctrl.State()
		cmds := []tea.Cmd{s.waitForChange()}
		if s.state.Loading() && !wasLoading {
			cmds = append(cmds, s.spinner.Tick)
		}
		return s, tea.Batch(cmds...)

	case requestDoneMsg:
		// Failures are already on State.Notice; refresh in case the
		// change notification has not been delivered yet.
		s.state = s.ctrl.State()
		if msg.Unsent != "" && s.input.Value() == "" {
			s.input.SetValue(msg.Unsent)
		}
		return s, nil

	case router.ResumedMsg:
		s.state = s.ctrl.State()
		return s, nil

	case spinner.TickMsg:
		if !s.state.Loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return s.send()

	case "tab":
		_ = s.ctrl.SetMode(s.state.Config.Mode.Toggle())
		return s, nil

	case "ctrl+s":
		if !s.state.CanStartConversation() {
			return s, nil
		}
		return s, s.request("start conversation", s.ctrl.StartConversation)

	case "ctrl+e":
		if !s.state.CanGetExercise() {
			return s, nil
		}
		return s, s.request("get exercise", s.ctrl.GetExercise)

	case "ctrl+f":
		s.ctrl.SetFeedback(!s.state.Config.FeedbackEnabled)
		return s, nil

	case "ctrl+l":
		return s, router.Push(settings.New(s.ctrl))

	case "ctrl+n":
		s.ctrl.DismissNotice()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// send submits the input line. The line is kept when sending is not
// possible so nothing the learner typed is lost. The cached state may lag
// the controller, so the check reads it fresh.
func (s *ChatScreen) send() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if strings.TrimSpace(text) == "" || !s.ctrl.State().CanSend() {
		return s, nil
	}
	s.input.Reset()
	return s, func() tea.Msg {
		err := s.ctrl.SendMessage(context.Background(), text)
		if errors.Is(err, session.ErrBusy) {
			return requestDoneMsg{Op: "send message", Unsent: text}
		}
		return requestDoneMsg{Op: "send message", Err: err}
	}
}

// request runs fn off the UI loop.
func (s *ChatScreen) request(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		if errors.Is(err, session.ErrBusy) || errors.Is(err, exercise.ErrActive) {
			err = nil
		}
		return requestDoneMsg{Op: op, Err: err}
	}
}

// waitForChange blocks until the controller reports a change.
func (s *ChatScreen) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-s.changes
		return stateChangedMsg{}
	}
}
