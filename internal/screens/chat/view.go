package chat

import (
	"fmt"
	"iter"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/transcript"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

func (s *ChatScreen) View(width, height int) string {
	top := renderControls(s.state, width)
	if !layout.IsCompactHeight(height) {
		top += "\n" + renderProgress(s.state, width)
	}

	var bottom []string
	if s.state.Notice != "" {
		bottom = append(bottom, theme.Notice.Render("! "+s.state.Notice))
	}
	if s.state.Loading() {
		bottom = append(bottom, s.spinner.View()+" "+theme.Hint.Render(pendingLabel(s.state.Pending)))
	} else if s.state.Phase() == session.PhaseExerciseActive {
		bottom = append(bottom, theme.Hint.Render("Type your answer and press Enter."))
	}
	s.input.SetWidth(width - 4)
	bottom = append(bottom, s.input.View())
	footer := strings.Join(bottom, "\n")

	logHeight := height - lipgloss.Height(top) - lipgloss.Height(footer) - 2
	if logHeight < 1 {
		logHeight = 1
	}
	log := renderTranscript(s.ctrl.Messages(), width, logHeight)

	return top + "\n\n" + log + "\n" + footer
}

// renderControls draws the mode tabs and the current selection.
func renderControls(st session.State, width int) string {
	active := 0
	if st.Config.Mode == session.ModeExercise {
		active = 1
	}
	tabs := components.Tabs{
		Labels: []string{session.ModeConversation.Title(), session.ModeExercise.Title()},
		Active: active,
	}.View()

	feedback := "off"
	if st.Config.FeedbackEnabled {
		feedback = "on"
	}
	text := fmt.Sprintf("%s · %s · feedback %s", st.Config.Language.Title(), st.Config.Level.Title(), feedback)
	if layout.IsCompactWidth(width) {
		// The header already names the language and level.
		text = "feedback " + feedback
	}
	info := theme.Hint.Render(text)

	gap := width - lipgloss.Width(tabs) - lipgloss.Width(info)
	if gap < 1 {
		return tabs + "\n" + info
	}
	return tabs + strings.Repeat(" ", gap) + info
}

// renderProgress draws the running score.
func renderProgress(st session.State, width int) string {
	stats := st.Stats
	summary := theme.Body.Render(fmt.Sprintf("Turns %d   Mastered %d   ", stats.TotalSessions, stats.VocabularyMastered))
	bar := components.NewProgressBar("Score", stats.ScoreFraction(), true, width-lipgloss.Width(summary))
	return summary + bar.View()
}

// renderTranscript draws the newest messages that fit in height.
func renderTranscript(msgs iter.Seq[transcript.Message], width, height int) string {
	var blocks []string
	for m := range msgs {
		blocks = append(blocks, renderMessage(m, width))
	}
	if len(blocks) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Foreground(theme.TextDim).
			Render("  No messages yet. Say hello, press Ctrl+S for a conversation starter,\n  or switch to Exercises with Tab.")
	}

	// Keep the tail that fits.
	used := 0
	first := len(blocks)
	for i := len(blocks) - 1; i >= 0; i-- {
		h := lipgloss.Height(blocks[i])
		if used+h > height && first < len(blocks) {
			break
		}
		used += h
		first = i
	}
	return strings.Join(blocks[first:], "\n")
}

// renderMessage draws one transcript entry.
func renderMessage(m transcript.Message, width int) string {
	wrap := lipgloss.NewStyle().Width(width - 2)

	switch m.Sender {
	case transcript.SenderUser:
		return theme.UserLabel.Render("You") + "\n" + wrap.Render(theme.Body.Render(m.Text))

	case transcript.SenderExercise:
		var b strings.Builder
		b.WriteString(theme.Selected.Render("Exercise"))
		if m.ExerciseType != "" {
			b.WriteString(theme.Hint.Render(" · " + m.ExerciseType))
		}
		b.WriteString("\n" + theme.Body.Render(m.Text))
		if m.Instructions != "" {
			b.WriteString("\n" + theme.Hint.Render(m.Instructions))
		}
		return theme.ExerciseCard.Width(width - 2).Render(b.String())

	default:
		out := theme.TutorLabel.Render("Tutor") + "\n" + wrap.Render(theme.Body.Render(m.Text))
		if m.Feedback != nil {
			out += "\n" + renderFeedback(*m.Feedback)
		}
		return out
	}
}

func renderFeedback(fb transcript.Feedback) string {
	if fb.IsCorrect {
		return theme.Correct.Render("✓ Correct")
	}
	out := theme.Incorrect.Render("✗ Not quite")
	if len(fb.CorrectAnswers) > 0 {
		out += theme.Hint.Render("  answer: " + strings.Join(fb.CorrectAnswers, ", "))
	}
	return out
}

func pendingLabel(r session.Request) string {
	switch r {
	case session.RequestStart:
		return "Starting a conversation..."
	case session.RequestExercise:
		return "Fetching an exercise..."
	default:
		return "Waiting for the tutor..."
	}
}
