// Package screen defines the contract between the router and the views
// it stacks: the chat session at the bottom, settings pushed on top.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/ui/layout"
)

// Screen is one view in the router stack.
type Screen interface {
	Init() tea.Cmd

	// Update handles a message routed to the active screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the area between the session header and the key hint
	// footer, sized to width x height.
	View(width, height int) string

	// Title is shown on the left of the header, e.g. the practice mode.
	Title() string
}

// KeyHintProvider is implemented by screens whose footer differs from
// DefaultKeyHints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// DefaultKeyHints is the footer of a pushed screen that lists no keys.
var DefaultKeyHints = []layout.KeyHint{
	{Key: "Esc", Description: "Back"},
	{Key: "Ctrl+C", Description: "Quit"},
}

// Hints returns the footer hints for s.
func Hints(s Screen) []layout.KeyHint {
	if p, ok := s.(KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	return DefaultKeyHints
}
