package settings

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// SettingsScreen lists the session selection and opens pickers for it.
type SettingsScreen struct {
	ctrl *session.Controller
	menu components.Menu
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen for ctrl.
func New(ctrl *session.Controller) *SettingsScreen {
	s := &SettingsScreen{ctrl: ctrl}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Change"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(router.ResumedMsg); ok {
		s.refresh()
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SettingsScreen) View(width, height int) string {
	body := theme.Title.Width(width).Render("Session settings") + "\n\n" + s.menu.View()
	return lipgloss.NewStyle().Width(width).Height(height).Render(body)
}

// refresh rebuilds labels from the controller, keeping the cursor.
func (s *SettingsScreen) refresh() {
	selected := s.menu.Selected
	s.menu = components.NewMenu(s.items())
	s.menu.Select(selected)
}

func (s *SettingsScreen) items() []components.MenuItem {
	cfg := s.ctrl.State().Config
	feedback := "off"
	if cfg.FeedbackEnabled {
		feedback = "on"
	}

	return []components.MenuItem{
		{
			Label:  fmt.Sprintf("Language   %s", cfg.Language.Title()),
			Action: func() tea.Cmd { return router.Push(NewLanguagePicker(s.ctrl)) },
		},
		{
			Label:  fmt.Sprintf("Level      %s", cfg.Level.Title()),
			Action: func() tea.Cmd { return router.Push(NewLevelPicker(s.ctrl)) },
		},
		{
			Label: fmt.Sprintf("Mode       %s", cfg.Mode.Title()),
			Action: func() tea.Cmd {
				_ = s.ctrl.SetMode(cfg.Mode.Toggle())
				s.refresh()
				return nil
			},
		},
		{
			Label: fmt.Sprintf("Feedback   %s", feedback),
			Action: func() tea.Cmd {
				s.ctrl.SetFeedback(!cfg.FeedbackEnabled)
				s.refresh()
				return nil
			},
		},
	}
}
