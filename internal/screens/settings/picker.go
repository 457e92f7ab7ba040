package settings

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// PickerScreen selects one value from a catalog and pops itself.
type PickerScreen struct {
	title string
	menu  components.Menu
}

var _ screen.Screen = (*PickerScreen)(nil)

// NewLanguagePicker lists the language catalog with the current language selected.
func NewLanguagePicker(ctrl *session.Controller) *PickerScreen {
	current := ctrl.State().Config.Language
	var (
		items    []components.MenuItem
		selected int
	)
	for i, l := range session.Languages() {
		if l == current {
			selected = i
		}
		items = append(items, components.MenuItem{
			Label: l.Title(),
			Action: func() tea.Cmd {
				_ = ctrl.SetLanguage(l)
				return router.Pop
			},
		})
	}
	return newPicker("Language", items, selected)
}

// NewLevelPicker lists the level catalog with the current level selected.
func NewLevelPicker(ctrl *session.Controller) *PickerScreen {
	current := ctrl.State().Config.Level
	var (
		items    []components.MenuItem
		selected int
	)
	for i, l := range session.Levels() {
		if l == current {
			selected = i
		}
		items = append(items, components.MenuItem{
			Label: l.Title(),
			Action: func() tea.Cmd {
				_ = ctrl.SetLevel(l)
				return router.Pop
			},
		})
	}
	return newPicker("Level", items, selected)
}

func newPicker(title string, items []components.MenuItem, selected int) *PickerScreen {
	m := components.NewMenu(items)
	m.Select(selected)
	return &PickerScreen{title: title, menu: m}
}

func (p *PickerScreen) Init() tea.Cmd {
	return nil
}

func (p *PickerScreen) Title() string {
	return p.title
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

func (p *PickerScreen) View(width, height int) string {
	body := theme.Title.Width(width).Render("Choose "+p.title) + "\n\n" + p.menu.View()
	return lipgloss.NewStyle().Width(width).Height(height).Render(body)
}
