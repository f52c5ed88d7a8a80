// Package help renders the key binding reference, the palette commands and
// the board colour legend in a scrollable panel.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui/command"
)

// Model is the help screen.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

// New creates a help screen sized width x height.
func New(km *keys.KeyMap, width, height int) Model {
	m := Model{keys: km, help: help.New()}
	m.help.ShowAll = true
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update scrolls the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the panel.
func (m Model) View() string {
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(m.viewport.View())
}

// SetSize resizes the panel and reflows its content.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 6
	m.viewport = viewport.New(max(width-6, 0), max(height-6, 0))
	m.viewport.SetContent(m.content())
}

func (m Model) content() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	return lipgloss.JoinVertical(lipgloss.Left,
		heading.Render("Keyboard shortcuts"),
		m.help.View(m.keys),
		"",
		heading.Render("Commands (press :)"),
		commands(),
		"",
		heading.Render("Legend"),
		legend(),
	)
}

func commands() string {
	width := 0
	for _, s := range command.Specs {
		width = max(width, lipgloss.Width(s.Usage))
	}
	usage := lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(width + 2)
	lines := make([]string, 0, len(command.Specs))
	for _, s := range command.Specs {
		lines = append(lines, usage.Render(s.Usage)+theme.HelpStyle.Render(s.Help))
	}
	return strings.Join(lines, "\n")
}

// legend explains the colours used on the board.
func legend() string {
	var cols, pris []string
	for _, s := range model.Statuses {
		cols = append(cols, theme.StatusStyle(s).Render(s.Label()))
	}
	for _, p := range model.Priorities {
		pris = append(pris, theme.PriorityStyle(p).Render("▌"+p.Label()))
	}
	dates := []string{
		theme.DateStyle(overview.DateOverdue).Render("overdue"),
		theme.DateStyle(overview.DateWarning).Render("due soon"),
		theme.DateStyle(overview.DateNormal).Render("later"),
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.HelpStyle.Render("Columns   ")+strings.Join(cols, " "),
		theme.HelpStyle.Render("Priority  ")+strings.Join(pris, " "),
		theme.HelpStyle.Render("Dates     ")+strings.Join(dates, " "),
		theme.HelpStyle.Render("Badges    ")+"⏰ reminder  ⛔ blocked  ↻ recurring  💬 comments  📎 files",
	)
}
