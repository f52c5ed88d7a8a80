package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg signals the parent to close the calendar.
type CloseMsg struct{}

// Source lays out a month.
type Source interface {
	Calendar(ref time.Time) overview.Month
	Note(date string) string
	Now() time.Time
}

// Model shows one month with a day cursor.
type Model struct {
	source Source
	keys   *keys.KeyMap
	month  overview.Month
	cursor time.Time
	width  int
	height int
}

// New creates a calendar view.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{source: src, keys: k, width: width, height: height}
}

// Open shows the month of today with the cursor on today.
func (m *Model) Open() {
	now := m.source.Now()
	m.cursor = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	m.reload()
}

// Reload rebuilds the month after the board changed.
func (m *Model) Reload() {
	if !m.cursor.IsZero() {
		m.reload()
	}
}

func (m *Model) reload() {
	m.month = m.source.Calendar(m.cursor)
}

// Cursor is the selected day.
func (m Model) Cursor() time.Time { return m.cursor }

// Update moves the cursor by day (h/l), week (j/k) or month ([/]).
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	prevMonth := m.cursor.Month()
	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.Left):
		m.cursor = m.cursor.AddDate(0, 0, -1)
	case key.Matches(km, m.keys.Right):
		m.cursor = m.cursor.AddDate(0, 0, 1)
	case key.Matches(km, m.keys.Up):
		m.cursor = m.cursor.AddDate(0, 0, -7)
	case key.Matches(km, m.keys.Down):
		m.cursor = m.cursor.AddDate(0, 0, 7)
	case km.String() == "[":
		m.cursor = m.cursor.AddDate(0, -1, 0)
	case km.String() == "]":
		m.cursor = m.cursor.AddDate(0, 1, 0)
	default:
		return m, nil
	}
	if m.cursor.Month() != prevMonth {
		m.reload()
	}
	return m, nil
}

// View renders the month grid and the tasks of the selected day.
func (m Model) View() string {
	if m.cursor.IsZero() {
		return ""
	}
	cell := lipgloss.NewStyle().Width(6)
	today := cell.Bold(true).Foreground(theme.ColorBlue)
	outside := cell.Foreground(theme.ColorSubtle)
	selected := cell.Reverse(true)

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(m.month.Title))
	b.WriteString("\n\n")
	for _, name := range overview.WeekdayNames {
		b.WriteString(cell.Bold(true).Render(name))
	}
	b.WriteString("\n")

	cursor := m.cursor.Format("2006-01-02")
	var picked overview.Day
	for _, week := range m.month.Weeks {
		for _, d := range week {
			label := fmt.Sprintf("%2d", d.Number)
			if n := len(d.Tasks); n > 0 {
				label += fmt.Sprintf("•%d", n)
			}
			style := cell
			switch {
			case d.Date == cursor:
				style = selected
				picked = d
			case !d.InMonth:
				style = outside
			case d.Today:
				style = today
			}
			b.WriteString(style.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(cursor))
	b.WriteString("\n")
	if len(picked.Tasks) == 0 {
		b.WriteString(theme.HelpStyle.Render("No tasks"))
	}
	for _, t := range picked.Tasks {
		fmt.Fprintf(&b, "%s %s\n", theme.PriorityStyle(t.Priority).Render("▌"), t.Name)
	}
	if note := m.source.Note(cursor); note != "" {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("📝 " + note))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
