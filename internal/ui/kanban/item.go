package kanban

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/theme"
)

// TaskItem wraps a model.Task with the derived state its card shows.
type TaskItem struct {
	Task          model.Task
	CategoryName  string
	CategoryColor string
	Blocked       bool
	DateState     overview.DateState
	Reminder      overview.ReminderState
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name }

// Title returns the task name for the list.
func (i TaskItem) Title() string { return i.Task.Name }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{i.Task.Date, i.Task.Priority.Label()}
	if i.CategoryName != "" {
		parts = append(parts, i.CategoryName)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task cards.
type ItemDelegate struct {
	// focused is false for every column but the one holding the cursor.
	focused bool
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a task card: the name line and a badge line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task
	isSelected := d.focused && index == m.Index()

	prefix := "○"
	if t.Completed {
		prefix = "✓"
	}
	name := truncate(t.Name, m.Width()-6)
	if t.Completed {
		name = theme.DimmedStyle.Render(name)
	}
	title := fmt.Sprintf("%s %s %s", theme.PriorityStyle(t.Priority).Render("▌"), prefix, name)

	badges := []string{theme.DateStyle(ti.DateState).Render(t.Date)}
	if ti.CategoryName != "" {
		badges = append(badges, theme.SwatchStyle(ti.CategoryColor).Render("#"+ti.CategoryName))
	}
	switch ti.Reminder {
	case overview.ReminderLate:
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorRed).Render("⏰"))
	case overview.ReminderOnTime:
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("⏰"))
	}
	if ti.Blocked {
		badges = append(badges, theme.BlockedStyle.Render("⛔"))
	}
	if t.Recurrence.Repeats() {
		badges = append(badges, "↻")
	}
	if n := len(t.Comments); n > 0 {
		badges = append(badges, fmt.Sprintf("💬%d", n))
	}
	if n := len(t.Attachments); n > 0 {
		badges = append(badges, fmt.Sprintf("📎%d", n))
	}

	line := title + "\n  " + strings.Join(badges, " ")
	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
