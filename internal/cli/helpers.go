package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/theme"
)

// errNoTerminal is returned when a confirmation is needed but stdin is not
// interactive.
var errNoTerminal = errors.New("confirmation required: rerun with --yes")

// lookupTask resolves a full id or a unique id prefix against the active
// tasks, or the archive when archived is set.
func lookupTask(svc *app.Service, ref string, archived bool) (model.Task, error) {
	if archived {
		if t, ok := svc.ArchivedTask(ref); ok {
			return t, nil
		}
		return matchPrefix(svc.ArchivedTasks(), ref)
	}
	if t, ok := svc.Task(ref); ok {
		return t, nil
	}
	return matchPrefix(svc.Tasks(query.Filter{}, query.SortDateAsc), ref)
}

func matchPrefix(tasks []model.Task, ref string) (model.Task, error) {
	var matches []model.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	}
	return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
}

// interactive reports whether stdin is a terminal.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirm asks a yes/no question. yes skips the prompt; a non-interactive
// stdin without yes is an error.
func confirm(title, description string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !interactive() {
		return false, errNoTerminal
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// shortID truncates ids for tabular output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printTask writes one task line: id, status, priority, date, name and
// the reminder/blocked badges.
func printTask(w io.Writer, svc *app.Service, t model.Task) {
	now := svc.Now()

	check := "○"
	name := t.Name
	if t.Completed {
		check = "✓"
		name = theme.DimmedStyle.Render(name)
	}
	date := theme.DateStyle(overview.DateStatus(t.Date, now)).Render(t.Date)
	status := theme.StatusStyle(t.Status).Render(t.Status.Label())
	priority := theme.PriorityStyle(t.Priority).Render(t.Priority.Label())

	var badges []string
	if c, ok := svc.ResolveCategory(t.CategoryID); ok {
		badges = append(badges, theme.SwatchStyle(c.Color).Render("#"+c.Name))
	}
	switch overview.ReminderStatus(t, now) {
	case overview.ReminderLate:
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorRed).Render("⏰ late"))
	case overview.ReminderOnTime:
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("⏰"))
	}
	if len(svc.Blocking(t.ID)) > 0 {
		badges = append(badges, theme.BlockedStyle.Render("blocked"))
	}
	if t.Recurrence.Repeats() {
		badges = append(badges, "↻ "+t.Recurrence.Label())
	}

	fmt.Fprintf(w, "%s %s  %s  %s %s  %s  %s\n",
		check, shortID(t.ID), date, status, priority, name, strings.Join(badges, " "))
}

// printTaskDetail writes every field of a task.
func printTaskDetail(w io.Writer, svc *app.Service, t model.Task) {
	fmt.Fprintln(w, theme.HeaderStyle.Render(t.Name))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
		}
	}
	field("ID", t.ID)
	field("Date", t.Date)
	field("Status", theme.StatusStyle(t.Status).Render(t.Status.Label()))
	field("Priority", theme.PriorityStyle(t.Priority).Render(t.Priority.Label()))
	if c, ok := svc.ResolveCategory(t.CategoryID); ok {
		field("Category", c.Name)
	}
	var assignees []string
	for _, id := range t.Assignees {
		if c, ok := svc.ResolveContact(id); ok {
			assignees = append(assignees, c.Name)
		}
	}
	field("Assignees", strings.Join(assignees, ", "))
	field("Recurrence", t.Recurrence.Label())
	if len(t.Reminders) > 0 {
		var rs []string
		for _, m := range t.Reminders {
			rs = append(rs, fmt.Sprintf("%d min", m))
		}
		field("Reminders", strings.Join(rs, ", "))
	}
	if blockers := svc.Blocking(t.ID); len(blockers) > 0 {
		var names []string
		for _, b := range blockers {
			names = append(names, b.Name)
		}
		field("Blocked by", theme.BlockedStyle.Render(strings.Join(names, ", ")))
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}
	if len(t.Attachments) > 0 {
		fmt.Fprintln(w, "\nAttachments:")
		for _, a := range t.Attachments {
			fmt.Fprintf(w, "  %s (%s, %d bytes)\n", a.Name, a.Type, a.Size)
		}
	}
	if len(t.Comments) > 0 {
		fmt.Fprintln(w, "\nComments:")
		for _, c := range t.Comments {
			fmt.Fprintf(w, "  [%s] %s: %s\n", c.Date.Format("2006-01-02 15:04"), c.Author, c.Text)
		}
	}
	if len(t.History) > 0 {
		fmt.Fprintln(w, "\nHistory:")
		for _, h := range t.History {
			fmt.Fprintf(w, "  %s  %s\n", h.Date.Format("2006-01-02 15:04"), h.Action)
		}
	}
}
