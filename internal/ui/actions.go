package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/ui/detail"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// resultMsg is sent after a service call. back returns from the detail
// view, used when the shown task no longer exists.
type resultMsg struct {
	text string
	err  error
	back bool
}

// sweepsDoneMsg is sent after a manual run of every sweep.
type sweepsDoneMsg struct {
	summary string
}

// reload refreshes every view that shows board data.
func (m *Model) reload() tea.Cmd {
	if id := m.detail.CurrentID(); id != "" {
		if d, ok := m.buildDetail(id); ok {
			m.detail.Refresh(d)
		}
	}
	m.calendarView.Reload()
	m.dashboardView.Reload()
	return tea.Batch(m.board.LoadTasks(), m.loadArchive(), m.fetchUnreadCount())
}

// fetchUnreadCount returns a tea.Cmd that counts unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		unread, err := svc.Notifications(context.Background(), true)
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(unread)}
	}
}

// openDetail shows a task in the detail view.
func (m *Model) openDetail(id string, archived bool) tea.Cmd {
	d, ok := m.buildDetail(id)
	if !ok {
		m.message = "task not found"
		return nil
	}
	d.Archived = archived || d.Archived
	m.detailFrom = m.currentView
	m.currentView = ViewDetail
	m.detail.SetTask(d)
	return nil
}

// buildDetail resolves the names the detail view shows. Active tasks are
// searched before the archive.
func (m Model) buildDetail(id string) (detail.Detail, bool) {
	t, ok := m.svc.Task(id)
	archived := false
	if !ok {
		if t, ok = m.svc.ArchivedTask(id); !ok {
			return detail.Detail{}, false
		}
		archived = true
	}

	d := detail.Detail{Task: t, Archived: archived}
	for _, c := range m.svc.Categories() {
		if c.ID == t.CategoryID {
			d.Category = c.Name
			break
		}
	}
	contacts := make(map[string]string)
	for _, c := range m.svc.Contacts() {
		contacts[c.ID] = c.Name
	}
	for _, a := range t.Assignees {
		if name, ok := contacts[a]; ok {
			d.Assignees = append(d.Assignees, name)
		}
	}
	if !archived {
		for _, b := range m.svc.Blocking(id) {
			d.BlockedBy = append(d.BlockedBy, b.Name)
		}
	}
	return d, true
}

// formOptions lists the choices offered by the task form.
func (m Model) formOptions() taskform.Options {
	return taskform.Options{
		Categories: m.svc.Categories(),
		Contacts:   m.svc.Contacts(),
		Tasks:      m.svc.Tasks(query.Filter{}, query.SortName),
	}
}

// startEdit opens the form on an existing task.
func (m *Model) startEdit(id string) tea.Cmd {
	t, ok := m.svc.Task(id)
	if !ok {
		m.message = "archived tasks cannot be edited"
		return nil
	}
	if m.currentView != ViewForm {
		m.previousView = m.currentView
	}
	m.currentView = ViewForm
	m.form.SetOptions(m.formOptions())
	return m.form.StartEdit(t)
}

// createTask persists a new task.
func (m Model) createTask(in board.TaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, err := svc.CreateTask(context.Background(), in)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: fmt.Sprintf("created %q", t.Name)}
	}
}

// updateTask persists the edited fields of a task.
func (m Model) updateTask(id string, in board.TaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, ok, err := svc.UpdateTask(context.Background(), id, in)
		if err != nil {
			return resultMsg{err: err}
		}
		if !ok {
			return resultMsg{text: "task not found", back: true}
		}
		return resultMsg{text: fmt.Sprintf("updated %q", t.Name)}
	}
}

// toggleCompleted flips a task between done and open.
func (m Model) toggleCompleted(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, ok, err := svc.ToggleCompleted(context.Background(), id)
		if err != nil {
			return resultMsg{err: blockedError(svc, id, err)}
		}
		if !ok {
			return resultMsg{text: "task not found"}
		}
		if t.Completed {
			return resultMsg{text: fmt.Sprintf("completed %q", t.Name)}
		}
		return resultMsg{text: fmt.Sprintf("reopened %q", t.Name)}
	}
}

// shiftSelected moves the selected card one column left or right.
func (m Model) shiftSelected(dir int) tea.Cmd {
	item, ok := m.board.SelectedItem()
	if !ok {
		return nil
	}
	next, ok := statusNeighbour(item.Task.Status, dir)
	if !ok {
		return nil
	}
	svc := m.svc
	id := item.Task.ID
	return func() tea.Msg {
		t, _, err := svc.ChangeStatus(context.Background(), id, next)
		if err != nil {
			return resultMsg{err: blockedError(svc, id, err)}
		}
		return resultMsg{text: fmt.Sprintf("moved %q to %s", t.Name, next.Label())}
	}
}

// deleteTask removes an active or archived task.
func (m Model) deleteTask(id string, archived bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ok, err := svc.DeleteTask(context.Background(), id, archived)
		if err != nil {
			return resultMsg{err: err}
		}
		if !ok {
			return resultMsg{text: "task not found", back: true}
		}
		return resultMsg{text: "task deleted", back: true}
	}
}

// archiveTask moves a task to the archive by hand.
func (m Model) archiveTask(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ok, err := svc.ArchiveTask(context.Background(), id)
		if err != nil {
			return resultMsg{err: err}
		}
		if !ok {
			return resultMsg{text: "task not found"}
		}
		return resultMsg{text: "task archived", back: true}
	}
}

// addComment appends a comment to a task.
func (m Model) addComment(id, text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		_, ok, err := svc.AddComment(context.Background(), id, text)
		if err != nil {
			return resultMsg{err: err}
		}
		if !ok {
			return resultMsg{text: "task not found", back: true}
		}
		return resultMsg{text: "comment added"}
	}
}

// runSweeps runs every background rule now.
func (m Model) runSweeps() tea.Cmd {
	sched := m.sched
	return func() tea.Msg {
		var (
			parts  []string
			failed []string
		)
		for _, r := range sched.RunAll(context.Background()) {
			if r.Err != nil {
				failed = append(failed, string(r.Kind))
				continue
			}
			if s := sweepSummary(r); s != "" {
				parts = append(parts, s)
			}
		}
		summary := "nothing to do"
		if len(parts) > 0 {
			summary = strings.Join(parts, ", ")
		}
		if len(failed) > 0 {
			summary += " | failed: " + strings.Join(failed, ", ")
		}
		return sweepsDoneMsg{summary: summary}
	}
}

// blockedError names the open dependencies when err is app.ErrBlocked.
func blockedError(svc *app.Service, id string, err error) error {
	if !errors.Is(err, app.ErrBlocked) {
		return err
	}
	var names []string
	for _, t := range svc.Blocking(id) {
		names = append(names, t.Name)
	}
	if len(names) == 0 {
		return err
	}
	return fmt.Errorf("blocked by %s", strings.Join(names, ", "))
}

// today formats the service clock as a task date.
func (m Model) today() string {
	return m.svc.Now().Format(model.DateLayout)
}
