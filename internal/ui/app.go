package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/sweep"
	"github.com/nhle/taskboard/internal/ui/calendar"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/dashboard"
	"github.com/nhle/taskboard/internal/ui/detail"
	"github.com/nhle/taskboard/internal/ui/entitymgr"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/kanban"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewForm
	ViewCategories
	ViewContacts
	ViewCalendar
	ViewDashboard
	ViewArchive
)

// Model is the root Bubble Tea model that manages view routing, layout and
// access to the service.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       Layout
	svc          *app.Service
	sched        *sweep.Scheduler
	keys         *keys.KeyMap

	board         kanban.Model
	detail        detail.Model
	helpView      helpview.Model
	commandView   command.Model
	form          taskform.Model
	categoryView  entitymgr.Model
	contactView   entitymgr.Model
	calendarView  calendar.Model
	dashboardView dashboard.Model
	archive       list.Model

	// detailFrom is the view the detail panel returns to.
	detailFrom ViewState
	// pendingDelete holds the task awaiting a y/n answer.
	pendingDelete *pendingDelete

	ready       bool
	unreadCount int
	message     string
}

type pendingDelete struct {
	id       string
	name     string
	archived bool
}

// New creates the root model. sched must already be started by the caller;
// the model only listens to its results and stops it on quit.
func New(svc *app.Service, sched *sweep.Scheduler) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView:   ViewBoard,
		svc:           svc,
		sched:         sched,
		keys:          k,
		board:         kanban.New(svc, k, 80, 24),
		detail:        detail.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		form:          taskform.New(80, 24),
		categoryView:  entitymgr.New(categoryBackend{svc}, k, 80, 24),
		contactView:   entitymgr.New(contactBackend{svc}, k, 80, 24),
		calendarView:  calendar.New(svc, k, 80, 24),
		dashboardView: dashboard.New(svc, k, 80, 24),
		archive:       newArchiveList(80, 24),
	}
}

// Init loads the board and starts listening for sweep results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.board.Init(),
		m.sched.WaitForResult(),
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.board.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.form.SetSize(w, h)
		m.categoryView.SetSize(w, h)
		m.contactView.SetSize(w, h)
		m.calendarView.SetSize(w, h)
		m.dashboardView.SetSize(w, h)
		m.archive.SetSize(w, h)
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case sweep.Result:
		if msg.Err != nil {
			m.message = fmt.Sprintf("%s sweep failed: %v", msg.Kind, msg.Err)
		} else if msg.Changed() {
			m.message = sweepSummary(msg)
		}
		cmds := []tea.Cmd{m.sched.WaitForResult(), m.fetchUnreadCount()}
		if msg.Changed() {
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case sweepsDoneMsg:
		m.message = msg.summary
		cmd := m.reload()
		return m, cmd

	case resultMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
		} else {
			m.message = msg.text
		}
		if msg.back && m.currentView == ViewDetail && msg.err == nil {
			m.currentView = m.detailFrom
		}
		cmd := m.reload()
		return m, cmd

	case kanban.TasksLoadedMsg:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd

	case kanban.SelectedTaskMsg:
		cmd := m.openDetail(msg.TaskID, false)
		return m, cmd

	case detail.BackMsg:
		m.currentView = m.detailFrom
		return m, nil

	case detail.ActionMsg:
		return m.handleAction(msg)

	case detail.CommentMsg:
		return m, m.addComment(msg.TaskID, msg.Text)

	case taskform.SubmittedMsg:
		m.currentView = m.previousView
		if msg.ID == "" {
			return m, m.createTask(msg.Input)
		}
		return m, m.updateTask(msg.ID, msg.Input)

	case taskform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(command.Command(msg))
		return m, cmd

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case entitymgr.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case entitymgr.ChangedMsg:
		cmd := m.reload()
		return m, cmd

	case calendar.CloseMsg, dashboard.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		if m.pendingDelete != nil {
			return m.answerDelete(msg)
		}
		if m.capturesInput() {
			if msg.String() == "ctrl+c" {
				return m.quit()
			}
			return m.updateActiveView(msg)
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturesInput reports whether the active view is editing text, in which
// case single-letter shortcuts must reach it untouched.
func (m Model) capturesInput() bool {
	switch m.currentView {
	case ViewCommand, ViewForm:
		return true
	case ViewBoard:
		return m.board.Searching()
	case ViewDetail:
		return m.detail.Commenting()
	case ViewCategories:
		return m.categoryView.Editing()
	case ViewContacts:
		return m.contactView.Editing()
	}
	return false
}

// handleGlobalKey processes shortcuts that work across views.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		next, cmd := m.quit()
		return next, cmd, true
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Back):
		switch m.currentView {
		case ViewHelp:
			m.currentView = m.previousView
			return m, nil, true
		case ViewArchive:
			m.currentView = ViewBoard
			return m, nil, true
		}

	case key.Matches(msg, m.keys.Refresh):
		m.message = "running sweeps..."
		return m, m.runSweeps(), true
	}

	if m.currentView == ViewArchive {
		return m.handleArchiveKey(msg)
	}
	if m.currentView != ViewBoard {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		next, cmd := m.quit()
		return next, cmd, true

	case key.Matches(msg, m.keys.New):
		m.previousView = m.currentView
		m.currentView = ViewForm
		m.form.SetOptions(m.formOptions())
		cmd := m.form.StartCreate(m.board.FocusedStatus(), m.svc.Now())
		return m, cmd, true

	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.board.SelectedItem(); ok {
			cmd := m.startEdit(item.Task.ID)
			return m, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.board.SelectedItem(); ok {
			return m, m.toggleCompleted(item.Task.ID), true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.shiftSelected(-1), true

	case key.Matches(msg, m.keys.MoveRight):
		return m, m.shiftSelected(1), true

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.board.SelectedItem(); ok {
			m.pendingDelete = &pendingDelete{id: item.Task.ID, name: item.Task.Name}
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Archive):
		if item, ok := m.board.SelectedItem(); ok {
			return m, m.archiveTask(item.Task.ID), true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Dashboard):
		m.dashboardView.Reload()
		m.currentView = ViewDashboard
		return m, nil, true

	case key.Matches(msg, m.keys.Calendar):
		m.calendarView.Open()
		m.currentView = ViewCalendar
		return m, nil, true

	case key.Matches(msg, m.keys.Categories):
		m.currentView = ViewCategories
		return m, m.categoryView.Init(), true
	}
	return m, nil, false
}

// handleArchiveKey serves the archive list.
func (m Model) handleArchiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	item, ok := m.archive.SelectedItem().(kanban.TaskItem)
	switch {
	case key.Matches(msg, m.keys.Select):
		if ok {
			cmd := m.openDetail(item.Task.ID, true)
			return m, cmd, true
		}
		return m, nil, true
	case key.Matches(msg, m.keys.Delete):
		if ok {
			m.pendingDelete = &pendingDelete{id: item.Task.ID, name: item.Task.Name, archived: true}
		}
		return m, nil, true
	}
	return m, nil, false
}

// handleAction executes an action requested from the detail view.
func (m Model) handleAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case detail.ActionToggle:
		return m, m.toggleCompleted(msg.TaskID)
	case detail.ActionEdit:
		cmd := m.startEdit(msg.TaskID)
		return m, cmd
	case detail.ActionArchive:
		return m, m.archiveTask(msg.TaskID)
	case detail.ActionDelete:
		if d, ok := m.buildDetail(msg.TaskID); ok {
			m.pendingDelete = &pendingDelete{id: msg.TaskID, name: d.Task.Name, archived: d.Archived}
		}
	}
	return m, nil
}

// answerDelete resolves the y/n prompt shown in the status bar.
func (m Model) answerDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pendingDelete
	m.pendingDelete = nil
	if strings.ToLower(msg.String()) != "y" {
		m.message = "delete cancelled"
		return m, nil
	}
	return m, m.deleteTask(p.id, p.archived)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.sched.Stop()
	return m, tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewCategories:
		m.categoryView, cmd = m.categoryView.Update(msg)
	case ViewContacts:
		m.contactView, cmd = m.contactView.Update(msg)
	case ViewCalendar:
		m.calendarView, cmd = m.calendarView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewArchive:
		m.archive, cmd = m.archive.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	banner := m.layout.RenderBanner(Banner{
		View:   m.viewTitle(),
		Unread: m.unreadCount,
		Sweep:  m.sweepStatus(),
	})
	return m.layout.Compose(banner, m.renderContent(), m.layout.RenderStatusBar(m.statusLine()))
}

// viewTitle names the active view in the banner.
func (m Model) viewTitle() string {
	switch m.currentView {
	case ViewDetail:
		return "Task"
	case ViewHelp:
		return "Help"
	case ViewForm:
		return "Edit task"
	case ViewCategories:
		return "Categories"
	case ViewContacts:
		return "Contacts"
	case ViewCalendar:
		return "Calendar"
	case ViewDashboard:
		return "Dashboard"
	case ViewArchive:
		return "Archive"
	}
	return "Board"
}

// statusLine fills the status bar: a pending confirmation, then the last
// result message, then key hints.
func (m Model) statusLine() StatusLine {
	line := StatusLine{Hints: m.keyHints()}
	if p := m.pendingDelete; p != nil {
		line.Prompt = fmt.Sprintf("delete %q? y confirm | any key cancel", p.name)
	}
	switch m.currentView {
	case ViewBoard, ViewDetail, ViewArchive:
		line.Message = m.message
	}
	return line
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.board.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.form.View()
	case ViewCategories:
		return m.categoryView.View()
	case ViewContacts:
		return m.contactView.View()
	case ViewCalendar:
		return m.calendarView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewArchive:
		return m.archive.View()
	default:
		return ""
	}
}

// sweepStatus returns a short string describing the background sweeps.
func (m Model) sweepStatus() string {
	var running, failed []string
	for _, s := range m.sched.Statuses() {
		switch s.State {
		case sweep.StateRunning:
			running = append(running, string(s.Kind))
		case sweep.StateError:
			failed = append(failed, string(s.Kind))
		}
	}
	if len(running) > 0 {
		return "sweeping: " + strings.Join(running, ", ")
	}
	if len(failed) > 0 {
		return "⚠ failed: " + strings.Join(failed, ", ")
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		if m.detail.Commenting() {
			return "enter post | esc cancel"
		}
		return "esc back | x toggle | e edit | c comment | A archive | d delete | j/k scroll"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewCategories, ViewContacts:
		return "n new | e edit | d delete | esc back"
	case ViewCalendar:
		return "h/l day | j/k week | [ ] month | esc back"
	case ViewDashboard:
		return "tab weekly/monthly | esc back"
	case ViewArchive:
		return "enter details | d delete | esc back"
	default:
		return "q quit | ? help | n new | x done | H/L move | / search | tab sort | : command"
	}
}

func sweepSummary(r sweep.Result) string {
	var parts []string
	if n := len(r.Reminders); n > 0 {
		parts = append(parts, fmt.Sprintf("%d reminder(s)", n))
	}
	if n := len(r.Spawned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d recurring task(s)", n))
	}
	if n := len(r.Archived); n > 0 {
		parts = append(parts, fmt.Sprintf("%d archived", n))
	}
	return strings.Join(parts, ", ")
}

// statusNeighbour returns the status dir steps from s along the board.
func statusNeighbour(s model.Status, dir int) (model.Status, bool) {
	for i, st := range model.Statuses {
		if st == s {
			j := i + dir
			if j < 0 || j >= len(model.Statuses) {
				return s, false
			}
			return model.Statuses[j], true
		}
	}
	return s, false
}
