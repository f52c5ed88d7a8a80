package kanban

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/theme"
)

// Source is what the board reads tasks from.
type Source interface {
	Tasks(f query.Filter, key query.SortKey) []model.Task
	Blocking(id string) []model.Task
	Categories() []model.Category
	Now() time.Time
}

// TasksLoadedMsg is sent when the columns have been rebuilt.
type TasksLoadedMsg struct {
	Columns [][]TaskItem
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the kanban board: one list per status column.
type Model struct {
	columns     []list.Model
	focus       int
	source      Source
	keys        *keys.KeyMap
	filter      query.Filter
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new board model.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	cols := make([]list.Model, len(model.Statuses))
	for i, s := range model.Statuses {
		l := list.New([]list.Item{}, ItemDelegate{focused: i == 0}, width/len(model.Statuses), height-2)
		l.Title = s.Label()
		l.SetShowStatusBar(false)
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		l.KeyMap.Quit.SetEnabled(false)
		l.Styles.Title = theme.StatusStyle(s)
		cols[i] = l
	}

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		columns:     cols,
		source:      src,
		keys:        k,
		sortIndex:   indexOf(query.SortDateAsc),
		searchInput: si,
		width:       width,
		height:      height,
	}
}

func indexOf(k query.SortKey) int {
	for i, s := range query.SortKeys {
		if s == k {
			return i
		}
	}
	return 0
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		var cmds []tea.Cmd
		for i := range m.columns {
			var items []list.Item
			if i < len(msg.Columns) {
				items = make([]list.Item, len(msg.Columns[i]))
				for j, it := range msg.Columns[i] {
					items[j] = it
				}
			}
			cmds = append(cmds, m.columns[i].SetItems(items))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.columns[m.focus], cmd = m.columns[m.focus].Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Search = m.searchInput.Value()
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Search = ""
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.SelectedItem()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		m.searchInput.SetValue(m.filter.Search)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Left):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.Right):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(query.SortKeys)
		return m, m.LoadTasks()
	}

	// Delegate to the focused column for up/down/pgup/pgdn.
	var cmd tea.Cmd
	m.columns[m.focus], cmd = m.columns[m.focus].Update(msg)
	return m, cmd
}

// setFocus moves the cursor to column i, clamped to the board.
func (m *Model) setFocus(i int) {
	if i < 0 || i >= len(m.columns) {
		return
	}
	m.columns[m.focus].SetDelegate(ItemDelegate{focused: false})
	m.focus = i
	m.columns[m.focus].SetDelegate(ItemDelegate{focused: true})
}

// FocusStatus moves the cursor to the column of status s.
func (m *Model) FocusStatus(s model.Status) {
	for i, st := range model.Statuses {
		if st == s {
			m.setFocus(i)
			return
		}
	}
}

// FocusedStatus is the status of the column holding the cursor.
func (m Model) FocusedStatus() model.Status {
	return model.Statuses[m.focus]
}

// SelectedItem returns the task under the cursor.
func (m Model) SelectedItem() (TaskItem, bool) {
	item, ok := m.columns[m.focus].SelectedItem().(TaskItem)
	return item, ok
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// Filter returns the active filter.
func (m Model) Filter() query.Filter { return m.filter }

// SetFilter replaces the filter and reloads.
func (m *Model) SetFilter(f query.Filter) tea.Cmd {
	m.filter = f
	return m.LoadTasks()
}

// SortKey returns the active sort key.
func (m Model) SortKey() query.SortKey { return query.SortKeys[m.sortIndex] }

// SetSortKey selects a sort key and reloads.
func (m *Model) SetSortKey(k query.SortKey) tea.Cmd {
	m.sortIndex = indexOf(k)
	return m.LoadTasks()
}

// View renders the board view.
func (m Model) View() string {
	var header string
	if m.searchMode {
		header = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
	} else {
		header = theme.HelpStyle.Render(m.summary())
	}

	rendered := make([]string, len(m.columns))
	for i, col := range m.columns {
		style := theme.ColumnStyle
		if i == m.focus {
			style = theme.FocusedColumnStyle
		}
		body := col.View()
		if len(col.Items()) == 0 {
			body = lipgloss.JoinVertical(lipgloss.Left,
				col.Styles.Title.Render(col.Title),
				theme.HelpStyle.Render("(empty)"))
		}
		rendered[i] = style.Width(m.columnWidth()).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header,
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

// summary describes the active filter and sort.
func (m Model) summary() string {
	s := fmt.Sprintf("sort: %s", m.SortKey())
	f := m.filter
	if f.Search != "" {
		s += fmt.Sprintf(" | search: %q", f.Search)
	}
	if f.Status != "" {
		s += " | status: " + f.Status.Label()
	}
	if f.Priority != "" {
		s += " | priority: " + f.Priority.Label()
	}
	if f.CategoryID != "" {
		s += " | category filter"
	}
	if f.Date != "" {
		s += " | date: " + f.Date
	}
	if f.Assignee != "" {
		s += " | assignee filter"
	}
	return s
}

func (m Model) columnWidth() int {
	w := m.width/len(m.columns) - 2
	if w < 16 {
		w = 16
	}
	return w
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = width - 4
	for i := range m.columns {
		m.columns[i].SetSize(m.columnWidth()-2, height-3)
	}
}

// LoadTasks returns a tea.Cmd that rebuilds the columns with the current
// filter and sort.
func (m Model) LoadTasks() tea.Cmd {
	src := m.source
	f := m.filter
	sortKey := m.SortKey()
	return func() tea.Msg {
		return TasksLoadedMsg{Columns: BuildColumns(src, f, sortKey)}
	}
}

// BuildColumns lists the filtered tasks as cards grouped by status.
func BuildColumns(src Source, f query.Filter, sortKey query.SortKey) [][]TaskItem {
	now := src.Now()
	cats := make(map[string]model.Category)
	for _, c := range src.Categories() {
		cats[c.ID] = c
	}

	kanban := overview.Kanban(src.Tasks(f, sortKey))
	out := make([][]TaskItem, len(kanban))
	for i, col := range kanban {
		for _, t := range col.Tasks {
			c := cats[t.CategoryID]
			out[i] = append(out[i], TaskItem{
				Task:          t,
				CategoryName:  c.Name,
				CategoryColor: c.Color,
				Blocked:       len(src.Blocking(t.ID)) > 0,
				DateState:     overview.DateStatus(t.Date, now),
				Reminder:      overview.ReminderStatus(t, now),
			})
		}
	}
	return out
}
