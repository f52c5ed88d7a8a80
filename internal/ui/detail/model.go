package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// Action names what the user asked to do with the shown task.
type Action string

const (
	ActionToggle  Action = "toggle"
	ActionEdit    Action = "edit"
	ActionArchive Action = "archive"
	ActionDelete  Action = "delete"
)

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action Action
	TaskID string
}

// CommentMsg carries a comment typed in the detail view.
type CommentMsg struct {
	TaskID string
	Text   string
}

// Detail is a task with the names the view needs resolved.
type Detail struct {
	Task      model.Task
	Category  string
	Assignees []string
	BlockedBy []string
	Archived  bool
}

// Model is the task detail view component.
type Model struct {
	task       *Detail
	viewport   viewport.Model
	comment    textinput.Model
	commenting bool
	keys       *keys.KeyMap
	width      int
	height     int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ci := textinput.New()
	ci.Placeholder = "write a comment..."
	ci.Prompt = "💬 "
	ci.Width = width - 6

	return Model{
		viewport: vp,
		comment:  ci,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.commenting {
		return m.updateComment(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.task != nil {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Comment):
			if m.task.Archived {
				return m, nil
			}
			m.commenting = true
			m.comment.Reset()
			return m, m.comment.Focus()

		case key.Matches(msg, m.keys.Toggle):
			return m, m.action(ActionToggle)

		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)

		case key.Matches(msg, m.keys.Archive):
			return m, m.action(ActionArchive)

		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateComment(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.commenting = false
			text := strings.TrimSpace(m.comment.Value())
			m.comment.Blur()
			if text == "" || m.task == nil {
				return m, nil
			}
			id := m.task.Task.ID
			return m, func() tea.Msg { return CommentMsg{TaskID: id, Text: text} }
		case "esc":
			m.commenting = false
			m.comment.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

// action emits ActionMsg for the shown task. Archived tasks only allow
// deletion.
func (m Model) action(a Action) tea.Cmd {
	if m.task.Archived && a != ActionDelete {
		return nil
	}
	id := m.task.Task.ID
	return func() tea.Msg { return ActionMsg{Action: a, TaskID: id} }
}

// Commenting reports whether the comment input has focus.
func (m Model) Commenting() bool { return m.commenting }

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	if m.commenting {
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.comment.View())
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	d := m.task
	task := d.Task
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := task.Name
	if task.Completed {
		title = "✓ " + title
	}
	if d.Archived {
		title += " (archived)"
	}
	sections = append(sections, titleStyle.Render(title))

	// Badges line: status + priority + recurrence
	statusBadge := theme.StatusStyle(task.Status).Render(task.Status.Label())
	priBadge := theme.PriorityStyle(task.Priority).Render(task.Priority.Label())
	badges := []string{statusBadge, "  ", priBadge}
	if task.Recurrence.Repeats() {
		badges = append(badges, "  ", "↻ "+task.Recurrence.Label())
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		if value != "" {
			sections = append(sections, metaStyle.Render(label+":")+" "+valStyle.Render(value))
		}
	}

	row("Date", task.Date)
	row("Category", d.Category)
	row("Assignees", strings.Join(d.Assignees, ", "))
	if len(task.Reminders) > 0 {
		rs := make([]string, len(task.Reminders))
		for i, r := range task.Reminders {
			rs[i] = fmt.Sprintf("%d min", r)
		}
		row("Reminders", strings.Join(rs, ", "))
	}
	if len(d.BlockedBy) > 0 {
		sections = append(sections, metaStyle.Render("Blocked by:")+" "+
			theme.BlockedStyle.Render(strings.Join(d.BlockedBy, ", ")))
	}
	if !task.CreatedAt.IsZero() {
		row("Created", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !task.UpdatedAt.IsZero() {
		row("Updated", task.UpdatedAt.Format("2006-01-02 15:04"))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	section := func(title string) {
		sections = append(sections, "", separator, "", headerStyle.Render(title))
	}

	section("Description")
	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	if len(task.Attachments) > 0 {
		section(fmt.Sprintf("Attachments (%d)", len(task.Attachments)))
		for _, a := range task.Attachments {
			sections = append(sections, fmt.Sprintf("📎 %s  %s", a.Name,
				theme.HelpStyle.Render(fmt.Sprintf("%s, %d bytes", a.Type, a.Size))))
		}
	}

	if len(task.Comments) > 0 {
		section(fmt.Sprintf("Comments (%d)", len(task.Comments)))
		authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		for _, c := range task.Comments {
			sections = append(sections,
				authorStyle.Render(c.Author)+"  "+timeStyle.Render(c.Date.Format("2006-01-02 15:04")),
				c.Text,
				"")
		}
	}

	if len(task.History) > 0 {
		section("History")
		for _, h := range task.History {
			sections = append(sections, theme.HelpStyle.Render(h.Date.Format("2006-01-02 15:04"))+"  "+h.Action)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(d Detail) {
	m.task = &d
	m.commenting = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Refresh re-renders a new version of the shown task, keeping the scroll
// position.
func (m *Model) Refresh(d Detail) {
	if m.task == nil || m.task.Task.ID != d.Task.ID {
		return
	}
	m.task = &d
	m.viewport.SetContent(m.renderContent())
}

// CurrentID returns the id of the shown task, or "".
func (m Model) CurrentID() string {
	if m.task == nil {
		return ""
	}
	return m.task.Task.ID
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.comment.Width = width - 6
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
