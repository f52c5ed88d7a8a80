package taskform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// SubmittedMsg is dispatched when the form is completed. ID is empty for a
// new task.
type SubmittedMsg struct {
	ID    string
	Input board.TaskInput
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// Options are the choices offered by the selectors.
type Options struct {
	Categories []model.Category
	Contacts   []model.Contact
	// Tasks are the candidate dependencies.
	Tasks []model.Task
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name         string
	description  string
	date         string
	categoryID   string
	status       model.Status
	priority     model.Priority
	recurrence   model.Recurrence
	reminders    string
	assignees    []string
	dependencies []string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	editID      string
	attachments []model.Attachment
	opts        Options
	width       int
	height      int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetOptions sets the categories, contacts and tasks for the selectors.
func (m *Model) SetOptions(opts Options) {
	m.opts = opts
}

// StartCreate initializes the form for a new task in status, due today.
func (m *Model) StartCreate(status model.Status, today time.Time) tea.Cmd {
	m.editID = ""
	m.attachments = nil
	*m.fb = formBindings{
		date:     today.Format(model.DateLayout),
		status:   status,
		priority: model.PriorityMedium,
	}
	if len(m.opts.Categories) > 0 {
		m.fb.categoryID = m.opts.Categories[0].ID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editID = t.ID
	m.attachments = t.Attachments
	*m.fb = formBindings{
		name:         t.Name,
		description:  t.Description,
		date:         t.Date,
		categoryID:   t.CategoryID,
		status:       t.Status,
		priority:     t.Priority,
		recurrence:   t.Recurrence,
		reminders:    formatReminders(t.Reminders),
		assignees:    append([]string(nil), t.Assignees...),
		dependencies: append([]string(nil), t.Dependencies...),
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing task.
func (m Model) Editing() bool { return m.editID != "" }

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.Editing() {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	main := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("What needs to be done?").
			Value(&m.fb.name).
			Validate(validateRequired("Name")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
		m.categoryField(),
	}

	statusOpts := make([]huh.Option[model.Status], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOpts[i] = huh.NewOption(s.Label(), s)
	}
	priorityOpts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		priorityOpts[i] = huh.NewOption(p.Label(), p)
	}

	planning := []huh.Field{
		huh.NewSelect[model.Status]().
			Title("Status").
			Options(statusOpts...).
			Value(&m.fb.status),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(priorityOpts...).
			Value(&m.fb.priority),
		huh.NewSelect[model.Recurrence]().
			Title("Recurrence").
			Options(
				huh.NewOption("None", model.RecurrenceNone),
				huh.NewOption(model.RecurrenceDaily.Label(), model.RecurrenceDaily),
				huh.NewOption(model.RecurrenceWeekly.Label(), model.RecurrenceWeekly),
				huh.NewOption(model.RecurrenceMonthly.Label(), model.RecurrenceMonthly),
			).
			Value(&m.fb.recurrence),
		huh.NewInput().
			Title("Reminders").
			Description("Minutes before the due date, comma separated").
			Placeholder("60, 15").
			Value(&m.fb.reminders).
			Validate(validateReminders),
	}

	groups := []*huh.Group{huh.NewGroup(main...), huh.NewGroup(planning...)}

	var people []huh.Field
	if f := m.assigneeField(); f != nil {
		people = append(people, f)
	}
	if f := m.dependencyField(); f != nil {
		people = append(people, f)
	}
	if len(people) > 0 {
		groups = append(groups, huh.NewGroup(people...))
	}

	return huh.NewForm(groups...).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) categoryField() huh.Field {
	opts := []huh.Option[string]{huh.NewOption("None", "")}
	for _, c := range m.opts.Categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return huh.NewSelect[string]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.categoryID)
}

func (m *Model) assigneeField() huh.Field {
	if len(m.opts.Contacts) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.opts.Contacts))
	for i, c := range m.opts.Contacts {
		opts[i] = huh.NewOption(c.Name, c.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assignees)
}

func (m *Model) dependencyField() huh.Field {
	var opts []huh.Option[string]
	for _, t := range m.opts.Tasks {
		if t.ID != m.editID {
			opts = append(opts, huh.NewOption(t.Name, t.ID))
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return huh.NewMultiSelect[string]().
		Title("Depends on").
		Options(opts...).
		Value(&m.fb.dependencies)
}

func (m Model) handleSubmit() tea.Cmd {
	reminders, _ := parseReminders(m.fb.reminders)
	in := board.TaskInput{
		Name:         m.fb.name,
		Description:  m.fb.description,
		Date:         strings.TrimSpace(m.fb.date),
		CategoryID:   m.fb.categoryID,
		Status:       m.fb.status,
		Priority:     m.fb.priority,
		Assignees:    m.fb.assignees,
		Dependencies: m.fb.dependencies,
		Recurrence:   m.fb.recurrence,
		Reminders:    reminders,
		Attachments:  m.attachments,
	}
	id := m.editID
	return func() tea.Msg { return SubmittedMsg{ID: id, Input: in} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateReminders(s string) error {
	_, err := parseReminders(s)
	return err
}

// parseReminders reads a comma separated list of minute offsets.
func parseReminders(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q is not a number of minutes", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func formatReminders(rs []int) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}
