// Package entitymgr is the list/create/edit/delete screen shared by
// categories and contacts.
package entitymgr

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg signals the parent to close the manager.
type CloseMsg struct{}

// ChangedMsg signals that entries were modified.
type ChangedMsg struct{}

// Entry is one managed record.
type Entry struct {
	ID    string
	Name  string
	Email string
	Color string
	// Count is the number of tasks using the entry.
	Count int
}

// Backend persists entries of one kind.
type Backend interface {
	// Title labels the screen ("Categories", "Contacts").
	Title() string
	// HasEmail enables the email field.
	HasEmail() bool
	// DeleteNote explains what deletion does to tasks.
	DeleteNote() string
	List() []Entry
	// Save creates the entry when its ID is empty.
	Save(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	email   string
	color   string
	confirm bool
}

type entriesLoadedMsg struct {
	entries []Entry
}

type savedMsg struct{ err error }
type deletedMsg struct{ err error }

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// defaultColor is offered for new entries.
const defaultColor = "#6BCB77"

// Model is the Bubble Tea model for entry management.
type Model struct {
	mode        mode
	backend     Backend
	keys        *keys.KeyMap
	entries     []Entry
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new manager over backend.
func New(b Backend, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		backend: b,
		keys:    k,
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init loads the entries.
func (m Model) Init() tea.Cmd {
	return m.loadEntries()
}

// Editing reports whether a form has focus.
func (m Model) Editing() bool { return m.mode != modeList }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case entriesLoadedMsg:
		m.entries = msg.entries
		if m.selectedIdx >= len(m.entries) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.entries) - 1
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Saved"
		}
		m.mode = modeList
		return m, tea.Batch(m.loadEntries(), func() tea.Msg { return ChangedMsg{} })

	case deletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Deleted"
		}
		m.mode = modeList
		return m, tea.Batch(m.loadEntries(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.entries) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.entries)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.entries) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.entries) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{color: defaultColor}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.selectedIdx]
		m.editingID = e.ID
		*m.fb = formBindings{name: e.Name, email: e.Email, color: e.Color}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.entries) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Value(&m.fb.name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
	}
	if m.backend.HasEmail() {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("optional").
			Value(&m.fb.email))
	}
	fields = append(fields, huh.NewInput().
		Title("Color").
		Placeholder(defaultColor).
		Value(&m.fb.color).
		Validate(validateColor))

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validateColor(s string) error {
	s = strings.TrimSpace(s)
	if s != "" && !hexColor.MatchString(s) {
		return fmt.Errorf("use #rrggbb")
	}
	return nil
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.entries) {
		name = m.entries[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", name)).
				Description(m.backend.DeleteNote()).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.saveEntry()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			e := m.entries[m.selectedIdx]
			return m, m.deleteEntry(e.ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(m.backend.Title()))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("Nothing here yet. Press 'n' to create one."))
	} else {
		for i, e := range m.entries {
			label := fmt.Sprintf("%s %s", theme.SwatchStyle(e.Color).Render("●"), e.Name)
			if e.Email != "" {
				label += theme.HelpStyle.Render(" <" + e.Email + ">")
			}
			label += theme.HelpStyle.Render(fmt.Sprintf("  %d task(s)", e.Count))

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e edit | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

func (m Model) loadEntries() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		return entriesLoadedMsg{entries: b.List()}
	}
}

func (m Model) saveEntry() tea.Cmd {
	b := m.backend
	e := Entry{
		ID:    m.editingID,
		Name:  strings.TrimSpace(m.fb.name),
		Email: strings.TrimSpace(m.fb.email),
		Color: strings.TrimSpace(m.fb.color),
	}
	return func() tea.Msg {
		return savedMsg{err: b.Save(context.Background(), e)}
	}
}

func (m Model) deleteEntry(id string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		return deletedMsg{err: b.Delete(context.Background(), id)}
	}
}
