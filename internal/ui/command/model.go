package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Command is a parsed palette entry: the verb and its arguments.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument, or "".
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Rest joins the arguments from i on.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// CancelMsg is emitted when the palette is closed without a command.
type CancelMsg struct{}

// Spec describes one palette command for the hint list.
type Spec struct {
	Name  string
	Usage string
	Help  string
}

// Specs lists the commands the palette understands.
var Specs = []Spec{
	{"filter", "filter <status|priority|category|date|assignee> <value>", "narrow the board"},
	{"search", "search <text>", "search names and descriptions"},
	{"sort", "sort <name|date-asc|date-desc|priority|status|category>", "order the columns"},
	{"clear", "clear", "drop every filter"},
	{"export", "export <file.json|file.csv|file.xlsx>", "export the board"},
	{"import", "import <file.json|file.csv> [replace]", "merge a file, or replace the board from a backup"},
	{"report", "report <weekly|monthly> [file.xlsx]", "write a report"},
	{"note", "note <text>", "set today's note"},
	{"theme", "theme <light|dark>", "save the theme preference"},
	{"sweep", "sweep", "run reminders, recurrence and archive now"},
	{"archive", "archive", "show the archive"},
	{"contacts", "contacts", "manage contacts"},
	{"quit", "quit", "leave taskboard"},
}

// Parse splits a palette line into a Command. Aliases resolve to their
// canonical name.
func Parse(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	name := strings.ToLower(fields[0])
	switch name {
	case "q":
		name = "quit"
	case "f":
		name = "filter"
	case "s":
		name = "sort"
	case "/":
		name = "search"
	}
	return Command{Name: name, Args: fields[1:]}, true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			if c, ok := Parse(line); ok {
				return m, func() tea.Msg {
					return CommandMsg(c)
				}
			}
			return m, cancel
		case "esc":
			m.input.Reset()
			return m, cancel
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func cancel() tea.Msg { return CancelMsg{} }

// View renders the command palette with the commands matching the input.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	prefix := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if i := strings.IndexByte(prefix, ' '); i >= 0 {
		prefix = prefix[:i]
	}
	usage := lipgloss.NewStyle().Foreground(theme.ColorBlue)
	var hints []string
	for _, s := range Specs {
		if strings.HasPrefix(s.Name, prefix) {
			hints = append(hints, usage.Render(s.Usage)+"  "+theme.HelpStyle.Render(s.Help))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", strings.Join(hints, "\n"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
