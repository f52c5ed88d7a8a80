package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Run the background sweeps now
	Refresh key.Binding

	// Task actions
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Toggle     key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	Archive    key.Binding
	Comment    key.Binding
	Dashboard  key.Binding
	Calendar   key.Binding
	Categories key.Binding

	// Sort
	CycleSort key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next column"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run sweeps"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete task"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "toggle done"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "move to previous column"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "move to next column"),
		),
		Archive: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "archive task"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dashboard"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "calendar"),
		),
		Categories: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "categories"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit},
		{k.Search, k.CycleSort, k.Command, k.Help, k.Refresh},
		{k.New, k.Edit, k.Delete, k.Toggle, k.MoveLeft, k.MoveRight, k.Archive},
		{k.Comment, k.Dashboard, k.Calendar, k.Categories},
	}
}
