package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnStyle frames one kanban column.
var ColumnStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedColumnStyle frames the kanban column holding the cursor.
var FocusedColumnStyle = ColumnStyle.
	BorderForeground(ColorBlue)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders completed tasks.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// BlockedStyle marks tasks waiting on dependencies.
var BlockedStyle = lipgloss.NewStyle().
	Foreground(ColorOrange).
	Bold(true)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTodo:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusReview:
		return base.Foreground(ColorMagenta)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given priority.
func PriorityStyle(priority model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityUrgent:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// DateStyle colours a due date by how close it is.
func DateStyle(state overview.DateState) lipgloss.Style {
	switch state {
	case overview.DateOverdue:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case overview.DateWarning:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorGray)
	}
}

// SwatchStyle renders a block in a category or contact colour.
func SwatchStyle(hex string) lipgloss.Style {
	if hex == "" {
		return lipgloss.NewStyle().Foreground(ColorGray)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
