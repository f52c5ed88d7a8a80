package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Layout splits the terminal into a one-line banner, the active view and a
// one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the given terminal size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width handed to the active view.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between the banner and the status bar.
func (l Layout) ContentHeight() int {
	if l.Height < 2 {
		return 0
	}
	return l.Height - 2
}

// Banner is the content of the top line.
type Banner struct {
	View   string
	Unread int
	Sweep  string
}

// RenderBanner renders "Taskboard › View" on the left, and the unread
// notification count and sweep state on the right.
func (l Layout) RenderBanner(b Banner) string {
	left := "Taskboard"
	if b.View != "" {
		left += " › " + b.View
	}
	var right []string
	if b.Unread > 0 {
		right = append(right, fmt.Sprintf("● %d new", b.Unread))
	}
	if b.Sweep != "" {
		right = append(right, b.Sweep)
	}
	return l.fill(theme.HeaderStyle, theme.HeaderStyle.Render(left), theme.HeaderStyle.Render(strings.Join(right, "  ")))
}

// StatusLine is the content of the bottom line. Prompt takes precedence
// over Message, which takes precedence over Hints.
type StatusLine struct {
	Prompt  string
	Message string
	Hints   string
}

// RenderStatusBar renders the bottom line, clipped to the terminal width.
func (l Layout) RenderStatusBar(s StatusLine) string {
	style := theme.StatusBarStyle
	text := s.Hints
	switch {
	case s.Prompt != "":
		style = style.Foreground(theme.ColorYellow).Bold(true)
		text = s.Prompt
	case s.Message != "":
		style = style.Foreground(theme.ColorWhite)
		text = s.Message
	}
	return l.fill(style, style.MaxWidth(l.Width).Render(text), "")
}

// fill pads the gap between left and right with the style's background.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// Compose stacks banner, content and status bar.
func (l Layout) Compose(banner, content, status string) string {
	return lipgloss.JoinVertical(lipgloss.Left, banner, content, status)
}
