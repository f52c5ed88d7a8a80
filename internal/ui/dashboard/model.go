package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/report"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg signals the parent to close the dashboard.
type CloseMsg struct{}

// Source computes the dashboard and the periodic reports.
type Source interface {
	Dashboard() overview.Dashboard
	Report(period report.Period) report.Report
}

// Model shows completion counts and the weekly report.
type Model struct {
	source Source
	keys   *keys.KeyMap
	data   overview.Dashboard
	report report.Report
	period report.Period
	bar    progress.Model
	width  int
	height int
}

// New creates a dashboard view.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{
		source: src,
		keys:   k,
		period: report.Weekly,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:  width,
		height: height,
	}
}

// Reload recomputes the figures.
func (m *Model) Reload() {
	m.data = m.source.Dashboard()
	m.report = m.source.Report(m.period)
}

// SetPeriod selects the report period and recomputes.
func (m *Model) SetPeriod(p report.Period) {
	m.period = p
	m.Reload()
}

// Update toggles the report period with tab and closes on esc.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.CycleSort):
		if m.period == report.Weekly {
			m.period = report.Monthly
		} else {
			m.period = report.Weekly
		}
		m.Reload()
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	d := m.data
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	value := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Dashboard"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s%s\n", label.Render("Total"), value.Render(fmt.Sprint(d.Total)))
	fmt.Fprintf(&b, "%s%s\n", label.Render("Completed"), value.Render(fmt.Sprint(d.Completed)))
	fmt.Fprintf(&b, "%s%s\n", label.Render("Active"), value.Render(fmt.Sprint(d.Active)))
	m.bar.Width = max(min(m.width-30, 50), 10)
	fmt.Fprintf(&b, "%s%s %d%%\n\n", label.Render("Completion"),
		m.bar.ViewAs(float64(d.CompletionRate)/100), d.CompletionRate)

	b.WriteString(value.Render("By category"))
	b.WriteString("\n")
	for _, c := range d.ByCategory {
		fmt.Fprintf(&b, "  %s %-16s %d\n", theme.SwatchStyle(c.Color).Render("●"), c.Name, c.Count)
	}
	b.WriteString("\n")
	b.WriteString(value.Render("By status"))
	b.WriteString("\n")
	for _, s := range d.ByStatus {
		fmt.Fprintf(&b, "  %-16s %d\n", s.Label, s.Count)
	}
	b.WriteString("\n")
	b.WriteString(value.Render("By priority"))
	b.WriteString("\n")
	for _, p := range d.ByPriority {
		fmt.Fprintf(&b, "  %-16s %d\n", p.Label, p.Count)
	}

	r := m.report
	b.WriteString("\n")
	b.WriteString(theme.HeaderStyle.Render(r.Period.Title()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s → %s: %d created, %d completed (%d%%)\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
		r.Total, r.Completed, r.CompletionRate)
	b.WriteString(theme.HelpStyle.Render("tab weekly/monthly | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
