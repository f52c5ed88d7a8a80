package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/report"
	"github.com/nhle/taskboard/internal/transfer"
	"github.com/nhle/taskboard/internal/ui/command"
)

// executeCommand handles a line from the command palette.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Name {
	case "filter":
		f, err := m.applyFilter(m.board.Filter(), c.Arg(0), c.Rest(1))
		if err != nil {
			m.message = err.Error()
			return nil
		}
		m.currentView = ViewBoard
		return m.board.SetFilter(f)

	case "search":
		f := m.board.Filter()
		f.Search = c.Rest(0)
		m.currentView = ViewBoard
		return m.board.SetFilter(f)

	case "sort":
		k, err := query.ParseSortKey(c.Arg(0))
		if err != nil {
			m.message = err.Error()
			return nil
		}
		m.currentView = ViewBoard
		return m.board.SetSortKey(k)

	case "clear":
		m.message = ""
		return m.board.SetFilter(query.Filter{})

	case "export":
		return m.export(c.Arg(0))

	case "import":
		return m.importFile(c.Arg(0), strings.EqualFold(c.Arg(1), "replace"))

	case "report":
		return m.report(c.Arg(0), c.Arg(1))

	case "note":
		date := m.today()
		if m.currentView == ViewCalendar {
			date = m.calendarView.Cursor().Format(model.DateLayout)
		}
		return m.setNote(date, c.Rest(0))

	case "theme":
		t := strings.ToLower(c.Arg(0))
		if t != "light" && t != "dark" {
			m.message = "usage: theme <light|dark>"
			return nil
		}
		return m.setTheme(t)

	case "sweep":
		m.message = "running sweeps..."
		return m.runSweeps()

	case "archive":
		m.currentView = ViewArchive
		return m.loadArchive()

	case "contacts":
		m.currentView = ViewContacts
		return m.contactView.Init()

	case "quit":
		m.sched.Stop()
		return tea.Quit

	default:
		m.message = fmt.Sprintf("unknown command %q", c.Name)
		return nil
	}
}

// applyFilter sets one criterion of f from a palette argument.
func (m Model) applyFilter(f query.Filter, field, value string) (query.Filter, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case "status":
		s := model.Status(strings.ToLower(value))
		if s != "" && !s.Valid() {
			return f, fmt.Errorf("unknown status %q", value)
		}
		f.Status = s
	case "priority":
		p := model.Priority(strings.ToLower(value))
		if p != "" && !p.Valid() {
			return f, fmt.Errorf("unknown priority %q", value)
		}
		f.Priority = p
	case "category":
		f.CategoryID = ""
		if value != "" {
			c, ok := m.svc.ResolveCategory(value)
			if !ok {
				return f, fmt.Errorf("unknown category %q", value)
			}
			f.CategoryID = c.ID
		}
	case "date":
		if strings.EqualFold(value, "today") {
			value = m.today()
		}
		f.Date = value
	case "assignee":
		f.Assignee = ""
		if value != "" {
			c, ok := m.svc.ResolveContact(value)
			if !ok {
				return f, fmt.Errorf("unknown contact %q", value)
			}
			f.Assignee = c.ID
		}
	default:
		return f, fmt.Errorf("usage: filter <status|priority|category|date|assignee> <value>")
	}
	return f, nil
}

// export writes the board in the format named by the file extension. A
// JSON export without a filter is a full backup including the archive.
func (m Model) export(path string) tea.Cmd {
	if path == "" {
		return result("usage: export <file.json|file.csv|file.xlsx>", nil)
	}
	svc := m.svc
	f, sortKey := m.board.Filter(), m.board.SortKey()
	return func() tea.Msg {
		out, err := os.Create(path)
		if err != nil {
			return resultMsg{err: fmt.Errorf("creating %s: %w", path, err)}
		}
		defer out.Close()

		tasks := svc.Tasks(f, sortKey)
		n := len(tasks)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			if f.IsZero() {
				tasks = nil
			}
			err = svc.ExportJSON(context.Background(), out, tasks)
		case ".csv":
			err = svc.ExportCSV(out, tasks)
		case ".xlsx":
			err = svc.ExportXLSX(out, tasks)
		default:
			err = fmt.Errorf("unsupported export format %q", filepath.Ext(path))
		}
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: fmt.Sprintf("exported %d task(s) to %s", n, path)}
	}
}

// importFile merges a CSV or JSON file. A full backup replaces the board
// only when replace is set; otherwise it is merged.
func (m Model) importFile(path string, replace bool) tea.Cmd {
	if path == "" {
		return result("usage: import <file.json|file.csv> [replace]", nil)
	}
	svc := m.svc
	return func() tea.Msg {
		in, err := os.Open(path)
		if err != nil {
			return resultMsg{err: fmt.Errorf("opening %s: %w", path, err)}
		}
		defer in.Close()

		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			n, err := svc.ImportCSV(context.Background(), in)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{text: fmt.Sprintf("imported %d task(s)", n)}
		case ".json":
			confirm := func(transfer.Summary) (bool, error) { return replace, nil }
			res, err := svc.ImportJSON(context.Background(), in, confirm)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{text: fmt.Sprintf("%s import: %d task(s), %d categories", res.Mode, res.Tasks, res.Categories)}
		default:
			return resultMsg{err: fmt.Errorf("unsupported import format %q", filepath.Ext(path))}
		}
	}
}

// report opens the dashboard on the period, or writes the report to path.
func (m *Model) report(periodArg, path string) tea.Cmd {
	period, err := report.ParsePeriod(periodArg)
	if err != nil {
		m.message = err.Error()
		return nil
	}
	if path == "" {
		m.dashboardView.SetPeriod(period)
		m.currentView = ViewDashboard
		return nil
	}

	var renderer report.Renderer = report.Text{}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		renderer = report.XLSX{}
	}
	svc := m.svc
	return func() tea.Msg {
		out, err := os.Create(path)
		if err != nil {
			return resultMsg{err: fmt.Errorf("creating %s: %w", path, err)}
		}
		defer out.Close()
		if err := svc.RenderReport(out, period, renderer); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: fmt.Sprintf("%s written to %s", period.Title(), path)}
	}
}

func (m Model) setNote(date, text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.SetNote(context.Background(), date, text); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: "note saved for " + date}
	}
}

func (m Model) setTheme(theme string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.SetTheme(context.Background(), theme); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: "theme set to " + theme}
	}
}

func result(text string, err error) tea.Cmd {
	return func() tea.Msg { return resultMsg{text: text, err: err} }
}
