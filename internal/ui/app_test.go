package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/sweep"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/taskform"
	"github.com/nhle/taskboard/tests/testutil"
)

func newTestModel(t *testing.T) (Model, *app.Service) {
	t.Helper()
	clock := testutil.NewClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, err := app.New(context.Background(), testutil.NewTestStore(t), app.Options{
		Logger: logger.Nop(),
		Clock:  clock.Now,
		IDs:    testutil.SequentialIDs("id"),
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	sched := sweep.New(svc, model.ScheduleConfig{}, logger.Nop())
	m := New(svc, sched)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), svc
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestStatusNeighbour(t *testing.T) {
	if s, ok := statusNeighbour(model.StatusTodo, 1); !ok || s != model.StatusInProgress {
		t.Errorf("todo +1 = %v %v", s, ok)
	}
	if _, ok := statusNeighbour(model.StatusTodo, -1); ok {
		t.Error("todo has no left neighbour")
	}
	if _, ok := statusNeighbour(model.StatusDone, 1); ok {
		t.Error("done has no right neighbour")
	}
}

func TestNewKeyOpensForm(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "n")
	if m.currentView != ViewForm {
		t.Fatalf("view = %v, want form", m.currentView)
	}
	next, _ := m.Update(taskform.CancelMsg{})
	m = next.(Model)
	if m.currentView != ViewBoard {
		t.Errorf("view after cancel = %v, want board", m.currentView)
	}
}

func TestHelpToggles(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "?")
	if m.currentView != ViewHelp {
		t.Fatalf("view = %v, want help", m.currentView)
	}
	m, _ = press(t, m, "esc")
	if m.currentView != ViewBoard {
		t.Errorf("view = %v, want board", m.currentView)
	}
}

func TestCreateTaskCommand(t *testing.T) {
	m, svc := newTestModel(t)
	msg := m.createTask(board.TaskInput{Name: "Write report", Date: "2025-03-11", CategoryID: svc.Categories()[0].ID})()
	res, ok := msg.(resultMsg)
	if !ok || res.err != nil {
		t.Fatalf("createTask = %#v", msg)
	}
	if !strings.Contains(res.text, "Write report") {
		t.Errorf("text = %q", res.text)
	}
	if n := len(svc.Tasks(query.Filter{}, query.SortName)); n != 1 {
		t.Errorf("board holds %d tasks, want 1", n)
	}
}

func TestToggleBlockedNamesDependencies(t *testing.T) {
	m, svc := newTestModel(t)
	ctx := context.Background()
	dep, err := svc.CreateTask(ctx, board.TaskInput{Name: "Buy paint", Date: "2025-03-10", CategoryID: svc.Categories()[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	task, err := svc.CreateTask(ctx, board.TaskInput{Name: "Paint wall", Date: "2025-03-10", CategoryID: dep.CategoryID, Dependencies: []string{dep.ID}})
	if err != nil {
		t.Fatal(err)
	}

	res := m.toggleCompleted(task.ID)().(resultMsg)
	if res.err == nil || !strings.Contains(res.err.Error(), "Buy paint") {
		t.Fatalf("err = %v, want blocked by Buy paint", res.err)
	}
	if got, _ := svc.Task(task.ID); got.Completed {
		t.Error("blocked task was completed")
	}
}

func TestFilterCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m.executeCommand(command.Command{Name: "filter", Args: []string{"status", "done"}})
	if m.board.Filter().Status != model.StatusDone {
		t.Errorf("filter = %+v", m.board.Filter())
	}

	m.executeCommand(command.Command{Name: "filter", Args: []string{"status", "bogus"}})
	if !strings.Contains(m.message, "unknown status") {
		t.Errorf("message = %q", m.message)
	}

	m.executeCommand(command.Command{Name: "clear"})
	if !m.board.Filter().IsZero() {
		t.Errorf("filter after clear = %+v", m.board.Filter())
	}
}

func TestFilterDateToday(t *testing.T) {
	m, _ := newTestModel(t)
	m.executeCommand(command.Command{Name: "filter", Args: []string{"date", "today"}})
	if got := m.board.Filter().Date; got != "2025-03-10" {
		t.Errorf("date filter = %q", got)
	}
}

func TestThemeCommandValidates(t *testing.T) {
	m, _ := newTestModel(t)
	if cmd := m.executeCommand(command.Command{Name: "theme", Args: []string{"pink"}}); cmd != nil {
		t.Error("invalid theme returned a command")
	}
	if !strings.Contains(m.message, "usage") {
		t.Errorf("message = %q", m.message)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	m, svc := newTestModel(t)
	task, err := svc.CreateTask(context.Background(), board.TaskInput{Name: "Obsolete", Date: "2025-03-10", CategoryID: svc.Categories()[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	m.pendingDelete = &pendingDelete{id: task.ID, name: task.Name}

	m, cmd := press(t, m, "n")
	if cmd != nil || m.pendingDelete != nil {
		t.Fatal("declining still deleted")
	}
	if _, ok := svc.Task(task.ID); !ok {
		t.Fatal("task gone after declining")
	}

	m.pendingDelete = &pendingDelete{id: task.ID, name: task.Name}
	_, cmd = press(t, m, "y")
	if cmd == nil {
		t.Fatal("confirming returned no command")
	}
	cmd()
	if _, ok := svc.Task(task.ID); ok {
		t.Error("task still present after confirming")
	}
}

func TestSweepSummary(t *testing.T) {
	r := sweep.Result{Spawned: make([]model.Task, 2), Archived: []string{"a"}}
	if got := sweepSummary(r); got != "2 recurring task(s), 1 archived" {
		t.Errorf("summary = %q", got)
	}
}

func TestStatusLinePrecedence(t *testing.T) {
	m, _ := newTestModel(t)
	m.message = "saved"
	if got := m.statusLine(); got.Message != "saved" || got.Prompt != "" {
		t.Errorf("line = %+v", got)
	}
	m.pendingDelete = &pendingDelete{id: "x", name: "Old"}
	if got := m.statusLine(); !strings.Contains(got.Prompt, `"Old"`) {
		t.Errorf("prompt = %q", got.Prompt)
	}
	bar := m.layout.RenderStatusBar(m.statusLine())
	if !strings.Contains(bar, "delete") || strings.Contains(bar, "saved") {
		t.Errorf("status bar = %q", bar)
	}
}

func TestBannerShowsUnread(t *testing.T) {
	l := NewLayout(80, 24)
	out := l.RenderBanner(Banner{View: "Board", Unread: 3, Sweep: "idle"})
	for _, want := range []string{"Taskboard", "Board", "3 new", "idle"} {
		if !strings.Contains(out, want) {
			t.Errorf("banner %q misses %q", out, want)
		}
	}
	if h := l.ContentHeight(); h != 22 {
		t.Errorf("content height = %d, want 22", h)
	}
}
