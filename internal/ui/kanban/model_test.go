package kanban

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/query"
)

type fakeSource struct {
	tasks   []model.Task
	blocked map[string]bool
	now     time.Time
}

func (f fakeSource) Tasks(flt query.Filter, _ query.SortKey) []model.Task {
	return query.Apply(f.tasks, flt)
}

func (f fakeSource) Blocking(id string) []model.Task {
	if f.blocked[id] {
		return []model.Task{{ID: "dep"}}
	}
	return nil
}

func (f fakeSource) Categories() []model.Category {
	return []model.Category{{ID: "c1", Name: "Travail", Color: "#3498db"}}
}

func (f fakeSource) Now() time.Time { return f.now }

func newSource() fakeSource {
	return fakeSource{
		now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local),
		tasks: []model.Task{
			{ID: "a", Name: "Write report", Date: "2025-03-05", Status: model.StatusTodo, CategoryID: "c1"},
			{ID: "b", Name: "Review PR", Date: "2025-03-11", Status: model.StatusReview},
			{ID: "c", Name: "Ship", Date: "2025-03-20", Status: model.StatusDone, Completed: true},
		},
		blocked: map[string]bool{"b": true},
	}
}

func TestBuildColumnsGroupsAndDecorates(t *testing.T) {
	cols := BuildColumns(newSource(), query.Filter{}, query.SortDateAsc)
	if len(cols) != len(model.Statuses) {
		t.Fatalf("got %d columns, want %d", len(cols), len(model.Statuses))
	}
	if len(cols[0]) != 1 || cols[0][0].Task.ID != "a" {
		t.Fatalf("todo column = %+v", cols[0])
	}
	todo := cols[0][0]
	if todo.CategoryName != "Travail" || todo.DateState != overview.DateOverdue {
		t.Errorf("todo card = %+v", todo)
	}
	review := cols[2][0]
	if !review.Blocked || review.DateState != overview.DateWarning {
		t.Errorf("review card = %+v", review)
	}
	if len(cols[1]) != 0 || len(cols[3]) != 1 {
		t.Errorf("unexpected column sizes: %d %d", len(cols[1]), len(cols[3]))
	}
}

func TestBuildColumnsAppliesFilter(t *testing.T) {
	cols := BuildColumns(newSource(), query.Filter{Search: "ship"}, query.SortDateAsc)
	total := 0
	for _, c := range cols {
		total += len(c)
	}
	if total != 1 || cols[3][0].Task.ID != "c" {
		t.Errorf("filtered board = %+v", cols)
	}
}

func TestFocusMovesAcrossColumns(t *testing.T) {
	m := New(newSource(), keys.DefaultKeyMap(), 120, 30)
	m, _ = m.Update(TasksLoadedMsg{Columns: BuildColumns(newSource(), query.Filter{}, query.SortDateAsc)})

	if item, ok := m.SelectedItem(); !ok || item.Task.ID != "a" {
		t.Fatalf("initial selection = %+v, %v", item, ok)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.FocusedStatus() != model.StatusInProgress {
		t.Fatalf("focus = %s, want inprogress", m.FocusedStatus())
	}
	if _, ok := m.SelectedItem(); ok {
		t.Error("empty column should have no selection")
	}

	m.FocusStatus(model.StatusDone)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.FocusedStatus() != model.StatusDone {
		t.Errorf("focus moved past the last column: %s", m.FocusedStatus())
	}
}

func TestCycleSortWraps(t *testing.T) {
	m := New(newSource(), keys.DefaultKeyMap(), 120, 30)
	start := m.SortKey()
	for range query.SortKeys {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	if m.SortKey() != start {
		t.Errorf("sort key after full cycle = %s, want %s", m.SortKey(), start)
	}
}
