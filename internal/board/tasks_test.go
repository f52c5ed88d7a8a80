package board

import (
	"strings"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestCreateTaskDefaults(t *testing.T) {
	s := newTestState(t)

	task, err := s.CreateTask(TaskInput{Name: "  Write report ", Date: "2025-03-12", CategoryID: "cat"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Name != "Write report" {
		t.Errorf("Name = %q, want trimmed", task.Name)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("Status = %q, want todo", task.Status)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want medium", task.Priority)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if len(task.History) != 1 || task.History[0].Action != ActionCreated {
		t.Errorf("History = %+v, want one %q entry", task.History, ActionCreated)
	}
	if !task.CreatedAt.Equal(testNow) || !task.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps = %v/%v, want %v", task.CreatedAt, task.UpdatedAt, testNow)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    TaskInput
		field string
	}{
		{"empty name", TaskInput{Name: "  ", Date: "2025-03-10", CategoryID: "c"}, "name"},
		{"missing date", TaskInput{Name: "a", CategoryID: "c"}, "date"},
		{"bad date", TaskInput{Name: "a", Date: "10/03/2025", CategoryID: "c"}, "date"},
		{"missing category", TaskInput{Name: "a", Date: "2025-03-10"}, "categoryId"},
		{"bad status", TaskInput{Name: "a", Date: "2025-03-10", CategoryID: "c", Status: "blocked"}, "status"},
		{"bad priority", TaskInput{Name: "a", Date: "2025-03-10", CategoryID: "c", Priority: "critical"}, "priority"},
		{"bad recurrence", TaskInput{Name: "a", Date: "2025-03-10", CategoryID: "c", Recurrence: "yearly"}, "recurrence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(t)
			_, err := s.CreateTask(tt.in)
			if !IsValidationError(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("err = %q, want mention of %q", err, tt.field)
			}
			if len(s.Tasks) != 0 {
				t.Errorf("rejected input must not be stored, have %d tasks", len(s.Tasks))
			}
		})
	}
}

func TestCreateTaskNormalizesRecurrenceNone(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a", Recurrence: "none"})
	task, _ := s.Task(id)
	if task.Recurrence != model.RecurrenceNone {
		t.Errorf("Recurrence = %q, want empty", task.Recurrence)
	}
}

func TestCreateTaskDedupesReferences(t *testing.T) {
	s := newTestState(t)
	dep := mustCreate(t, s, TaskInput{Name: "dep"})
	id := mustCreate(t, s, TaskInput{
		Name:         "a",
		Assignees:    []string{"c1", "c1", " ", "c2"},
		Dependencies: []string{dep, dep},
	})
	task, _ := s.Task(id)
	if len(task.Assignees) != 2 {
		t.Errorf("Assignees = %v, want 2 unique", task.Assignees)
	}
	if len(task.Dependencies) != 1 {
		t.Errorf("Dependencies = %v, want 1", task.Dependencies)
	}
}

func TestDependencyCycleRejected(t *testing.T) {
	s := newTestState(t)
	a := mustCreate(t, s, TaskInput{Name: "a"})
	b := mustCreate(t, s, TaskInput{Name: "b", Dependencies: []string{a}})

	_, found, err := s.UpdateTask(a, TaskInput{Name: "a", Date: "2025-03-10", CategoryID: "cat", Dependencies: []string{b}})
	if !found {
		t.Fatal("task a should be found")
	}
	if !IsValidationError(err) {
		t.Fatalf("err = %v, want ValidationError for cycle", err)
	}

	_, _, err = s.UpdateTask(a, TaskInput{Name: "a", Date: "2025-03-10", CategoryID: "cat", Dependencies: []string{a}})
	if !IsValidationError(err) {
		t.Fatalf("err = %v, want ValidationError for self-dependency", err)
	}

	task, _ := s.Task(a)
	if len(task.Dependencies) != 0 {
		t.Errorf("rejected update must not apply, deps = %v", task.Dependencies)
	}
}

func TestUpdateTaskHistoryDiff(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "old", Date: "2025-03-10"})

	task, found, err := s.UpdateTask(id, TaskInput{
		Name:       "new",
		Date:       "2025-03-15",
		CategoryID: "cat",
		Status:     model.StatusInProgress,
		Priority:   model.PriorityHigh,
	})
	if err != nil || !found {
		t.Fatalf("UpdateTask: found=%v err=%v", found, err)
	}
	if len(task.History) != 2 {
		t.Fatalf("History len = %d, want 2", len(task.History))
	}
	want := `Nom modifié de "old" à "new", Statut modifié de "À faire" à "En cours", ` +
		`Priorité modifiée de "Moyenne" à "Haute", Date modifiée de "10/03/2025" à "15/03/2025"`
	if got := task.History[1].Action; got != want {
		t.Errorf("history line\n got %s\nwant %s", got, want)
	}
}

func TestUpdateTaskWithoutChangesAddsNoHistory(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "same", Description: "x"})

	task, _, err := s.UpdateTask(id, TaskInput{Name: "same", Description: "y", Date: "2025-03-10", CategoryID: "cat"})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(task.History) != 1 {
		t.Errorf("History len = %d, want 1", len(task.History))
	}
	if task.Description != "y" {
		t.Errorf("Description = %q, want y", task.Description)
	}
}

func TestUpdateTaskAppendsAttachments(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a", Attachments: []model.Attachment{{Name: "one.txt"}}})

	task, _, err := s.UpdateTask(id, TaskInput{
		Name: "a", Date: "2025-03-10", CategoryID: "cat",
		Attachments: []model.Attachment{{Name: "two.txt"}},
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(task.Attachments) != 2 {
		t.Errorf("Attachments = %v, want both kept", task.Attachments)
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	s := newTestState(t)
	_, found, err := s.UpdateTask("missing", TaskInput{Name: "a"})
	if found || err != nil {
		t.Errorf("found=%v err=%v, want false/nil", found, err)
	}
}

func TestSetCompleted(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	task, ok := s.SetCompleted(id, true)
	if !ok {
		t.Fatal("SetCompleted reported not found")
	}
	if !task.Completed || task.Status != model.StatusDone {
		t.Errorf("completed=%v status=%q, want true/done", task.Completed, task.Status)
	}
	if last := task.History[len(task.History)-1].Action; last != ActionCompleted {
		t.Errorf("last history = %q, want %q", last, ActionCompleted)
	}

	task, _ = s.ToggleCompleted(id)
	if task.Completed {
		t.Error("toggle should reopen")
	}
	if last := task.History[len(task.History)-1].Action; last != ActionReopened {
		t.Errorf("last history = %q, want %q", last, ActionReopened)
	}

	if _, ok := s.SetCompleted("missing", true); ok {
		t.Error("unknown id should report false")
	}
}

func TestChangeStatus(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	task, found, err := s.ChangeStatus(id, model.StatusReview)
	if err != nil || !found {
		t.Fatalf("ChangeStatus: found=%v err=%v", found, err)
	}
	if task.Status != model.StatusReview {
		t.Errorf("Status = %q, want review", task.Status)
	}
	if len(task.History) != 2 {
		t.Fatalf("History len = %d, want 2", len(task.History))
	}
	if got := task.History[1].Action; got != `Statut modifié de "À faire" à "À revoir"` {
		t.Errorf("history line = %q", got)
	}

	if _, _, err := s.ChangeStatus(id, "blocked"); !IsValidationError(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestArchiveTaskRequiresCompletion(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	if s.ArchiveTask(id) {
		t.Fatal("incomplete task must not be archived")
	}
	s.SetCompleted(id, true)
	if !s.ArchiveTask(id) {
		t.Fatal("completed task should be archived")
	}

	if _, ok := s.Task(id); ok {
		t.Error("archived task still listed as active")
	}
	archived, ok := s.ArchivedTask(id)
	if !ok {
		t.Fatal("task missing from archive")
	}
	if archived.ArchivedAt == nil || !archived.ArchivedAt.Equal(testNow) {
		t.Errorf("ArchivedAt = %v, want %v", archived.ArchivedAt, testNow)
	}
	if last := archived.History[len(archived.History)-1].Action; last != ActionArchived {
		t.Errorf("last history = %q, want %q", last, ActionArchived)
	}
}

func TestArchiveWhereKeepsIDsDisjoint(t *testing.T) {
	s := newTestState(t)
	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		ids = append(ids, mustCreate(t, s, TaskInput{Name: name}))
	}
	s.SetCompleted(ids[0], true)
	s.SetCompleted(ids[2], true)

	moved := s.ArchiveWhere(func(t model.Task) bool { return t.Completed }, ActionAutoArchived)
	if len(moved) != 2 {
		t.Fatalf("moved = %v, want 2 ids", moved)
	}

	seen := map[string]int{}
	for _, task := range s.Tasks {
		seen[task.ID]++
	}
	for _, task := range s.Archived {
		seen[task.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s present %d times across collections", id, n)
		}
	}
	if len(s.Tasks) != 2 || len(s.Archived) != 2 {
		t.Errorf("active=%d archived=%d, want 2/2", len(s.Tasks), len(s.Archived))
	}
}

func TestUpdateArchivedTask(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})
	s.SetCompleted(id, true)
	s.ArchiveTask(id)

	_, found, err := s.UpdateTask(id, TaskInput{Name: "renamed", Date: "2025-03-10", CategoryID: "cat", Status: model.StatusDone})
	if err != nil || !found {
		t.Fatalf("UpdateTask on archived: found=%v err=%v", found, err)
	}
	archived, _ := s.ArchivedTask(id)
	if archived.Name != "renamed" {
		t.Errorf("Name = %q, want renamed", archived.Name)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	if s.DeleteTask("missing") {
		t.Error("deleting unknown id should report false")
	}
	if !s.DeleteTask(id) {
		t.Fatal("DeleteTask reported false")
	}
	if len(s.Tasks) != 0 {
		t.Errorf("tasks = %d, want 0", len(s.Tasks))
	}
}

func TestAppendTaskReassignsTakenID(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	added := s.AppendTask(model.Task{ID: id, Name: "dup"})
	if added.ID == id {
		t.Error("colliding id should be replaced")
	}
	added = s.AppendTask(model.Task{Name: "blank"})
	if added.ID == "" {
		t.Error("blank id should be assigned")
	}
}

func TestAddComment(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})

	c, found, err := s.AddComment(id, " looks good ", "")
	if err != nil || !found {
		t.Fatalf("AddComment: found=%v err=%v", found, err)
	}
	if c.Text != "looks good" || c.Author != "User" {
		t.Errorf("comment = %+v", c)
	}
	if _, _, err := s.AddComment(id, "  ", "me"); !IsValidationError(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
	task, _ := s.Task(id)
	if len(task.Comments) != 1 {
		t.Errorf("Comments = %d, want 1", len(task.Comments))
	}
}

func TestTaskReturnsCopy(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a", Assignees: []string{"c1"}})

	task, _ := s.Task(id)
	task.Assignees[0] = "mutated"
	again, _ := s.Task(id)
	if again.Assignees[0] != "c1" {
		t.Error("mutating a returned task leaked into the state")
	}
}
