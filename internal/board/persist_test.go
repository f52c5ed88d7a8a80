package board

import (
	"context"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	s.SeedDefaults()
	contact, _ := s.CreateContact("Alice", "", "#111")
	id := mustCreate(t, s, TaskInput{
		Name:       "a",
		CategoryID: s.Categories[0].ID,
		Assignees:  []string{contact.ID},
		Recurrence: model.RecurrenceWeekly,
		Reminders:  []int{15, 60},
	})
	done := mustCreate(t, s, TaskInput{Name: "done"})
	s.SetCompleted(done, true)
	s.ArchiveTask(done)
	_ = s.SetNote("2025-03-10", "note")
	s.SetTheme("dark")
	s.MarkGenerated(id, "2025-03-17")
	s.MarkNotified(id, 15)

	kv := newMemKV()
	if err := s.Save(ctx, kv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if kv.puts != 1 {
		t.Errorf("PutAll called %d times, want 1", kv.puts)
	}

	loaded, err := Load(ctx, kv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Tasks) != 1 || len(loaded.Archived) != 1 {
		t.Fatalf("active=%d archived=%d, want 1/1", len(loaded.Tasks), len(loaded.Archived))
	}
	if len(loaded.Categories) != 3 || len(loaded.Contacts) != 1 {
		t.Errorf("categories=%d contacts=%d", len(loaded.Categories), len(loaded.Contacts))
	}
	if loaded.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", loaded.Theme)
	}
	if loaded.Note("2025-03-10") != "note" {
		t.Error("note lost")
	}
	if loaded.MarkGenerated(id, "2025-03-17") {
		t.Error("recurrence ledger lost across reload")
	}
	if loaded.MarkNotified(id, 15) {
		t.Error("reminder ledger lost across reload")
	}
	if got := loaded.Tasks[0].Reminders; len(got) != 2 {
		t.Errorf("Reminders = %v", got)
	}
}

func TestLoadEmpty(t *testing.T) {
	loaded, err := Load(context.Background(), newMemKV())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Tasks) != 0 || loaded.Theme != "light" {
		t.Errorf("empty load = %+v", loaded)
	}
	if loaded.Notes == nil || loaded.Generated == nil || loaded.Notified == nil {
		t.Error("maps must be initialised")
	}
}

func TestLoadRejectsCorruptValue(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyTasks] = []byte("{not json")
	if _, err := Load(context.Background(), kv); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveWritesEmptyArrays(t *testing.T) {
	kv := newMemKV()
	if err := New().Save(context.Background(), kv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := string(kv.data[KeyTasks]); got != "[]" {
		t.Errorf("tasks = %s, want []", got)
	}
}

func TestPruneLedgers(t *testing.T) {
	s := newTestState(t)
	id := mustCreate(t, s, TaskInput{Name: "a"})
	s.MarkGenerated(id, "2025-03-11")
	s.MarkNotified("gone", 5)

	if n := s.PruneLedgers(); n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if _, ok := s.Generated[LedgerKey(id, "2025-03-11")]; !ok {
		t.Error("live entry pruned")
	}
}

func TestReplaceKeepsLedgersOfSurvivingTasks(t *testing.T) {
	s := newTestState(t)
	kept := mustCreate(t, s, TaskInput{Name: "kept"})
	dropped := mustCreate(t, s, TaskInput{Name: "dropped"})
	s.MarkGenerated(kept, "2025-03-17")
	s.MarkGenerated(dropped, "2025-03-17")
	s.MarkNotified(kept, 15)

	next := New()
	keptTask, _ := s.Task(kept)
	next.Tasks = append(next.Tasks, keptTask)
	next.Generated[LedgerKey(kept, "2025-03-24")] = testNow
	s.Replace(next)

	if s.MarkGenerated(kept, "2025-03-17") {
		t.Error("recurrence entry of a surviving task was reset")
	}
	if s.MarkGenerated(kept, "2025-03-24") {
		t.Error("incoming recurrence entry was dropped")
	}
	if s.MarkNotified(kept, 15) {
		t.Error("reminder entry of a surviving task was reset")
	}
	if _, ok := s.Generated[LedgerKey(dropped, "2025-03-17")]; ok {
		t.Error("entry of a replaced-away task survived")
	}
}
