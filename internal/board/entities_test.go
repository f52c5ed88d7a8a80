package board

import (
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestSeedDefaults(t *testing.T) {
	s := newTestState(t)
	if !s.SeedDefaults() {
		t.Fatal("empty state should be seeded")
	}
	if len(s.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(s.Categories))
	}
	if s.Categories[0].Name != "Travail" {
		t.Errorf("first category = %q, want Travail", s.Categories[0].Name)
	}
	if s.SeedDefaults() {
		t.Error("seeding twice should be a no-op")
	}
}

func TestCategoryCRUD(t *testing.T) {
	s := newTestState(t)
	c, err := s.CreateCategory(" Home ", "#fff")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Name != "Home" {
		t.Errorf("Name = %q", c.Name)
	}
	if _, err := s.CreateCategory("", "#000"); !IsValidationError(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}

	ok, err := s.UpdateCategory(c.ID, "House", "")
	if err != nil || !ok {
		t.Fatalf("UpdateCategory: ok=%v err=%v", ok, err)
	}
	got, _ := s.Category(c.ID)
	if got.Name != "House" || got.Color != "#fff" {
		t.Errorf("category = %+v, want renamed with colour kept", got)
	}
	if _, ok := s.CategoryByName("House"); !ok {
		t.Error("CategoryByName should find House")
	}

	id := mustCreate(t, s, TaskInput{Name: "a", CategoryID: c.ID})
	if !s.DeleteCategory(c.ID) {
		t.Fatal("DeleteCategory reported false")
	}
	task, _ := s.Task(id)
	if task.CategoryID != c.ID {
		t.Error("deleting a category must not rewrite tasks")
	}
	if name := s.CategoryName(c.ID); name != "" {
		t.Errorf("CategoryName = %q, want empty for deleted category", name)
	}
}

func TestDeleteContactDetachesFromTasks(t *testing.T) {
	s := newTestState(t)
	alice, _ := s.CreateContact("Alice", "alice@example.com", "#111")
	bob, _ := s.CreateContact("Bob", "", "#222")

	active := mustCreate(t, s, TaskInput{Name: "active", Assignees: []string{alice.ID, bob.ID}})
	archived := mustCreate(t, s, TaskInput{Name: "archived", Assignees: []string{alice.ID}})
	s.SetCompleted(archived, true)
	s.ArchiveTask(archived)

	if !s.DeleteContact(alice.ID) {
		t.Fatal("DeleteContact reported false")
	}

	task, _ := s.Task(active)
	if task.HasAssignee(alice.ID) || !task.HasAssignee(bob.ID) {
		t.Errorf("active assignees = %v, want only bob", task.Assignees)
	}
	old, _ := s.ArchivedTask(archived)
	if len(old.Assignees) != 0 {
		t.Errorf("archived assignees = %v, want none", old.Assignees)
	}
	if _, ok := s.Contact(alice.ID); ok {
		t.Error("contact still present")
	}
	if s.DeleteContact("missing") {
		t.Error("unknown contact should report false")
	}
}

func TestUpdateContact(t *testing.T) {
	s := newTestState(t)
	c, _ := s.CreateContact("Alice", "", "#111")

	ok, err := s.UpdateContact(c.ID, "Alice B", " a@b.c ", "")
	if err != nil || !ok {
		t.Fatalf("UpdateContact: ok=%v err=%v", ok, err)
	}
	got, _ := s.Contact(c.ID)
	if got.Name != "Alice B" || got.Email != "a@b.c" || got.Color != "#111" {
		t.Errorf("contact = %+v", got)
	}
}

func TestNotes(t *testing.T) {
	s := newTestState(t)

	if err := s.SetNote("2025-03-10", "standup at 10"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	if err := s.SetNote("2025-03-12", "demo"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	if err := s.SetNote("12/03/2025", "bad"); !IsValidationError(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}

	notes := s.DailyNotes()
	if len(notes) != 2 || notes[0].Date != "2025-03-12" {
		t.Errorf("DailyNotes = %+v, want newest first", notes)
	}

	if err := s.SetNote("2025-03-10", "   "); err != nil {
		t.Fatalf("SetNote blank: %v", err)
	}
	if got := s.Note("2025-03-10"); got != "" {
		t.Errorf("Note = %q, want deleted", got)
	}
}

func TestAddCategoryReassignsTakenID(t *testing.T) {
	s := newTestState(t)
	first := s.AddCategory(model.Category{ID: "c1", Name: "Work"})
	second := s.AddCategory(model.Category{ID: "c1", Name: "Home"})
	if first.ID != "c1" || second.ID == "c1" {
		t.Errorf("ids = %s, %s", first.ID, second.ID)
	}
}

func TestContactByRef(t *testing.T) {
	s := newTestState(t)
	alice := s.AddContact(model.Contact{ID: "a", Name: "Alice", Email: "alice@example.com"})

	for _, ref := range []string{"a", "ALICE@example.com", "Alice"} {
		c, ok := s.ContactByRef(ref)
		if !ok || c.ID != alice.ID {
			t.Errorf("ContactByRef(%q) = %+v, %v", ref, c, ok)
		}
	}
	if _, ok := s.ContactByRef("bob"); ok {
		t.Error("unknown ref should not match")
	}
}
