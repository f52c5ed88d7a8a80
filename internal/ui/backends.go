package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/ui/entitymgr"
	"github.com/nhle/taskboard/internal/ui/kanban"
)

// categoryBackend serves the category manager.
type categoryBackend struct{ svc *app.Service }

func (categoryBackend) Title() string  { return "Categories" }
func (categoryBackend) HasEmail() bool { return false }
func (categoryBackend) DeleteNote() string {
	return "Tasks in this category become uncategorised."
}

func (b categoryBackend) List() []entitymgr.Entry {
	counts := make(map[string]int)
	for _, c := range b.svc.Dashboard().ByCategory {
		counts[c.ID] = c.Count
	}
	cats := b.svc.Categories()
	out := make([]entitymgr.Entry, len(cats))
	for i, c := range cats {
		out[i] = entitymgr.Entry{ID: c.ID, Name: c.Name, Color: c.Color, Count: counts[c.ID]}
	}
	return out
}

func (b categoryBackend) Save(ctx context.Context, e entitymgr.Entry) error {
	if e.ID == "" {
		_, err := b.svc.CreateCategory(ctx, e.Name, e.Color)
		return err
	}
	_, err := b.svc.UpdateCategory(ctx, e.ID, e.Name, e.Color)
	return err
}

func (b categoryBackend) Delete(ctx context.Context, id string) error {
	_, err := b.svc.DeleteCategory(ctx, id)
	return err
}

// contactBackend serves the contact manager.
type contactBackend struct{ svc *app.Service }

func (contactBackend) Title() string  { return "Contacts" }
func (contactBackend) HasEmail() bool { return true }
func (contactBackend) DeleteNote() string {
	return "The contact is removed from every task it is assigned to."
}

func (b contactBackend) List() []entitymgr.Entry {
	contacts := b.svc.Contacts()
	out := make([]entitymgr.Entry, len(contacts))
	for i, c := range contacts {
		n := len(b.svc.Tasks(query.Filter{Assignee: c.ID}, query.SortName))
		out[i] = entitymgr.Entry{ID: c.ID, Name: c.Name, Email: c.Email, Color: c.Color, Count: n}
	}
	return out
}

func (b contactBackend) Save(ctx context.Context, e entitymgr.Entry) error {
	if e.ID == "" {
		_, err := b.svc.CreateContact(ctx, e.Name, e.Email, e.Color)
		return err
	}
	_, err := b.svc.UpdateContact(ctx, e.ID, e.Name, e.Email, e.Color)
	return err
}

func (b contactBackend) Delete(ctx context.Context, id string) error {
	_, err := b.svc.DeleteContact(ctx, id)
	return err
}

// newArchiveList creates the list showing archived tasks.
func newArchiveList(width, height int) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height)
	l.Title = "Archive"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// loadArchive refills the archive list, most recently archived first.
func (m *Model) loadArchive() tea.Cmd {
	tasks := m.svc.ArchivedTasks()
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = kanban.TaskItem{Task: t}
	}
	return m.archive.SetItems(items)
}
