package app

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, name, color string) (model.Category, error) {
	var c model.Category
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		c, err = st.CreateCategory(name, color)
		return err == nil, err
	})
	return c, err
}

// UpdateCategory renames or recolours a category.
func (s *Service) UpdateCategory(ctx context.Context, id, name, color string) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		found, err = st.UpdateCategory(id, name, color)
		return found, err
	})
	if err != nil {
		return found, fmt.Errorf("updating category %s: %w", id, err)
	}
	return found, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		found = st.DeleteCategory(id)
		return found, nil
	})
	return found, err
}

// Categories lists every category in insertion order.
func (s *Service) Categories() []model.Category {
	var out []model.Category
	s.read(func(st *board.State) { out = append(out, st.Categories...) })
	return out
}

// ResolveCategory finds a category by id or exact name.
func (s *Service) ResolveCategory(ref string) (model.Category, bool) {
	var (
		c  model.Category
		ok bool
	)
	s.read(func(st *board.State) {
		if c, ok = st.Category(ref); !ok {
			c, ok = st.CategoryByName(ref)
		}
	})
	return c, ok
}

// CreateContact adds a contact.
func (s *Service) CreateContact(ctx context.Context, name, email, color string) (model.Contact, error) {
	var c model.Contact
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		c, err = st.CreateContact(name, email, color)
		return err == nil, err
	})
	return c, err
}

// UpdateContact edits a contact.
func (s *Service) UpdateContact(ctx context.Context, id, name, email, color string) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		found, err = st.UpdateContact(id, name, email, color)
		return found, err
	})
	if err != nil {
		return found, fmt.Errorf("updating contact %s: %w", id, err)
	}
	return found, nil
}

// DeleteContact removes a contact and unassigns it everywhere.
func (s *Service) DeleteContact(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		found = st.DeleteContact(id)
		return found, nil
	})
	return found, err
}

// Contacts lists every contact.
func (s *Service) Contacts() []model.Contact {
	var out []model.Contact
	s.read(func(st *board.State) { out = append(out, st.Contacts...) })
	return out
}

// ResolveContact finds a contact by id, email or name.
func (s *Service) ResolveContact(ref string) (model.Contact, bool) {
	var (
		c  model.Contact
		ok bool
	)
	s.read(func(st *board.State) { c, ok = st.ContactByRef(ref) })
	return c, ok
}

// SetNote stores or clears the note for a day.
func (s *Service) SetNote(ctx context.Context, date, text string) error {
	return s.mutate(ctx, func(st *board.State) (bool, error) {
		return true, st.SetNote(date, text)
	})
}

// Note returns the note for a day.
func (s *Service) Note(date string) string {
	var text string
	s.read(func(st *board.State) { text = st.Note(date) })
	return text
}

// Notes lists every daily note, newest first.
func (s *Service) Notes() []model.DailyNote {
	var out []model.DailyNote
	s.read(func(st *board.State) { out = st.DailyNotes() })
	return out
}

// SetTheme records the UI theme.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	return s.mutate(ctx, func(st *board.State) (bool, error) {
		st.SetTheme(theme)
		return true, nil
	})
}

// Theme returns the UI theme.
func (s *Service) Theme() string {
	var theme string
	s.read(func(st *board.State) { theme = st.Theme })
	return theme
}
