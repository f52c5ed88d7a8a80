package board

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// CreateCategory appends a new category.
func (s *State) CreateCategory(name, color string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, invalid("name", "must not be empty")
	}
	c := model.Category{ID: s.newID(), Name: name, Color: color}
	s.Categories = append(s.Categories, c)
	return c, nil
}

// AddCategory inserts an already-built category, assigning a fresh id when
// it has none or the id is taken.
func (s *State) AddCategory(c model.Category) model.Category {
	if _, taken := s.Category(c.ID); c.ID == "" || taken {
		c.ID = s.newID()
	}
	s.Categories = append(s.Categories, c)
	return c
}

// UpdateCategory renames or recolours a category.
func (s *State) UpdateCategory(id, name, color string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, invalid("name", "must not be empty")
	}
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			s.Categories[i].Name = name
			if color != "" {
				s.Categories[i].Color = color
			}
			return true, nil
		}
	}
	return false, nil
}

// DeleteCategory removes a category. Tasks keep their now-dangling
// categoryId and render as uncategorised.
func (s *State) DeleteCategory(id string) bool {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
			return true
		}
	}
	return false
}

// Category returns the category with the given id.
func (s *State) Category(id string) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// CategoryName returns the name of the category, or "" when it is unset
// or no longer exists.
func (s *State) CategoryName(id string) string {
	c, _ := s.Category(id)
	return c.Name
}

// CategoryByName returns the first category with exactly that name.
func (s *State) CategoryByName(name string) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return model.Category{}, false
}

// CreateContact appends a new contact.
func (s *State) CreateContact(name, email, color string) (model.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Contact{}, invalid("name", "must not be empty")
	}
	c := model.Contact{
		ID:    s.newID(),
		Name:  name,
		Email: strings.TrimSpace(email),
		Color: color,
	}
	s.Contacts = append(s.Contacts, c)
	return c, nil
}

// AddContact inserts an already-built contact, assigning a fresh id when it
// has none or the id is taken.
func (s *State) AddContact(c model.Contact) model.Contact {
	if _, taken := s.Contact(c.ID); c.ID == "" || taken {
		c.ID = s.newID()
	}
	s.Contacts = append(s.Contacts, c)
	return c
}

// ContactByRef finds a contact by id, email or name, in that order.
func (s *State) ContactByRef(ref string) (model.Contact, bool) {
	if c, ok := s.Contact(ref); ok {
		return c, true
	}
	for _, c := range s.Contacts {
		if c.Email != "" && strings.EqualFold(c.Email, ref) {
			return c, true
		}
	}
	for _, c := range s.Contacts {
		if c.Name == ref {
			return c, true
		}
	}
	return model.Contact{}, false
}

// UpdateContact edits a contact's details.
func (s *State) UpdateContact(id, name, email, color string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, invalid("name", "must not be empty")
	}
	for i := range s.Contacts {
		if s.Contacts[i].ID == id {
			s.Contacts[i].Name = name
			s.Contacts[i].Email = strings.TrimSpace(email)
			if color != "" {
				s.Contacts[i].Color = color
			}
			return true, nil
		}
	}
	return false, nil
}

// DeleteContact removes a contact and detaches it from every task, active
// and archived.
func (s *State) DeleteContact(id string) bool {
	found := false
	for i := range s.Contacts {
		if s.Contacts[i].ID == id {
			s.Contacts = append(s.Contacts[:i], s.Contacts[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}
	detach := func(tasks []model.Task) {
		for i := range tasks {
			tasks[i].Assignees = without(tasks[i].Assignees, id)
		}
	}
	detach(s.Tasks)
	detach(s.Archived)
	return true
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Contact returns the contact with the given id.
func (s *State) Contact(id string) (model.Contact, bool) {
	for _, c := range s.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return model.Contact{}, false
}

// SetNote stores the note for a calendar day. Blank text deletes the entry.
func (s *State) SetNote(date, text string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return invalid("date", "%q is not a YYYY-MM-DD date", date)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		delete(s.Notes, date)
		return nil
	}
	s.Notes[date] = text
	return nil
}

// Note returns the note for a calendar day, or "".
func (s *State) Note(date string) string {
	return s.Notes[date]
}

// DailyNotes lists every note, newest day first.
func (s *State) DailyNotes() []model.DailyNote {
	notes := make([]model.DailyNote, 0, len(s.Notes))
	for date, text := range s.Notes {
		notes = append(notes, model.DailyNote{Date: date, Text: text})
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Date > notes[j].Date })
	return notes
}
