package board

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Keys under which the aggregate is persisted, one JSON blob each.
const (
	KeyTasks            = "tasks"
	KeyCategories       = "categories"
	KeyContacts         = "contacts"
	KeyArchivedTasks    = "archivedTasks"
	KeyDailyNotes       = "dailyNotes"
	KeyTheme            = "theme"
	KeyRecurrenceLedger = "recurrenceLedger"
	KeyReminderLedger   = "reminderLedger"
)

// KV is the key-value store the aggregate is persisted to.
type KV interface {
	// Get returns the value stored under key, or nil when there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// PutAll writes every entry in one transaction.
	PutAll(ctx context.Context, entries map[string][]byte) error
}

// Load reads the aggregate from kv. Missing keys leave the matching
// collection empty.
func Load(ctx context.Context, kv KV, opts ...Option) (*State, error) {
	s := New(opts...)

	targets := []struct {
		key  string
		dest any
	}{
		{KeyTasks, &s.Tasks},
		{KeyCategories, &s.Categories},
		{KeyContacts, &s.Contacts},
		{KeyArchivedTasks, &s.Archived},
		{KeyDailyNotes, &s.Notes},
		{KeyTheme, &s.Theme},
		{KeyRecurrenceLedger, &s.Generated},
		{KeyReminderLedger, &s.Notified},
	}
	for _, t := range targets {
		data, err := kv.Get(ctx, t.key)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", t.key, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, t.dest); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", t.key, err)
		}
	}

	if s.Notes == nil {
		s.Notes = make(map[string]string)
	}
	if s.Generated == nil {
		s.Generated = make(map[string]time.Time)
	}
	if s.Notified == nil {
		s.Notified = make(map[string]time.Time)
	}
	for i := range s.Tasks {
		s.Tasks[i].Recurrence = normalizeRecurrence(s.Tasks[i].Recurrence)
	}
	return s, nil
}

func normalizeRecurrence(r model.Recurrence) model.Recurrence {
	if r == "none" {
		return model.RecurrenceNone
	}
	return r
}

// Save writes the whole aggregate to kv.
func (s *State) Save(ctx context.Context, kv KV) error {
	values := map[string]any{
		KeyTasks:            nonNil(s.Tasks),
		KeyCategories:       nonNilCategories(s.Categories),
		KeyContacts:         nonNilContacts(s.Contacts),
		KeyArchivedTasks:    nonNil(s.Archived),
		KeyDailyNotes:       s.Notes,
		KeyTheme:            s.Theme,
		KeyRecurrenceLedger: s.Generated,
		KeyReminderLedger:   s.Notified,
	}

	entries := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		entries[key] = data
	}

	if err := kv.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("saving board: %w", err)
	}
	return nil
}

// nonNil keeps empty collections serialised as [] rather than null.
func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}

func nonNilCategories(c []model.Category) []model.Category {
	if c == nil {
		return []model.Category{}
	}
	return c
}

func nonNilContacts(c []model.Contact) []model.Contact {
	if c == nil {
		return []model.Contact{}
	}
	return c
}
