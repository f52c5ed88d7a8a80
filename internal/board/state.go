// Package board holds the application-state aggregate: active and archived
// tasks, categories, contacts, daily notes, and the sweep ledgers. Every
// mutation goes through a *State method; persistence is an explicit Save.
package board

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// State is the single mutable aggregate owned by the application. Methods
// are not safe for concurrent use; callers serialise access.
type State struct {
	Tasks      []model.Task
	Archived   []model.Task
	Categories []model.Category
	Contacts   []model.Contact
	Notes      map[string]string
	Theme      string

	// Generated records recurrence spawns keyed by LedgerKey(task id, date).
	Generated map[string]time.Time
	// Notified records fired reminders keyed by LedgerKey(task id, offset).
	Notified map[string]time.Time

	now   func() time.Time
	newID func() string
}

// Option customises a State.
type Option func(*State)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithIDs overrides the identifier generator.
func WithIDs(newID func() string) Option {
	return func(s *State) { s.newID = newID }
}

// NewID returns a time-ordered UUIDv7 string, falling back to a random
// UUID if the clock source fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New returns an empty state.
func New(opts ...Option) *State {
	s := &State{
		Notes:     make(map[string]string),
		Theme:     "light",
		Generated: make(map[string]time.Time),
		Notified:  make(map[string]time.Time),
		now:       time.Now,
		newID:     NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the state's current time.
func (s *State) Now() time.Time { return s.now() }

// ID returns a fresh identifier from the state's generator.
func (s *State) ID() string { return s.newID() }

// SeedDefaults fills an empty category collection with the default set.
// It reports whether anything was added.
func (s *State) SeedDefaults() bool {
	if len(s.Categories) > 0 {
		return false
	}
	for _, c := range model.DefaultCategories() {
		c.ID = s.newID()
		s.Categories = append(s.Categories, c)
	}
	return true
}

// Replace swaps every collection for the ones in other, keeping this
// state's clock and id generator. Ledger entries from both states survive
// for tasks that still exist afterwards, so restoring a backup never fires
// a reminder or spawns an occurrence twice.
func (s *State) Replace(other *State) {
	generated, notified := s.Generated, s.Notified
	s.Tasks = other.Tasks
	s.Archived = other.Archived
	s.Categories = other.Categories
	s.Contacts = other.Contacts
	s.Notes = other.Notes
	if s.Notes == nil {
		s.Notes = make(map[string]string)
	}
	if other.Theme != "" {
		s.Theme = other.Theme
	}
	s.Generated = unionLedger(generated, other.Generated)
	s.Notified = unionLedger(notified, other.Notified)
	s.PruneLedgers()
}

// unionLedger merges two ledgers, keeping the earliest stamp of a key.
func unionLedger(a, b map[string]time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if prev, ok := out[k]; !ok || v.Before(prev) {
			out[k] = v
		}
	}
	return out
}

// SetTheme records the UI theme name.
func (s *State) SetTheme(theme string) {
	if theme != "" {
		s.Theme = theme
	}
}
