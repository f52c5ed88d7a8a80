package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// BackupVersion marks a full backup. Payloads carrying it are imported by
// replacing the whole state.
const BackupVersion = "2.0"

// Backup is the full-backup file layout.
type Backup struct {
	Version       string            `json:"version"`
	Tasks         []model.Task      `json:"tasks"`
	ArchivedTasks []model.Task      `json:"archivedTasks"`
	Categories    []model.Category  `json:"categories"`
	Contacts      []model.Contact   `json:"contacts"`
	Theme         string            `json:"theme"`
	DailyNotes    map[string]string `json:"dailyNotes"`
	ExportedAt    time.Time         `json:"exportedAt"`

	// Ledgers keep sweeps idempotent across a restore. Older backups omit
	// them.
	RecurrenceLedger map[string]time.Time `json:"recurrenceLedger,omitempty"`
	ReminderLedger   map[string]time.Time `json:"reminderLedger,omitempty"`
}

// NewBackup snapshots s. Attachment payloads are not embedded yet.
func NewBackup(s *board.State, tasks []model.Task) Backup {
	notes := make(map[string]string, len(s.Notes))
	for k, v := range s.Notes {
		notes[k] = v
	}
	if tasks == nil {
		tasks = s.ActiveTasks()
	}
	return Backup{
		Version:       BackupVersion,
		Tasks:         tasks,
		ArchivedTasks: s.ArchivedTasks(),
		Categories:    append([]model.Category{}, s.Categories...),
		Contacts:      append([]model.Contact{}, s.Contacts...),
		Theme:         s.Theme,
		DailyNotes:    notes,
		ExportedAt:    s.Now(),

		RecurrenceLedger: copyLedger(s.Generated),
		ReminderLedger:   copyLedger(s.Notified),
	}
}

func copyLedger(l map[string]time.Time) map[string]time.Time {
	if len(l) == 0 {
		return nil
	}
	out := make(map[string]time.Time, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ExportJSON writes a full backup of s to w. tasks selects the active tasks
// to include; nil means all of them. When blobs is set, attachment payloads
// are embedded as data URLs.
func ExportJSON(ctx context.Context, w io.Writer, s *board.State, tasks []model.Task, blobs Blobs) error {
	b := NewBackup(s, tasks)
	if blobs != nil {
		if err := embed(ctx, b.Tasks, blobs); err != nil {
			return err
		}
		if err := embed(ctx, b.ArchivedTasks, blobs); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

func embed(ctx context.Context, tasks []model.Task, blobs Blobs) error {
	for i := range tasks {
		for j := range tasks[i].Attachments {
			a := &tasks[i].Attachments[j]
			if a.Ref == "" || a.Content != "" {
				continue
			}
			data, err := blobs.GetBlob(ctx, a.Ref)
			if err != nil {
				return fmt.Errorf("embedding attachment %q of task %s: %w", a.Name, tasks[i].ID, err)
			}
			a.Content = EncodeDataURL(a.Type, data)
		}
	}
	return nil
}

// Mode tells how an import was applied.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeMerge   Mode = "merge"
)

// Summary describes a backup before it replaces the state.
type Summary struct {
	Tasks      int
	Archived   int
	Categories int
	Contacts   int
	Notes      int
}

// Confirm is asked before a full backup replaces the state. Declining falls
// back to merging the payload; an error aborts the import.
type Confirm func(Summary) (bool, error)

// Result reports what an import did.
type Result struct {
	Mode       Mode
	Tasks      int
	Archived   int
	Categories int
	Contacts   int
	Notes      int
}

// legacyTask accepts the categoryName hint older exports carry.
type legacyTask struct {
	model.Task
	CategoryName string `json:"categoryName,omitempty"`
}

type payload struct {
	Version       string            `json:"version"`
	Tasks         []legacyTask      `json:"tasks"`
	ArchivedTasks []model.Task      `json:"archivedTasks"`
	Categories    []model.Category  `json:"categories"`
	Contacts      []model.Contact   `json:"contacts"`
	Theme         string            `json:"theme"`
	DailyNotes    map[string]string `json:"dailyNotes"`

	RecurrenceLedger map[string]time.Time `json:"recurrenceLedger"`
	ReminderLedger   map[string]time.Time `json:"reminderLedger"`
}

// ImportJSON reads a JSON payload into s. A full backup replaces every
// collection once confirm agrees; anything else (a bare task array, a
// partial object, or a declined backup) is merged. Parse failures return
// ErrMalformed and leave s untouched.
func ImportJSON(ctx context.Context, r io.Reader, s *board.State, blobs Blobs, confirm Confirm) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading import: %w", err)
	}

	p, err := decodePayload(data)
	if err != nil {
		return Result{}, err
	}

	if err := ingest(ctx, p, blobs); err != nil {
		return Result{}, err
	}

	if p.Version == BackupVersion && confirm != nil {
		ok, err := confirm(Summary{
			Tasks:      len(p.Tasks),
			Archived:   len(p.ArchivedTasks),
			Categories: len(p.Categories),
			Contacts:   len(p.Contacts),
			Notes:      len(p.DailyNotes),
		})
		if err != nil {
			return Result{}, fmt.Errorf("confirming replace: %w", err)
		}
		if ok {
			return replace(s, p), nil
		}
	}
	return merge(s, p), nil
}

func decodePayload(data []byte) (payload, error) {
	var p payload
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return p, malformed("empty file")
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &p.Tasks); err != nil {
			return p, malformed("decoding task array: %v", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return p, malformed("decoding object: %v", err)
		}
	default:
		return p, malformed("expected a JSON object or array")
	}
	return p, nil
}

// ingest moves embedded attachment payloads into the blob store, replacing
// them with refs. Reads run concurrently and all must finish before the
// state is touched.
func ingest(ctx context.Context, p payload, blobs Blobs) error {
	var atts []*model.Attachment
	for i := range p.Tasks {
		for j := range p.Tasks[i].Attachments {
			atts = append(atts, &p.Tasks[i].Attachments[j])
		}
	}
	for i := range p.ArchivedTasks {
		for j := range p.ArchivedTasks[i].Attachments {
			atts = append(atts, &p.ArchivedTasks[i].Attachments[j])
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, a := range atts {
		if a.Content == "" {
			continue
		}
		g.Go(func() error {
			mediaType, data, err := DecodeDataURL(a.Content)
			if err != nil {
				return malformed("attachment %q: %v", a.Name, err)
			}
			if blobs == nil {
				return nil
			}
			ref, err := blobs.PutBlob(ctx, data, mediaType)
			if err != nil {
				return fmt.Errorf("storing attachment %q: %w", a.Name, err)
			}
			a.Ref = ref
			a.Content = ""
			if a.Type == "" {
				a.Type = mediaType
			}
			if a.Size == 0 {
				a.Size = int64(len(data))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("ingesting attachments: %w", err)
	}
	return nil
}

func replace(s *board.State, p payload) Result {
	next := board.New()
	for _, lt := range p.Tasks {
		next.Tasks = append(next.Tasks, sanitize(lt.Task))
	}
	for _, t := range p.ArchivedTasks {
		next.Archived = append(next.Archived, sanitize(t))
	}
	next.Categories = p.Categories
	next.Contacts = p.Contacts
	if p.DailyNotes != nil {
		next.Notes = p.DailyNotes
	}
	next.Theme = p.Theme
	for k, v := range p.RecurrenceLedger {
		next.Generated[k] = v
	}
	for k, v := range p.ReminderLedger {
		next.Notified[k] = v
	}
	s.Replace(next)

	return Result{
		Mode:       ModeReplace,
		Tasks:      len(next.Tasks),
		Archived:   len(next.Archived),
		Categories: len(next.Categories),
		Contacts:   len(next.Contacts),
		Notes:      len(next.Notes),
	}
}

// sanitize maps out-of-range enum values to their defaults.
func sanitize(t model.Task) model.Task {
	if !t.Status.Valid() {
		t.Status = model.ParseStatusLabel(string(t.Status))
	}
	if !t.Priority.Valid() {
		t.Priority = model.ParsePriorityLabel(string(t.Priority))
	}
	if t.Recurrence == "none" || !t.Recurrence.Valid() {
		t.Recurrence = model.RecurrenceNone
	}
	return t
}

func merge(s *board.State, p payload) Result {
	res := Result{Mode: ModeMerge}

	// Imported category and contact ids resolve to the ids they end up
	// with in s.
	catIDs := make(map[string]string)
	for _, c := range p.Categories {
		if existing, ok := s.CategoryByName(c.Name); ok {
			catIDs[c.ID] = existing.ID
			continue
		}
		added := s.AddCategory(c)
		catIDs[c.ID] = added.ID
		res.Categories++
	}

	contactIDs := make(map[string]string)
	for _, c := range p.Contacts {
		if existing, ok := findContact(s, c); ok {
			contactIDs[c.ID] = existing.ID
			continue
		}
		added := s.AddContact(c)
		contactIDs[c.ID] = added.ID
		res.Contacts++
	}

	for date, text := range p.DailyNotes {
		if err := s.SetNote(date, text); err == nil {
			res.Notes++
		}
	}

	taskIDs := make(map[string]string)
	var added []model.Task
	for _, lt := range p.Tasks {
		t := sanitize(lt.Task)
		t.CategoryID = resolveCategory(s, catIDs, t.CategoryID, lt.CategoryName)
		t.Assignees = resolveAssignees(s, contactIDs, t.Assignees)
		oldID := t.ID
		t = s.AppendTask(t)
		if oldID != "" {
			taskIDs[oldID] = t.ID
		}
		added = append(added, t)
		res.Tasks++
	}

	// Dependencies point at ids from the payload, some of which may have
	// been reassigned.
	for _, t := range added {
		if len(t.Dependencies) == 0 {
			continue
		}
		for i := range s.Tasks {
			if s.Tasks[i].ID != t.ID {
				continue
			}
			for j, dep := range s.Tasks[i].Dependencies {
				if mapped, ok := taskIDs[dep]; ok {
					s.Tasks[i].Dependencies[j] = mapped
				}
			}
		}
	}

	for _, t := range p.ArchivedTasks {
		s.AppendArchived(sanitize(t))
		res.Archived++
	}
	return res
}

func findContact(s *board.State, c model.Contact) (model.Contact, bool) {
	for _, existing := range s.Contacts {
		if c.Email != "" && existing.Email == c.Email {
			return existing, true
		}
	}
	for _, existing := range s.Contacts {
		if existing.Name == c.Name {
			return existing, true
		}
	}
	return model.Contact{}, false
}

func resolveCategory(s *board.State, catIDs map[string]string, id, name string) string {
	if mapped, ok := catIDs[id]; ok && id != "" {
		return mapped
	}
	if _, ok := s.Category(id); ok {
		return id
	}
	if name != "" {
		if c, ok := s.CategoryByName(name); ok {
			return c.ID
		}
	}
	if len(s.Categories) > 0 {
		return s.Categories[0].ID
	}
	return id
}

func resolveAssignees(s *board.State, contactIDs map[string]string, refs []string) []string {
	var out []string
	for _, ref := range refs {
		if mapped, ok := contactIDs[ref]; ok {
			out = append(out, mapped)
			continue
		}
		if c, ok := s.ContactByRef(ref); ok {
			out = append(out, c.ID)
		}
	}
	return out
}
