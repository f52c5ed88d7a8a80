package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// History lines appended by task mutations. They are shown and exported
// verbatim, in French like the status and priority labels they quote.
const (
	ActionCreated      = "Tâche créée"
	ActionCompleted    = "Tâche marquée comme terminée"
	ActionReopened     = "Tâche rouverte"
	ActionArchived     = "Tâche archivée manuellement"
	ActionAutoArchived = "Tâche archivée automatiquement"
)

const (
	historyDateLayout    = "02/01/2006"
	defaultCommentAuthor = "User"
)

// changed formats one field change of a history line.
func changed(what, from, to string) string {
	return fmt.Sprintf(`%s de "%s" à "%s"`, what, from, to)
}

// TaskInput carries the user-editable fields of a task. Attachments are
// appended to whatever the task already has.
type TaskInput struct {
	Name         string
	Description  string
	Date         string
	CategoryID   string
	Status       model.Status
	Priority     model.Priority
	Assignees    []string
	Dependencies []string
	Recurrence   model.Recurrence
	Reminders    []int
	Attachments  []model.Attachment
}

// normalize trims and defaults the input, returning a ValidationError for
// anything that cannot be stored.
func (in *TaskInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	if in.Name == "" {
		return invalid("name", "must not be empty")
	}
	if in.Date == "" {
		return invalid("date", "must not be empty")
	}
	if _, err := time.Parse(model.DateLayout, in.Date); err != nil {
		return invalid("date", "%q is not a YYYY-MM-DD date", in.Date)
	}
	if in.CategoryID == "" {
		return invalid("categoryId", "must not be empty")
	}

	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if !in.Status.Valid() {
		return invalid("status", "unknown status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return invalid("priority", "unknown priority %q", in.Priority)
	}
	if !in.Recurrence.Valid() {
		return invalid("recurrence", "unknown recurrence %q", in.Recurrence)
	}
	if in.Recurrence == "none" {
		in.Recurrence = model.RecurrenceNone
	}

	in.Assignees = dedupe(in.Assignees)
	in.Dependencies = dedupe(in.Dependencies)
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CreateTask validates in and appends a new active task.
func (s *State) CreateTask(in TaskInput) (model.Task, error) {
	if err := in.normalize(); err != nil {
		return model.Task{}, err
	}

	now := s.now()
	t := model.Task{
		ID:           s.newID(),
		Name:         in.Name,
		Description:  in.Description,
		Date:         in.Date,
		CategoryID:   in.CategoryID,
		Status:       in.Status,
		Priority:     in.Priority,
		Assignees:    in.Assignees,
		Dependencies: in.Dependencies,
		Recurrence:   in.Recurrence,
		Reminders:    in.Reminders,
		Attachments:  in.Attachments,
		CreatedAt:    now,
		UpdatedAt:    now,
		History:      []model.HistoryEntry{{Action: ActionCreated, Date: now}},
	}
	if err := s.checkDependencies(t.ID, t.Dependencies); err != nil {
		return model.Task{}, err
	}

	s.Tasks = append(s.Tasks, t)
	return t.Clone(), nil
}

// AppendTask inserts an already-built task into the active collection,
// assigning an id when it has none or when the id is already taken.
func (s *State) AppendTask(t model.Task) model.Task {
	if t.ID == "" || s.hasID(t.ID) {
		t.ID = s.newID()
	}
	s.Tasks = append(s.Tasks, t)
	return t
}

// AppendArchived inserts a task directly into the archive, assigning a
// fresh id when the task has none or its id is already taken.
func (s *State) AppendArchived(t model.Task) model.Task {
	if t.ID == "" || s.hasID(t.ID) {
		t.ID = s.newID()
	}
	s.Archived = append(s.Archived, t)
	return t
}

// HasTask reports whether id names an active or archived task.
func (s *State) HasTask(id string) bool {
	return s.hasID(id)
}

func (s *State) hasID(id string) bool {
	return s.activeIndex(id) >= 0 || s.archivedIndex(id) >= 0
}

func (s *State) activeIndex(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) archivedIndex(id string) int {
	for i := range s.Archived {
		if s.Archived[i].ID == id {
			return i
		}
	}
	return -1
}

// lookup returns a pointer into whichever collection holds id.
func (s *State) lookup(id string) *model.Task {
	if i := s.activeIndex(id); i >= 0 {
		return &s.Tasks[i]
	}
	if i := s.archivedIndex(id); i >= 0 {
		return &s.Archived[i]
	}
	return nil
}

// Task returns a copy of the active task with the given id.
func (s *State) Task(id string) (model.Task, bool) {
	if i := s.activeIndex(id); i >= 0 {
		return s.Tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// ArchivedTask returns a copy of the archived task with the given id.
func (s *State) ArchivedTask(id string) (model.Task, bool) {
	if i := s.archivedIndex(id); i >= 0 {
		return s.Archived[i].Clone(), true
	}
	return model.Task{}, false
}

// ActiveTasks returns a copy of the active collection.
func (s *State) ActiveTasks() []model.Task {
	return cloneTasks(s.Tasks)
}

// ArchivedTasks returns a copy of the archived collection.
func (s *State) ArchivedTasks() []model.Task {
	return cloneTasks(s.Archived)
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// UpdateTask applies in to the task with the given id, active or archived.
// Name, status, priority and date deltas are summarised in one history line.
// It reports false, with no error, when no task has that id.
func (s *State) UpdateTask(id string, in TaskInput) (model.Task, bool, error) {
	t := s.lookup(id)
	if t == nil {
		return model.Task{}, false, nil
	}
	if err := in.normalize(); err != nil {
		return model.Task{}, true, err
	}
	if err := s.checkDependencies(id, in.Dependencies); err != nil {
		return model.Task{}, true, err
	}

	var changes []string
	if t.Name != in.Name {
		changes = append(changes, changed("Nom modifié", t.Name, in.Name))
	}
	if t.Status != in.Status {
		changes = append(changes, changed("Statut modifié",
			t.Status.Label(), in.Status.Label()))
	}
	if t.Priority != in.Priority {
		changes = append(changes, changed("Priorité modifiée",
			t.Priority.Label(), in.Priority.Label()))
	}
	if t.Date != in.Date {
		changes = append(changes, changed("Date modifiée",
			formatDay(t.Date), formatDay(in.Date)))
	}

	now := s.now()
	t.Name = in.Name
	t.Description = in.Description
	t.Date = in.Date
	t.CategoryID = in.CategoryID
	t.Status = in.Status
	t.Priority = in.Priority
	t.Assignees = in.Assignees
	t.Dependencies = in.Dependencies
	t.Recurrence = in.Recurrence
	t.Reminders = in.Reminders
	t.UpdatedAt = now
	if len(in.Attachments) > 0 {
		t.Attachments = append(t.Attachments, in.Attachments...)
	}
	if len(changes) > 0 {
		t.History = append(t.History, model.HistoryEntry{
			Action: strings.Join(changes, ", "),
			Date:   now,
		})
	}

	return t.Clone(), true, nil
}

func formatDay(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format(historyDateLayout)
}

// checkDependencies rejects dependency sets that would close a cycle
// through id.
func (s *State) checkDependencies(id string, deps []string) error {
	visited := make(map[string]bool)
	var reaches func(from string) bool
	reaches = func(from string) bool {
		if from == id {
			return true
		}
		if visited[from] {
			return false
		}
		visited[from] = true
		t := s.lookup(from)
		if t == nil {
			return false
		}
		for _, next := range t.Dependencies {
			if reaches(next) {
				return true
			}
		}
		return false
	}
	for _, dep := range deps {
		if dep == id {
			return invalid("dependencies", "a task cannot depend on itself")
		}
		if reaches(dep) {
			return invalid("dependencies", "depending on %s would create a cycle", dep)
		}
	}
	return nil
}

// DeleteTask permanently removes an active task. Unknown ids are a no-op.
func (s *State) DeleteTask(id string) bool {
	i := s.activeIndex(id)
	if i < 0 {
		return false
	}
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	return true
}

// DeleteArchived permanently removes an archived task.
func (s *State) DeleteArchived(id string) bool {
	i := s.archivedIndex(id)
	if i < 0 {
		return false
	}
	s.Archived = append(s.Archived[:i], s.Archived[i+1:]...)
	return true
}

// ArchiveTask moves a completed active task to the archive. Incomplete or
// unknown tasks are left alone.
func (s *State) ArchiveTask(id string) bool {
	i := s.activeIndex(id)
	if i < 0 || !s.Tasks[i].Completed {
		return false
	}
	s.moveToArchive(i, ActionArchived)
	return true
}

// ArchiveWhere moves every active task matching pred to the archive,
// stamping archivedAt and appending action to its history. It returns the
// ids that moved.
func (s *State) ArchiveWhere(pred func(model.Task) bool, action string) []string {
	var moved []string
	for i := 0; i < len(s.Tasks); {
		if pred(s.Tasks[i]) {
			moved = append(moved, s.Tasks[i].ID)
			s.moveToArchive(i, action)
			continue
		}
		i++
	}
	return moved
}

// moveToArchive removes the active task at i and appends it to the archive
// so that no id lives in both collections.
func (s *State) moveToArchive(i int, action string) {
	now := s.now()
	t := s.Tasks[i]
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	t.ArchivedAt = &now
	t.History = append(t.History, model.HistoryEntry{Action: action, Date: now})
	s.Archived = append(s.Archived, t)
}

// SetCompleted sets the completion flag of an active task. Completing also
// moves it to the done column. Blocked tasks are not refused here.
func (s *State) SetCompleted(id string, completed bool) (model.Task, bool) {
	i := s.activeIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	t := &s.Tasks[i]
	if t.Completed == completed {
		return t.Clone(), true
	}
	now := s.now()
	t.Completed = completed
	t.UpdatedAt = now
	if completed {
		t.Status = model.StatusDone
		t.History = append(t.History, model.HistoryEntry{Action: ActionCompleted, Date: now})
	} else {
		t.History = append(t.History, model.HistoryEntry{Action: ActionReopened, Date: now})
	}
	return t.Clone(), true
}

// ToggleCompleted flips the completion flag of an active task.
func (s *State) ToggleCompleted(id string) (model.Task, bool) {
	t, ok := s.Task(id)
	if !ok {
		return model.Task{}, false
	}
	return s.SetCompleted(id, !t.Completed)
}

// ChangeStatus moves an active task to another column, logging the change.
func (s *State) ChangeStatus(id string, status model.Status) (model.Task, bool, error) {
	if !status.Valid() {
		return model.Task{}, false, invalid("status", "unknown status %q", status)
	}
	i := s.activeIndex(id)
	if i < 0 {
		return model.Task{}, false, nil
	}
	t := &s.Tasks[i]
	if t.Status != status {
		now := s.now()
		t.History = append(t.History, model.HistoryEntry{
			Action: changed("Statut modifié", t.Status.Label(), status.Label()),
			Date:   now,
		})
		t.Status = status
		t.UpdatedAt = now
	}
	return t.Clone(), true, nil
}

// AddComment appends a comment to an active task.
func (s *State) AddComment(id, text, author string) (model.Comment, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, false, invalid("text", "must not be empty")
	}
	i := s.activeIndex(id)
	if i < 0 {
		return model.Comment{}, false, nil
	}
	if strings.TrimSpace(author) == "" {
		author = defaultCommentAuthor
	}
	now := s.now()
	c := model.Comment{ID: s.newID(), Text: text, Author: author, Date: now}
	t := &s.Tasks[i]
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = now
	return c, true, nil
}
