package model

import "time"

// DateLayout is the calendar-day format used for Task.Date and note keys.
const DateLayout = "2006-01-02"

// Attachment is a file attached to a task. The payload itself lives in the
// blob store under Ref; Content is only populated inside backup files.
type Attachment struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	Ref        string    `json:"ref,omitempty"`
	Content    string    `json:"content,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Comment is a single remark left on a task.
type Comment struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
}

// HistoryEntry is one line of a task's append-only change log.
type HistoryEntry struct {
	Action string    `json:"action"`
	Date   time.Time `json:"date"`
}

// Task is a unit of work tracked on the board.
type Task struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Date         string         `json:"date"`
	CategoryID   string         `json:"categoryId"`
	Status       Status         `json:"status"`
	Priority     Priority       `json:"priority"`
	Completed    bool           `json:"completed"`
	Assignees    []string       `json:"assignees,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Recurrence   Recurrence     `json:"recurrence,omitempty"`
	Reminders    []int          `json:"reminders,omitempty"`
	Attachments  []Attachment   `json:"attachments,omitempty"`
	Comments     []Comment      `json:"comments,omitempty"`
	History      []HistoryEntry `json:"history,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	ArchivedAt   *time.Time     `json:"archivedAt,omitempty"`
}

// Day parses the task date as a calendar day in loc.
func (t Task) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, t.Date, loc)
}

// HasAssignee reports whether contactID is assigned to the task.
func (t Task) HasAssignee(contactID string) bool {
	for _, a := range t.Assignees {
		if a == contactID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Assignees = append([]string(nil), t.Assignees...)
	c.Dependencies = append([]string(nil), t.Dependencies...)
	c.Reminders = append([]int(nil), t.Reminders...)
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	c.Comments = append([]Comment(nil), t.Comments...)
	c.History = append([]HistoryEntry(nil), t.History...)
	if t.ArchivedAt != nil {
		at := *t.ArchivedAt
		c.ArchivedAt = &at
	}
	return c
}
