// Package overview derives read-only views of the board: dashboard counts,
// kanban columns, the month calendar and per-task due indicators.
package overview

import (
	"math"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rules"
)

// DateState classifies a task date relative to today.
type DateState string

const (
	DateOverdue DateState = "overdue"
	DateWarning DateState = "warning"
	DateNormal  DateState = "normal"
)

// WarningDays is how close a due date has to be to raise a warning.
const WarningDays = 2

// DateStatus reports whether date is past, within WarningDays of today, or
// further out. Unparseable dates are normal.
func DateStatus(date string, now time.Time) DateState {
	d, err := time.ParseInLocation(model.DateLayout, date, now.Location())
	if err != nil {
		return DateNormal
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(math.Round(d.Sub(today).Hours() / 24))
	switch {
	case days < 0:
		return DateOverdue
	case days <= WarningDays:
		return DateWarning
	}
	return DateNormal
}

// ReminderState flags tasks whose reminders are due.
type ReminderState string

const (
	ReminderNone   ReminderState = ""
	ReminderLate   ReminderState = "late"
	ReminderOnTime ReminderState = "on-time"
)

// ReminderStatus is late once an incomplete task with reminders is past
// due, and on-time while inside any of its reminder windows.
func ReminderStatus(t model.Task, now time.Time) ReminderState {
	if t.Completed || len(t.Reminders) == 0 {
		return ReminderNone
	}
	diff, err := rules.MinutesUntilDue(t, now)
	if err != nil {
		return ReminderNone
	}
	if diff < 0 {
		return ReminderLate
	}
	for _, r := range t.Reminders {
		if diff <= r {
			return ReminderOnTime
		}
	}
	return ReminderNone
}

// Column is one kanban lane.
type Column struct {
	Status model.Status
	Label  string
	Tasks  []model.Task
}

// Kanban groups tasks into one column per status, in board order.
func Kanban(tasks []model.Task) []Column {
	cols := make([]Column, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, s := range model.Statuses {
		cols[i] = Column{Status: s, Label: s.Label()}
		index[s] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			i = 0
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	return cols
}
