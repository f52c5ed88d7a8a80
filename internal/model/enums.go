package model

import "strings"

// Status is the kanban column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Label returns the display label used in exports and history lines.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "À faire"
	case StatusInProgress:
		return "En cours"
	case StatusReview:
		return "À revoir"
	case StatusDone:
		return "Terminé"
	}
	return string(s)
}

// Rank orders statuses todo < inprogress < review < done.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusReview:
		return 2
	case StatusDone:
		return 3
	}
	return len(Statuses)
}

// ParseStatusLabel maps free label text (French or English) to the nearest
// status by keyword. Unknown text yields StatusTodo.
func ParseStatusLabel(label string) Status {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return StatusTodo
	case strings.Contains(l, "faire"), strings.Contains(l, "todo"):
		return StatusTodo
	case strings.Contains(l, "en cours"), strings.Contains(l, "inprogress"),
		strings.Contains(l, "in progress"):
		return StatusInProgress
	case strings.Contains(l, "term"), strings.Contains(l, "done"):
		return StatusDone
	case strings.Contains(l, "revoir"), strings.Contains(l, "review"):
		return StatusReview
	}
	return StatusTodo
}

// Priority expresses how pressing a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from most to least pressing.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Label returns the display label used in exports and history lines.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Basse"
	case PriorityMedium:
		return "Moyenne"
	case PriorityHigh:
		return "Haute"
	case PriorityUrgent:
		return "Urgente"
	}
	return string(p)
}

// Rank orders priorities urgent < high < medium < low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return len(Priorities)
}

// ParsePriorityLabel maps free label text (French or English) to the
// nearest priority by keyword. Unknown text yields PriorityMedium.
func ParsePriorityLabel(label string) Priority {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return PriorityMedium
	case strings.Contains(l, "basse"), strings.Contains(l, "low"):
		return PriorityLow
	case strings.Contains(l, "moy"), strings.Contains(l, "medium"):
		return PriorityMedium
	case strings.Contains(l, "haut"), strings.Contains(l, "high"):
		return PriorityHigh
	case strings.Contains(l, "urgent"):
		return PriorityUrgent
	}
	return PriorityMedium
}

// Recurrence controls whether completing a task spawns a follow-up.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is a known recurrence. The legacy value "none"
// is accepted as an alias for RecurrenceNone.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, "none":
		return true
	}
	return false
}

// Repeats reports whether r schedules follow-up occurrences.
func (r Recurrence) Repeats() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Label returns the display label for r.
func (r Recurrence) Label() string {
	switch r {
	case RecurrenceDaily:
		return "Quotidien"
	case RecurrenceWeekly:
		return "Hebdomadaire"
	case RecurrenceMonthly:
		return "Mensuel"
	}
	return ""
}
