package rules

import (
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// ActionRecurring prefixes the history line of a generated occurrence.
const ActionRecurring = "Tâche récurrente créée automatiquement"

// NextDate returns the occurrence after date for the given recurrence.
// Monthly recurrence follows calendar rollover, so 31 January becomes
// 3 March (or 2 March in a leap year).
func NextDate(date string, r model.Recurrence) (string, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parsing task date %q: %w", date, err)
	}
	switch r {
	case model.RecurrenceDaily:
		d = d.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		d = d.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		d = d.AddDate(0, 1, 0)
	default:
		return "", fmt.Errorf("recurrence %q does not repeat", r)
	}
	return d.Format(model.DateLayout), nil
}

// Recurrence spawns the next occurrence of every completed recurring task
// whose date lies strictly before today. The original task is left as is;
// the ledger guarantees at most one occurrence per (task, next date), so
// re-running the sweep is harmless. It returns the tasks it created.
func Recurrence(s *board.State, now time.Time) []model.Task {
	today := now.Format(model.DateLayout)

	// Snapshot first: tasks appended below must not be visited this pass.
	candidates := s.ActiveTasks()

	var created []model.Task
	for _, t := range candidates {
		if !t.Recurrence.Repeats() || !t.Completed || t.Date >= today {
			continue
		}
		next, err := NextDate(t.Date, t.Recurrence)
		if err != nil {
			continue
		}
		if !s.MarkGenerated(t.ID, next) {
			continue
		}

		occ := t.Clone()
		occ.ID = ""
		occ.Date = next
		occ.Completed = false
		occ.Status = model.StatusTodo
		occ.Comments = nil
		occ.ArchivedAt = nil
		occ.CreatedAt = now
		occ.UpdatedAt = now
		occ.History = []model.HistoryEntry{{
			Action: fmt.Sprintf("%s (%s)", ActionRecurring, t.Recurrence.Label()),
			Date:   now,
		}}
		created = append(created, s.AppendTask(occ))
	}
	return created
}
