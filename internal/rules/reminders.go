package rules

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// DefaultTolerance is the half-width, in minutes, of a reminder window.
const DefaultTolerance = 2

// Notifier delivers a reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// DueAt returns the due instant of t: midnight of its date in loc.
func DueAt(t model.Task, loc *time.Location) (time.Time, error) {
	return t.Day(loc)
}

// MinutesUntilDue is the whole number of minutes from now to the due
// instant of t, rounded down. Negative values mean the task is late.
func MinutesUntilDue(t model.Task, now time.Time) (int, error) {
	due, err := DueAt(t, now.Location())
	if err != nil {
		return 0, err
	}
	return int(math.Floor(due.Sub(now).Minutes())), nil
}

// ReminderMessage is the text shown for a reminder.
func ReminderMessage(t model.Task, minutesBefore int) string {
	return fmt.Sprintf("%s - due in %d minutes", t.Name, minutesBefore)
}

// Reminders fires every reminder whose offset lies within tolerance minutes
// of the time left before the task is due. A tolerance below one minute
// selects DefaultTolerance. Each (task, offset) pair fires at
// most once, even if delivery fails; a notifier that is unavailable is
// reported in the returned error but does not stop the sweep.
func Reminders(ctx context.Context, s *board.State, now time.Time, tolerance int, n Notifier) ([]model.Notification, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var (
		fired []model.Notification
		errs  []error
	)
	for _, t := range s.Tasks {
		if t.Completed || len(t.Reminders) == 0 {
			continue
		}
		diff, err := MinutesUntilDue(t, now)
		if err != nil {
			continue
		}
		for _, offset := range t.Reminders {
			if abs(diff-offset) > tolerance {
				continue
			}
			if !s.MarkNotified(t.ID, offset) {
				continue
			}
			note := model.Notification{
				ID:            s.ID(),
				TaskID:        t.ID,
				TaskName:      t.Name,
				MinutesBefore: offset,
				Message:       ReminderMessage(t, offset),
				CreatedAt:     now,
			}
			fired = append(fired, note)
			if n == nil {
				continue
			}
			if err := n.Notify(ctx, note); err != nil {
				errs = append(errs, fmt.Errorf("notifying task %s: %w", t.ID, err))
			}
		}
	}
	return fired, errors.Join(errs...)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
