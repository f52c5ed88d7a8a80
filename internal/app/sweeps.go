package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rules"
)

// SweepResult counts what one pass of the background rules did.
type SweepResult struct {
	Reminders []model.Notification
	Spawned   []model.Task
	Archived  []string
}

// Empty reports whether the sweep changed nothing.
func (r SweepResult) Empty() bool {
	return len(r.Reminders) == 0 && len(r.Spawned) == 0 && len(r.Archived) == 0
}

// CheckReminders fires due reminders. The ledger is saved even when
// delivery fails so no reminder fires twice.
func (s *Service) CheckReminders(ctx context.Context) ([]model.Notification, error) {
	var (
		fired     []model.Notification
		notifyErr error
	)
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		fired, notifyErr = rules.Reminders(ctx, st, st.Now(), s.opts.Tolerance, s.opts.Notifier)
		return len(fired) > 0, nil
	})
	if err != nil {
		return fired, fmt.Errorf("saving reminder ledger: %w", err)
	}
	if len(fired) > 0 {
		s.log.Info("Reminders fired", logger.F("count", len(fired)))
	}
	if notifyErr != nil {
		s.log.Warn("Reminder delivery failed", logger.Err(notifyErr))
	}
	return fired, notifyErr
}

// GenerateRecurring spawns the next occurrence of every completed
// repeating task whose date has passed.
func (s *Service) GenerateRecurring(ctx context.Context) ([]model.Task, error) {
	var spawned []model.Task
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		spawned = rules.Recurrence(st, st.Now())
		return len(spawned) > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving recurring tasks: %w", err)
	}
	if len(spawned) > 0 {
		s.log.Info("Recurring tasks generated", logger.F("count", len(spawned)))
	}
	return spawned, nil
}

// AutoArchive moves completed tasks past the retention window to the
// archive and drops ledger entries of tasks that no longer exist.
func (s *Service) AutoArchive(ctx context.Context) ([]string, error) {
	var moved []string
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		moved = rules.AutoArchive(st, st.Now(), s.opts.RetentionDays)
		pruned := st.PruneLedgers()
		return len(moved) > 0 || pruned > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving archive: %w", err)
	}
	if len(moved) > 0 {
		s.log.Info("Tasks archived automatically",
			logger.F("count", len(moved)),
			logger.F("retention_days", s.opts.RetentionDays))
	}
	return moved, nil
}

// Sweep runs every background rule once: recurrence first so that a fresh
// occurrence can carry reminders, then reminders, then auto-archive.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		res  SweepResult
		errs []error
		err  error
	)
	if res.Spawned, err = s.GenerateRecurring(ctx); err != nil {
		errs = append(errs, err)
	}
	if res.Reminders, err = s.CheckReminders(ctx); err != nil {
		errs = append(errs, err)
	}
	if res.Archived, err = s.AutoArchive(ctx); err != nil {
		errs = append(errs, err)
	}
	return res, errors.Join(errs...)
}
