package app

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
	"github.com/nhle/taskboard/internal/rules"
)

// CreateTask validates and stores a new task.
func (s *Service) CreateTask(ctx context.Context, in board.TaskInput) (model.Task, error) {
	var created model.Task
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		t, err := st.CreateTask(in)
		if err != nil {
			return false, err
		}
		created = t
		return true, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	s.log.Info("Task created", logger.F("id", created.ID), logger.F("name", created.Name))
	return created, nil
}

// UpdateTask edits an active or archived task. It reports false when no
// task has that id.
func (s *Service) UpdateTask(ctx context.Context, id string, in board.TaskInput) (model.Task, bool, error) {
	var (
		updated model.Task
		found   bool
	)
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		t, ok, err := st.UpdateTask(id, in)
		if err != nil || !ok {
			return false, err
		}
		updated, found = t, true
		return true, nil
	})
	if err != nil {
		return model.Task{}, found, fmt.Errorf("updating task %s: %w", id, err)
	}
	return updated, found, nil
}

// InputFrom returns the editable fields of t, ready to be changed and fed
// back to UpdateTask. Attachments are left out since updates append them.
func InputFrom(t model.Task) board.TaskInput {
	return board.TaskInput{
		Name:         t.Name,
		Description:  t.Description,
		Date:         t.Date,
		CategoryID:   t.CategoryID,
		Status:       t.Status,
		Priority:     t.Priority,
		Assignees:    append([]string(nil), t.Assignees...),
		Dependencies: append([]string(nil), t.Dependencies...),
		Recurrence:   t.Recurrence,
		Reminders:    append([]int(nil), t.Reminders...),
	}
}

// DeleteTask removes an active task, or an archived one when archived is
// set.
func (s *Service) DeleteTask(ctx context.Context, id string, archived bool) (bool, error) {
	var found bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		if archived {
			found = st.DeleteArchived(id)
		} else {
			found = st.DeleteTask(id)
		}
		return found, nil
	})
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}
	if found {
		s.log.Info("Task deleted", logger.F("id", id), logger.F("archived", archived))
	}
	return found, nil
}

// SetCompleted completes or reopens an active task. Completing a blocked
// task returns ErrBlocked.
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) (model.Task, bool, error) {
	var (
		result model.Task
		found  bool
	)
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		t, ok := st.Task(id)
		if !ok {
			return false, nil
		}
		found = true
		if completed && !t.Completed && rules.IsBlocked(st, t) {
			return false, ErrBlocked
		}
		result, _ = st.SetCompleted(id, completed)
		return result.Completed != t.Completed, nil
	})
	if err != nil {
		return model.Task{}, found, fmt.Errorf("completing task %s: %w", id, err)
	}
	return result, found, nil
}

// ToggleCompleted flips the completion flag of an active task.
func (s *Service) ToggleCompleted(ctx context.Context, id string) (model.Task, bool, error) {
	t, ok := s.Task(id)
	if !ok {
		return model.Task{}, false, nil
	}
	return s.SetCompleted(ctx, id, !t.Completed)
}

// ChangeStatus moves an active task to another kanban column. Moving a
// blocked task to done returns ErrBlocked.
func (s *Service) ChangeStatus(ctx context.Context, id string, status model.Status) (model.Task, bool, error) {
	var (
		result model.Task
		found  bool
	)
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		t, ok := st.Task(id)
		if !ok {
			return false, nil
		}
		if status == model.StatusDone && rules.IsBlocked(st, t) {
			return false, ErrBlocked
		}
		r, ok, err := st.ChangeStatus(id, status)
		if err != nil {
			return false, err
		}
		result, found = r, ok
		return r.Status != t.Status, nil
	})
	if err != nil {
		return model.Task{}, found, fmt.Errorf("changing status of task %s: %w", id, err)
	}
	return result, found, nil
}

// ArchiveTask moves a completed task to the archive.
func (s *Service) ArchiveTask(ctx context.Context, id string) (bool, error) {
	var moved bool
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		moved = st.ArchiveTask(id)
		return moved, nil
	})
	if err != nil {
		return false, fmt.Errorf("archiving task %s: %w", id, err)
	}
	return moved, nil
}

// AddComment appends a comment signed with the configured author.
func (s *Service) AddComment(ctx context.Context, id, text string) (model.Comment, bool, error) {
	var (
		c     model.Comment
		found bool
	)
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		c, found, err = st.AddComment(id, text, s.opts.Author)
		return found, err
	})
	if err != nil {
		return model.Comment{}, found, fmt.Errorf("commenting on task %s: %w", id, err)
	}
	return c, found, nil
}

// Task returns an active task.
func (s *Service) Task(id string) (model.Task, bool) {
	var (
		t  model.Task
		ok bool
	)
	s.read(func(st *board.State) { t, ok = st.Task(id) })
	return t, ok
}

// ArchivedTask returns an archived task.
func (s *Service) ArchivedTask(id string) (model.Task, bool) {
	var (
		t  model.Task
		ok bool
	)
	s.read(func(st *board.State) { t, ok = st.ArchivedTask(id) })
	return t, ok
}

// Tasks lists the active tasks matching f, ordered by key.
func (s *Service) Tasks(f query.Filter, key query.SortKey) []model.Task {
	var out []model.Task
	s.read(func(st *board.State) {
		out = query.Sort(query.Apply(st.ActiveTasks(), f), key, st.CategoryName)
	})
	return out
}

// ArchivedTasks lists the archive, most recently archived first.
func (s *Service) ArchivedTasks() []model.Task {
	var out []model.Task
	s.read(func(st *board.State) { out = st.ArchivedTasks() })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Blocking lists the open dependencies keeping a task from completion.
func (s *Service) Blocking(id string) []model.Task {
	var out []model.Task
	s.read(func(st *board.State) {
		if t, ok := st.Task(id); ok {
			out = rules.BlockingTasks(st, t)
		}
	})
	return out
}
