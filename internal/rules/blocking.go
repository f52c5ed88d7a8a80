package rules

import (
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// IsBlocked reports whether any dependency of t is an incomplete active task.
// Dependencies that were deleted or archived no longer block.
func IsBlocked(s *board.State, t model.Task) bool {
	for _, dep := range t.Dependencies {
		if d, ok := s.Task(dep); ok && !d.Completed {
			return true
		}
	}
	return false
}

// BlockingTasks lists the incomplete active dependencies of t in dependency
// order.
func BlockingTasks(s *board.State, t model.Task) []model.Task {
	var blocking []model.Task
	for _, dep := range t.Dependencies {
		if d, ok := s.Task(dep); ok && !d.Completed {
			blocking = append(blocking, d)
		}
	}
	return blocking
}
