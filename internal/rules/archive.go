package rules

import (
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// DefaultRetentionDays is how long a completed task stays active.
const DefaultRetentionDays = 30

// AutoArchive moves every completed active task last updated more than
// retentionDays before now into the archive. It returns the moved ids.
func AutoArchive(s *board.State, now time.Time, retentionDays int) []string {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	return s.ArchiveWhere(func(t model.Task) bool {
		return t.Completed && t.UpdatedAt.Before(cutoff)
	}, board.ActionAutoArchived)
}
