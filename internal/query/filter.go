// Package query filters and sorts task lists. Every function is pure: it
// never mutates the slice it is given.
package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/nhle/taskboard/internal/model"
)

// Filter is a conjunction of criteria. Zero-valued fields match everything.
type Filter struct {
	Search     string
	CategoryID string
	Status     model.Status
	Priority   model.Priority
	Date       string
	Assignee   string
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether t satisfies every set criterion.
func (f Filter) Match(t model.Task) bool {
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	if f.Assignee != "" && !t.HasAssignee(f.Assignee) {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		fold := cases.Fold()
		needle := fold.String(q)
		if !strings.Contains(fold.String(t.Name), needle) &&
			!strings.Contains(fold.String(t.Description), needle) {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching f, in their original order.
func Apply(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
