package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/taskboard/internal/model"
)

// SortKey selects the ordering used by Sort.
type SortKey string

const (
	SortName     SortKey = "name"
	SortDateAsc  SortKey = "date-asc"
	SortDateDesc SortKey = "date-desc"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
	SortCategory SortKey = "category"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{SortName, SortDateAsc, SortDateDesc, SortPriority, SortStatus, SortCategory}

// ParseSortKey validates a user-supplied key. An empty string selects
// ascending date order.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return SortDateAsc, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// CategoryNamer resolves a category id to its display name. Unknown or
// unset ids resolve to "".
type CategoryNamer func(id string) string

// Sort returns a stably sorted copy of tasks. names is only consulted for
// SortCategory and may be nil otherwise.
func Sort(tasks []model.Task, key SortKey, names CategoryNamer) []model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []model.Task{}
	}

	var cmp func(a, b model.Task) int
	switch key {
	case SortName:
		col := collate.New(language.French, collate.IgnoreCase)
		cmp = func(a, b model.Task) int { return col.CompareString(a.Name, b.Name) }
	case SortDateDesc:
		cmp = func(a, b model.Task) int { return strings.Compare(b.Date, a.Date) }
	case SortPriority:
		cmp = func(a, b model.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortStatus:
		cmp = func(a, b model.Task) int { return a.Status.Rank() - b.Status.Rank() }
	case SortCategory:
		if names == nil {
			names = func(string) string { return "" }
		}
		col := collate.New(language.French, collate.IgnoreCase)
		cmp = func(a, b model.Task) int {
			return col.CompareString(names(a.CategoryID), names(b.CategoryID))
		}
	default:
		cmp = func(a, b model.Task) int { return strings.Compare(a.Date, b.Date) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}
