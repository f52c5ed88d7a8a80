package query

import (
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func sample() []model.Task {
	return []model.Task{
		{ID: "1", Name: "Écrire le rapport", Description: "Quarterly numbers", Date: "2025-03-12",
			CategoryID: "work", Status: model.StatusInProgress, Priority: model.PriorityHigh, Assignees: []string{"alice"}},
		{ID: "2", Name: "buy milk", Date: "2025-03-10",
			CategoryID: "home", Status: model.StatusTodo, Priority: model.PriorityLow},
		{ID: "3", Name: "Deploy", Description: "release the REPORT service", Date: "2025-03-11",
			CategoryID: "work", Status: model.StatusDone, Priority: model.PriorityUrgent, Assignees: []string{"bob"}},
		{ID: "4", Name: "Call bank", Date: "2025-03-10",
			Status: model.StatusReview, Priority: model.PriorityMedium},
	}
}

func ids(tasks []model.Task) string {
	s := ""
	for _, t := range tasks {
		s += t.ID
	}
	return s
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"no filter", Filter{}, "1234"},
		{"search name", Filter{Search: "MILK"}, "2"},
		{"search description", Filter{Search: "report"}, "3"},
		{"search accented", Filter{Search: "écrire"}, "1"},
		{"category", Filter{CategoryID: "work"}, "13"},
		{"status", Filter{Status: model.StatusReview}, "4"},
		{"priority", Filter{Priority: model.PriorityUrgent}, "3"},
		{"date", Filter{Date: "2025-03-10"}, "24"},
		{"assignee", Filter{Assignee: "alice"}, "1"},
		{"conjunction", Filter{CategoryID: "work", Assignee: "bob"}, "3"},
		{"no match", Filter{CategoryID: "work", Status: model.StatusTodo}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Apply(sample(), tt.filter)); got != tt.want {
				t.Errorf("Apply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyIsCommutative(t *testing.T) {
	a := Filter{CategoryID: "work"}
	b := Filter{Priority: model.PriorityHigh}
	both := Filter{CategoryID: "work", Priority: model.PriorityHigh}

	ab := ids(Apply(Apply(sample(), a), b))
	ba := ids(Apply(Apply(sample(), b), a))
	if ab != ba || ab != ids(Apply(sample(), both)) {
		t.Errorf("ab=%q ba=%q both=%q", ab, ba, ids(Apply(sample(), both)))
	}
	if len(Apply(sample(), Filter{})) < len(Apply(sample(), a)) {
		t.Error("unfiltered result must be a superset")
	}
}

func TestSort(t *testing.T) {
	names := func(id string) string {
		switch id {
		case "work":
			return "Travail"
		case "home":
			return "Personnel"
		}
		return ""
	}
	tests := []struct {
		key  SortKey
		want string
	}{
		{SortName, "2431"},
		{SortDateAsc, "2431"},
		{SortDateDesc, "1324"},
		{SortPriority, "3142"},
		{SortStatus, "2143"},
		{SortCategory, "4213"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := ids(Sort(sample(), tt.key, names)); got != tt.want {
				t.Errorf("Sort(%s) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Sort(in, SortPriority, nil)
	if got := ids(in); got != "1234" {
		t.Errorf("input reordered to %q", got)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortDateAsc {
		t.Errorf("empty key = %q, %v", k, err)
	}
	if k, err := ParseSortKey("Priority"); err != nil || k != SortPriority {
		t.Errorf("Priority = %q, %v", k, err)
	}
	if _, err := ParseSortKey("random"); err == nil {
		t.Error("unknown key should error")
	}
}
