package overview

import (
	"math"

	"github.com/nhle/taskboard/internal/model"
)

// CategoryCount tallies the tasks of one category.
type CategoryCount struct {
	ID    string
	Name  string
	Color string
	Count int
}

// LabelCount tallies the tasks carrying one enum value.
type LabelCount struct {
	Key   string
	Label string
	Count int
}

// Dashboard holds the headline numbers of a task list.
type Dashboard struct {
	Total          int
	Completed      int
	Active         int
	CompletionRate int
	ByCategory     []CategoryCount
	ByPriority     []LabelCount
	ByStatus       []LabelCount
}

// BuildDashboard computes dashboard counts over tasks. A task counts as
// completed when it is flagged so or sits in the done column. Tasks in a
// deleted category are left out of ByCategory.
func BuildDashboard(tasks []model.Task, categories []model.Category) Dashboard {
	d := Dashboard{Total: len(tasks)}

	catIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		d.ByCategory = append(d.ByCategory, CategoryCount{ID: c.ID, Name: c.Name, Color: c.Color})
		catIndex[c.ID] = i
	}

	priorities := make(map[model.Priority]int)
	statuses := make(map[model.Status]int)
	for _, t := range tasks {
		if t.Completed || t.Status == model.StatusDone {
			d.Completed++
		}
		if i, ok := catIndex[t.CategoryID]; ok {
			d.ByCategory[i].Count++
		}
		priorities[t.Priority]++
		statuses[t.Status]++
	}
	d.Active = d.Total - d.Completed
	if d.Total > 0 {
		d.CompletionRate = int(math.Round(float64(d.Completed) / float64(d.Total) * 100))
	}

	// Lowest priority first, as the chart reads bottom-up.
	for i := len(model.Priorities) - 1; i >= 0; i-- {
		p := model.Priorities[i]
		d.ByPriority = append(d.ByPriority, LabelCount{Key: string(p), Label: p.Label(), Count: priorities[p]})
	}
	for _, s := range model.Statuses {
		d.ByStatus = append(d.ByStatus, LabelCount{Key: string(s), Label: s.Label(), Count: statuses[s]})
	}
	return d
}
