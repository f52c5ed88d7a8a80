// Package report computes weekly and monthly activity reports and renders
// them as spreadsheets.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Period selects the report window.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod validates a user-supplied period.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Weekly, "week", "hebdo":
		return Weekly, nil
	case Monthly, "month", "mensuel":
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown report period %q", s)
}

// Title is the heading printed at the top of a report.
func (p Period) Title() string {
	if p == Monthly {
		return "Rapport Mensuel"
	}
	return "Rapport Hebdomadaire"
}

// MaxCompletedListed caps the completed-task list of a report.
const MaxCompletedListed = 15

// Uncategorized labels tasks whose category is unset or deleted.
const Uncategorized = "Sans catégorie"

// Count is a labelled tally with its share of the total.
type Count struct {
	Label   string
	Count   int
	Percent int
}

// Report summarises the tasks created within a period.
type Report struct {
	Period         Period
	Start, End     time.Time
	Total          int
	Completed      int
	Open           int
	CompletionRate int
	ByPriority     []Count
	ByCategory     []Count
	CompletedTasks []model.Task
}

// Build computes the report for the tasks created in the window ending at
// now. categoryName resolves ids to names.
func Build(period Period, tasks []model.Task, now time.Time, categoryName func(string) string) Report {
	start := now.AddDate(0, 0, -7)
	if period == Monthly {
		start = now.AddDate(0, -1, 0)
	}
	r := Report{Period: period, Start: start, End: now}

	var inPeriod []model.Task
	for _, t := range tasks {
		if t.CreatedAt.Before(start) || t.CreatedAt.After(now) {
			continue
		}
		inPeriod = append(inPeriod, t)
	}

	r.Total = len(inPeriod)
	priorities := make(map[model.Priority]int)
	categories := make(map[string]int)
	for _, t := range inPeriod {
		if t.Completed {
			r.Completed++
			if len(r.CompletedTasks) < MaxCompletedListed {
				r.CompletedTasks = append(r.CompletedTasks, t)
			}
		}
		priorities[t.Priority]++
		name := ""
		if categoryName != nil {
			name = categoryName(t.CategoryID)
		}
		if name == "" {
			name = Uncategorized
		}
		categories[name]++
	}
	r.Open = r.Total - r.Completed
	r.CompletionRate = percent(r.Completed, r.Total)

	for _, p := range model.Priorities {
		r.ByPriority = append(r.ByPriority, Count{
			Label:   p.Label(),
			Count:   priorities[p],
			Percent: percent(priorities[p], r.Total),
		})
	}

	for name, n := range categories {
		r.ByCategory = append(r.ByCategory, Count{Label: name, Count: n, Percent: percent(n, r.Total)})
	}
	sort.Slice(r.ByCategory, func(i, j int) bool {
		if r.ByCategory[i].Count != r.ByCategory[j].Count {
			return r.ByCategory[i].Count > r.ByCategory[j].Count
		}
		return r.ByCategory[i].Label < r.ByCategory[j].Label
	})
	return r
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
