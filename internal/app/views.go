package app

import (
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/overview"
)

// Dashboard summarises the active tasks.
func (s *Service) Dashboard() overview.Dashboard {
	var d overview.Dashboard
	s.read(func(st *board.State) {
		d = overview.BuildDashboard(st.Tasks, st.Categories)
	})
	return d
}

// Kanban groups the active tasks by status.
func (s *Service) Kanban() []overview.Column {
	var cols []overview.Column
	s.read(func(st *board.State) { cols = overview.Kanban(st.ActiveTasks()) })
	return cols
}

// Calendar lays out the month containing ref.
func (s *Service) Calendar(ref time.Time) overview.Month {
	var m overview.Month
	s.read(func(st *board.State) {
		m = overview.Calendar(ref, st.ActiveTasks(), st.Now())
	})
	return m
}
