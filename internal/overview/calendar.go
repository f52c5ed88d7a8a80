package overview

import (
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// calendarDays is six full weeks, enough for any month.
const calendarDays = 42

var monthNames = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// WeekdayNames heads the calendar columns, Monday first.
var WeekdayNames = [7]string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// MonthName returns the display name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Day is one cell of the calendar grid.
type Day struct {
	Date    string
	Number  int
	InMonth bool
	Today   bool
	Tasks   []model.Task
}

// Month is a six-week grid starting on the Monday on or before the 1st.
type Month struct {
	Year  int
	Month time.Month
	Title string
	Weeks [][7]Day
}

// Calendar lays out the month containing ref, placing each task on the day
// matching its date.
func Calendar(ref time.Time, tasks []model.Task, now time.Time) Month {
	loc := ref.Location()
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) + 6) % 7 // Monday = 0
	start := first.AddDate(0, 0, -offset)
	today := now.In(loc).Format(model.DateLayout)

	byDate := make(map[string][]model.Task)
	for _, t := range tasks {
		byDate[t.Date] = append(byDate[t.Date], t)
	}

	m := Month{
		Year:  first.Year(),
		Month: first.Month(),
		Title: MonthName(first.Month()) + " " + first.Format("2006"),
		Weeks: make([][7]Day, calendarDays/7),
	}
	for i := 0; i < calendarDays; i++ {
		d := start.AddDate(0, 0, i)
		date := d.Format(model.DateLayout)
		cell := Day{
			Date:    date,
			Number:  d.Day(),
			InMonth: d.Month() == first.Month(),
			Today:   date == today,
		}
		if cell.InMonth {
			cell.Tasks = byDate[date]
		}
		m.Weeks[i/7][i%7] = cell
	}
	return m
}
