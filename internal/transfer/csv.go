package transfer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// CSVHeader is the column row written by ExportCSV.
var CSVHeader = []string{"Nom", "Description", "Date", "Catégorie", "Statut", "Priorité", "Terminé"}

const (
	colName = iota
	colDescription
	colDate
	colCategory
	colStatus
	colPriority
	colCompleted
)

// headerAliases maps lower-cased header text to a column.
var headerAliases = map[string]int{
	"nom": colName, "name": colName, "title": colName,
	"description": colDescription,
	"date":        colDate,
	"catégorie":   colCategory, "categorie": colCategory, "category": colCategory,
	"statut": colStatus, "status": colStatus,
	"priorité": colPriority, "priorite": colPriority, "priority": colPriority,
	"terminé": colCompleted, "termine": colCompleted, "done": colCompleted, "completed": colCompleted,
}

const (
	// UntitledName replaces an empty name column.
	UntitledName = "Sans titre"
	// ImportedCategoryColor colours categories created by a CSV import.
	ImportedCategoryColor = "#999"
	// ActionImportedCSV is the history line of a task read from CSV.
	ActionImportedCSV = "Tâche importée depuis un CSV"

	yes = "Oui"
	no  = "Non"
)

// CategoryNamer resolves a category id to its display name.
type CategoryNamer func(id string) string

// ExportCSV writes one quoted row per task under the French header row.
func ExportCSV(w io.Writer, tasks []model.Task, names CategoryNamer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range tasks {
		category := ""
		if names != nil {
			category = names(t.CategoryID)
		}
		completed := no
		if t.Completed {
			completed = yes
		}
		row := []string{
			t.Name,
			t.Description,
			t.Date,
			category,
			t.Status.Label(),
			t.Priority.Label(),
			completed,
		}
		for i, cell := range row {
			row[i] = quote(cell)
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return fmt.Errorf("writing csv row for task %s: %w", t.ID, err)
		}
	}
	return bw.Flush()
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

type csvRow struct {
	name, description, date, category string
	status                            model.Status
	priority                          model.Priority
	completed                         bool
}

// ImportCSV appends every data row of r to s as a new task. Unknown
// categories are created. It returns the number of tasks added. A parse
// failure returns ErrMalformed and adds nothing.
func ImportCSV(r io.Reader, s *board.State) (int, error) {
	rows, err := parseCSV(r)
	if err != nil {
		return 0, err
	}

	now := s.Now()
	for _, row := range rows {
		t := model.Task{
			Name:        row.name,
			Description: row.description,
			Date:        row.date,
			Status:      row.status,
			Priority:    row.priority,
			Completed:   row.completed,
			CreatedAt:   now,
			UpdatedAt:   now,
			History:     []model.HistoryEntry{{Action: ActionImportedCSV, Date: now}},
		}
		switch {
		case row.category != "":
			c, ok := s.CategoryByName(row.category)
			if !ok {
				c = s.AddCategory(model.Category{Name: row.category, Color: ImportedCategoryColor})
			}
			t.CategoryID = c.ID
		case len(s.Categories) > 0:
			t.CategoryID = s.Categories[0].ID
		}
		s.AppendTask(t)
	}
	return len(rows), nil
}

func parseCSV(r io.Reader) ([]csvRow, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, malformed("empty CSV")
	}
	if err != nil {
		return nil, malformed("reading CSV header: %v", err)
	}

	cols := make(map[int]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := headerAliases[h]; ok {
			if _, dup := cols[col]; !dup {
				cols[col] = i
			}
		}
	}
	if len(cols) == 0 {
		return nil, malformed("CSV header has no known columns")
	}

	var rows []csvRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("reading CSV: %v", err)
		}
		if blank(rec) {
			continue
		}
		field := func(col int) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row := csvRow{
			name:        field(colName),
			description: field(colDescription),
			date:        normalizeDate(field(colDate)),
			category:    field(colCategory),
			status:      model.ParseStatusLabel(field(colStatus)),
			priority:    model.ParsePriorityLabel(field(colPriority)),
			completed:   parseCompleted(field(colCompleted)),
		}
		if row.name == "" {
			row.name = UntitledName
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, malformed("CSV has no data rows")
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// normalizeDate accepts YYYY-MM-DD and DD/MM/YYYY.
func normalizeDate(s string) string {
	if _, err := time.Parse(model.DateLayout, s); err == nil {
		return s
	}
	if d, err := time.Parse("02/01/2006", s); err == nil {
		return d.Format(model.DateLayout)
	}
	return s
}

func parseCompleted(s string) bool {
	l := strings.ToLower(s)
	switch l {
	case "yes", "true", "1", "x":
		return true
	}
	return strings.HasPrefix(l, "o")
}
