package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/taskboard/internal/model"
)

const taskSheet = "Tâches"

// ContactNamer resolves a contact id to its display name.
type ContactNamer func(id string) string

// ExportXLSX writes tasks as a spreadsheet with the CSV columns plus the
// assignee names.
func ExportXLSX(w io.Writer, tasks []model.Task, categories CategoryNamer, contacts ContactNamer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", taskSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := append(append([]string{}, CSVHeader...), "Personnes")
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"3498DB"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(taskSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(taskSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for r, t := range tasks {
		category := ""
		if categories != nil {
			category = categories(t.CategoryID)
		}
		var people []string
		if contacts != nil {
			for _, id := range t.Assignees {
				if name := contacts(id); name != "" {
					people = append(people, name)
				}
			}
		}
		completed := no
		if t.Completed {
			completed = yes
		}
		values := []any{
			t.Name, t.Description, t.Date, category,
			t.Status.Label(), t.Priority.Label(), completed,
			strings.Join(people, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(taskSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row for task %s: %w", t.ID, err)
		}
	}

	if err := f.SetColWidth(taskSheet, "A", "B", 32); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(taskSheet, "C", "H", 14); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}
