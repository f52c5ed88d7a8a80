package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

// RenderError reports a failure of the document renderer. The board itself
// is never affected by one.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s report: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

const periodLayout = "02/01/2006"

// Renderer turns a report into a document.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Text lays the report out as aligned plain text.
type Text struct{}

// Render writes r to w.
func (Text) Render(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", r.Period.Title())
	fmt.Fprintf(tw, "Période:\t%s - %s\n\n", r.Start.Format(periodLayout), r.End.Format(periodLayout))
	fmt.Fprintf(tw, "Total de tâches:\t%d\n", r.Total)
	fmt.Fprintf(tw, "Tâches terminées:\t%d\n", r.Completed)
	fmt.Fprintf(tw, "Taux d'achèvement:\t%d%%\n", r.CompletionRate)
	fmt.Fprintf(tw, "Tâches en cours:\t%d\n\n", r.Open)

	fmt.Fprintln(tw, "Répartition par priorité")
	for _, c := range r.ByPriority {
		fmt.Fprintf(tw, "  %s\t%d\t(%d%%)\n", c.Label, c.Count, c.Percent)
	}
	fmt.Fprintln(tw, "\nRépartition par catégorie")
	for _, c := range r.ByCategory {
		fmt.Fprintf(tw, "  %s\t%d\t(%d%%)\n", c.Label, c.Count, c.Percent)
	}
	if len(r.CompletedTasks) > 0 {
		fmt.Fprintln(tw, "\nTâches terminées")
		for _, t := range r.CompletedTasks {
			fmt.Fprintf(tw, "  %s\t%s\n", t.Name, t.Date)
		}
	}
	if err := tw.Flush(); err != nil {
		return &RenderError{Format: "text", Err: err}
	}
	return nil
}

// XLSX renders the report as a one-sheet workbook.
type XLSX struct{}

const reportSheet = "Rapport"

// Render writes r to w as an .xlsx document.
func (XLSX) Render(w io.Writer, r Report) error {
	if err := renderXLSX(w, r); err != nil {
		return &RenderError{Format: "xlsx", Err: err}
	}
	return nil
}

type line struct {
	style  int
	values []any
}

func renderXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: "667EEA"}})
	if err != nil {
		return err
	}

	lines := []line{
		{title, []any{r.Period.Title()}},
		{0, []any{"Période", r.Start.Format(periodLayout) + " - " + r.End.Format(periodLayout)}},
		{},
		{bold, []any{"Statistiques générales"}},
		{0, []any{"Total de tâches", r.Total}},
		{0, []any{"Tâches terminées", r.Completed}},
		{0, []any{"Taux d'achèvement (%)", r.CompletionRate}},
		{0, []any{"Tâches en cours", r.Open}},
		{},
		{bold, []any{"Répartition par priorité"}},
	}
	for _, c := range r.ByPriority {
		lines = append(lines, line{0, []any{c.Label, c.Count, c.Percent}})
	}
	lines = append(lines, line{}, line{bold, []any{"Répartition par catégorie"}})
	for _, c := range r.ByCategory {
		lines = append(lines, line{0, []any{c.Label, c.Count, c.Percent}})
	}
	if len(r.CompletedTasks) > 0 {
		lines = append(lines, line{}, line{bold, []any{"Tâches terminées"}})
		for _, t := range r.CompletedTasks {
			lines = append(lines, line{0, []any{t.Name, t.Date}})
		}
	}

	for i, l := range lines {
		if l.values == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(reportSheet, cell, &l.values); err != nil {
			return err
		}
		if l.style != 0 {
			if err := f.SetCellStyle(reportSheet, cell, cell, l.style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(reportSheet, "A", "A", 36); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
