package app

import (
	"context"
	"fmt"
	"io"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/report"
	"github.com/nhle/taskboard/internal/transfer"
)

// ImportJSON applies a JSON backup or legacy export. confirm is asked before
// a full backup replaces the board; it runs with the board locked and must
// not call back into the service.
func (s *Service) ImportJSON(ctx context.Context, r io.Reader, confirm transfer.Confirm) (transfer.Result, error) {
	var res transfer.Result
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		res, err = transfer.ImportJSON(ctx, r, st, s.store, confirm)
		return err == nil, err
	})
	if err != nil {
		s.log.Warn("JSON import failed", logger.Err(err))
		return transfer.Result{}, fmt.Errorf("importing JSON: %w", err)
	}
	s.log.Info("JSON import applied",
		logger.F("mode", res.Mode),
		logger.F("tasks", res.Tasks),
		logger.F("categories", res.Categories))
	return res, nil
}

// ImportCSV adds the rows of a CSV export as new tasks.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	var n int
	err := s.mutate(ctx, func(st *board.State) (bool, error) {
		var err error
		n, err = transfer.ImportCSV(r, st)
		return err == nil && n > 0, err
	})
	if err != nil {
		s.log.Warn("CSV import failed", logger.Err(err))
		return 0, fmt.Errorf("importing CSV: %w", err)
	}
	s.log.Info("CSV import applied", logger.F("tasks", n))
	return n, nil
}

// ExportJSON writes a full backup. tasks restricts the active tasks
// written; nil writes all of them.
func (s *Service) ExportJSON(ctx context.Context, w io.Writer, tasks []model.Task) error {
	var err error
	s.read(func(st *board.State) {
		err = transfer.ExportJSON(ctx, w, st, tasks, s.store)
	})
	if err != nil {
		return fmt.Errorf("exporting JSON: %w", err)
	}
	return nil
}

// ExportCSV writes tasks as CSV.
func (s *Service) ExportCSV(w io.Writer, tasks []model.Task) error {
	names := s.categoryNames()
	if err := transfer.ExportCSV(w, tasks, names); err != nil {
		return fmt.Errorf("exporting CSV: %w", err)
	}
	return nil
}

// ExportXLSX writes tasks as a spreadsheet.
func (s *Service) ExportXLSX(w io.Writer, tasks []model.Task) error {
	contacts := make(map[string]string)
	for _, c := range s.Contacts() {
		contacts[c.ID] = c.Name
	}
	names := s.categoryNames()
	err := transfer.ExportXLSX(w, tasks, names, func(id string) string { return contacts[id] })
	if err != nil {
		return fmt.Errorf("exporting XLSX: %w", err)
	}
	return nil
}

// Report builds the weekly or monthly report over the active tasks.
func (s *Service) Report(period report.Period) report.Report {
	var r report.Report
	s.read(func(st *board.State) {
		r = report.Build(period, st.ActiveTasks(), st.Now(), st.CategoryName)
	})
	return r
}

// RenderReport writes the report through renderer. Rendering failures are
// logged and returned as a *report.RenderError; the board is not affected.
func (s *Service) RenderReport(w io.Writer, period report.Period, renderer report.Renderer) error {
	if err := renderer.Render(w, s.Report(period)); err != nil {
		s.log.Error("Report rendering failed", logger.F("period", period), logger.Err(err))
		return err
	}
	return nil
}

func (s *Service) categoryNames() func(string) string {
	names := make(map[string]string)
	for _, c := range s.Categories() {
		names[c.ID] = c.Name
	}
	return func(id string) string { return names[id] }
}
