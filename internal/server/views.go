package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhle/taskboard/internal/report"
	"github.com/nhle/taskboard/internal/transfer"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Dashboard())
}

func (s *Server) handleKanban(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Kanban())
}

// handleCalendar renders ?month=YYYY-MM, defaulting to the current month.
func (s *Server) handleCalendar(c echo.Context) error {
	ref := s.svc.Now()
	if m := c.QueryParam("month"); m != "" {
		parsed, err := time.ParseInLocation("2006-01", m, ref.Location())
		if err != nil {
			return badRequest(fmt.Sprintf("month %q is not YYYY-MM", m))
		}
		ref = parsed
	}
	return c.JSON(http.StatusOK, s.svc.Calendar(ref))
}

func (s *Server) handleReport(c echo.Context) error {
	period := report.Weekly
	if p := c.QueryParam("period"); p != "" {
		var err error
		if period, err = report.ParsePeriod(p); err != nil {
			return badRequest(err.Error())
		}
	}

	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, s.svc.Report(period))
	case "text":
		var buf bytes.Buffer
		if err := s.svc.RenderReport(&buf, period, report.Text{}); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := s.svc.RenderReport(&buf, period, report.XLSX{}); err != nil {
			return err
		}
		return attachment(c, "rapport-"+string(period)+".xlsx", xlsxType, buf.Bytes())
	}
	return badRequest("unknown report format " + c.QueryParam("format"))
}

// handleExport writes the filtered task list as json, csv or xlsx. A JSON
// export without filters is a full backup.
func (s *Server) handleExport(c echo.Context) error {
	tasks, err := s.listed(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	stamp := s.svc.Now().Format("2006-01-02")
	switch c.QueryParam("format") {
	case "", "json":
		if filterFrom(c).IsZero() {
			tasks = nil
		}
		if err := s.svc.ExportJSON(c.Request().Context(), &buf, tasks); err != nil {
			return err
		}
		return attachment(c, "taskboard-"+stamp+".json", echo.MIMEApplicationJSON, buf.Bytes())
	case "csv":
		if err := s.svc.ExportCSV(&buf, tasks); err != nil {
			return err
		}
		return attachment(c, "taskboard-"+stamp+".csv", "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		if err := s.svc.ExportXLSX(&buf, tasks); err != nil {
			return err
		}
		return attachment(c, "taskboard-"+stamp+".xlsx", xlsxType, buf.Bytes())
	}
	return badRequest("unknown export format " + c.QueryParam("format"))
}

// handleImport reads the request body. A full backup only replaces the
// board with ?replace=true; otherwise it is merged.
func (s *Server) handleImport(c echo.Context) error {
	ctx := c.Request().Context()
	body := c.Request().Body
	format := c.QueryParam("format")
	if format == "" && strings.Contains(c.Request().Header.Get(echo.HeaderContentType), "csv") {
		format = "csv"
	}

	if format == "csv" {
		n, err := s.svc.ImportCSV(ctx, body)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int{"tasks": n})
	}

	replace := c.QueryParam("replace") == "true"
	res, err := s.svc.ImportJSON(ctx, body, func(transfer.Summary) (bool, error) {
		return replace, nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleSweep(c echo.Context) error {
	res, err := s.svc.Sweep(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{
		"reminders": len(res.Reminders),
		"spawned":   len(res.Spawned),
		"archived":  len(res.Archived),
	})
}

func attachment(c echo.Context, name, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, contentType, data)
}
