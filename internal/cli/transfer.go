package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/report"
	"github.com/nhle/taskboard/internal/transfer"
)

var (
	importFormat string
	importYes    bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import tasks from a JSON backup or CSV export",
	Long: `Import tasks. The format is taken from the file extension unless
--format is given; "-" reads stdin.

A version 2.0 JSON backup replaces the whole board after confirmation.
Declining merges its tasks into the board instead. Older JSON exports and CSV
files are always merged.

Examples:
  taskboard import backup.json
  taskboard import tasks.csv
  cat backup.json | taskboard import - --format json --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := transferFormat(importFormat, args[0])
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		switch format {
		case "csv":
			n, err := env.svc.ImportCSV(cmd.Context(), bytes.NewReader(data))
			if err != nil {
				return err
			}
			fmt.Printf("✓ Imported %d task(s)\n", n)
			return nil
		case "json":
			res, err := env.svc.ImportJSON(cmd.Context(), bytes.NewReader(data), replaceConfirm)
			if err != nil {
				return err
			}
			if res.Mode == transfer.ModeReplace {
				fmt.Printf("✓ Board replaced: %d task(s), %d archived, %d categories, %d contacts, %d notes\n",
					res.Tasks, res.Archived, res.Categories, res.Contacts, res.Notes)
			} else {
				fmt.Printf("✓ Merged %d task(s)\n", res.Tasks)
			}
			return nil
		}
		return fmt.Errorf("unsupported import format %q", format)
	},
}

// replaceConfirm asks whether a backup may replace the board. It only
// prompts, so it is safe to run under the service lock.
func replaceConfirm(sum transfer.Summary) (bool, error) {
	return confirm("Replace the whole board?",
		fmt.Sprintf("The backup holds %d task(s), %d archived, %d categories, %d contacts and %d notes. "+
			"Choosing No merges its tasks instead.",
			sum.Tasks, sum.Archived, sum.Categories, sum.Contacts, sum.Notes),
		importYes)
}

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as JSON, CSV or XLSX",
	Long: `Export tasks. JSON writes a full 2.0 backup including the archive,
categories, contacts, notes and attachments. CSV and XLSX write the active
tasks matching the list filters.

Examples:
  taskboard export -o backup.json
  taskboard export --format csv --status done > done.csv
  taskboard export -o tasks.xlsx --category Travail`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := transferFormat(exportFormat, exportOutput)
		if format == "" {
			format = "json"
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := listFilter(env.svc)
		if err != nil {
			return err
		}
		var tasks []model.Task
		if !f.IsZero() || format != "json" {
			tasks = env.svc.Tasks(f, "")
		}

		var buf bytes.Buffer
		switch format {
		case "json":
			err = env.svc.ExportJSON(cmd.Context(), &buf, tasks)
		case "csv":
			err = env.svc.ExportCSV(&buf, tasks)
		case "xlsx":
			err = env.svc.ExportXLSX(&buf, tasks)
		default:
			return fmt.Errorf("unsupported export format %q", format)
		}
		if err != nil {
			return err
		}
		return writeOutput(exportOutput, buf.Bytes())
	},
}

var (
	reportPeriod string
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise the tasks of the last week or month",
	Long: `Print a weekly or monthly report over the tasks created in the period.

Examples:
  taskboard report
  taskboard report --period monthly
  taskboard report --format xlsx -o march.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := report.ParsePeriod(reportPeriod)
		if err != nil {
			return err
		}
		format := transferFormat(reportFormat, reportOutput)

		var renderer report.Renderer
		switch format {
		case "", "text", "txt":
			renderer = report.Text{}
		case "xlsx":
			renderer = report.XLSX{}
		default:
			return fmt.Errorf("unsupported report format %q", format)
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var buf bytes.Buffer
		if err := env.svc.RenderReport(&buf, period, renderer); err != nil {
			return err
		}
		return writeOutput(reportOutput, buf.Bytes())
	},
}

// transferFormat picks the explicit format, else the extension of path.
func transferFormat(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format (json, csv)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace the board without asking")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format (json, csv, xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (defaults to stdout)")
	exportCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Only tasks matching the search")
	exportCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only tasks of this category")
	exportCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only tasks with this status")
	exportCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Only tasks with this priority")
	exportCmd.Flags().StringVarP(&listDate, "date", "d", "", "Only tasks due on this day")
	exportCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Only tasks assigned to this contact")

	reportCmd.Flags().StringVar(&reportPeriod, "period", "weekly", "Report period (weekly, monthly)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "Output format (text, xlsx)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (defaults to stdout)")
}
