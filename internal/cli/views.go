package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/overview"
	"github.com/nhle/taskboard/internal/theme"
)

// boardColumnWidth is the width of one kanban column in the board output.
const boardColumnWidth = 28

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the dashboard and the kanban board",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		d := env.svc.Dashboard()
		fmt.Println(theme.HeaderStyle.Render("Tableau de bord"))
		fmt.Printf("Total %d  ·  Terminées %d  ·  Actives %d  ·  Achèvement %d%%\n\n",
			d.Total, d.Completed, d.Active, d.CompletionRate)

		for _, c := range d.ByCategory {
			fmt.Printf("  %s %-16s %d\n", theme.SwatchStyle(c.Color).Render("●"), c.Name, c.Count)
		}
		fmt.Println()

		cols := env.svc.Kanban()
		rendered := make([]string, 0, len(cols))
		for _, col := range cols {
			rendered = append(rendered, renderColumn(col))
		}
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
		return nil
	},
}

func renderColumn(col overview.Column) string {
	var b strings.Builder
	b.WriteString(theme.StatusStyle(col.Status).Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks))))
	for _, t := range col.Tasks {
		b.WriteString("\n")
		name := t.Name
		if len(name) > boardColumnWidth-4 {
			name = name[:boardColumnWidth-5] + "…"
		}
		b.WriteString(theme.PriorityStyle(t.Priority).Render("▌") + " " + name)
	}
	return theme.ColumnStyle.Width(boardColumnWidth).Render(b.String())
}

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Print a month with the tasks due on each day",
	Long: `Print a month grid, Monday first, with the number of tasks due on
each day.

Examples:
  taskboard calendar
  taskboard calendar --month 2025-04`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ref := env.svc.Now()
		if calendarMonth != "" {
			ref, err = time.ParseInLocation("2006-01", calendarMonth, time.Local)
			if err != nil {
				return fmt.Errorf("invalid month %q, expected YYYY-MM", calendarMonth)
			}
		}
		fmt.Print(renderMonth(env.svc.Calendar(ref)))
		return nil
	},
}

func renderMonth(m overview.Month) string {
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(m.Title))
	b.WriteString("\n")
	for _, name := range overview.WeekdayNames {
		fmt.Fprintf(&b, "%-7s", name)
	}
	b.WriteString("\n")

	today := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	outside := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	var due []overview.Day
	for _, week := range m.Weeks {
		for _, d := range week {
			cell := fmt.Sprintf("%2d", d.Number)
			if n := len(d.Tasks); n > 0 {
				cell += fmt.Sprintf("•%d", n)
				due = append(due, d)
			}
			cell = fmt.Sprintf("%-7s", cell)
			switch {
			case !d.InMonth:
				cell = outside.Render(cell)
			case d.Today:
				cell = today.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	for _, d := range due {
		names := make([]string, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			names = append(names, t.Name)
		}
		fmt.Fprintf(&b, "\n%s  %s", d.Date, strings.Join(names, ", "))
	}
	if len(due) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the background rules once",
	Long: `Generate recurring tasks, fire due reminders and archive completed tasks
past the retention window, then exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		for _, res := range env.scheduler().RunAll(cmd.Context()) {
			if res.Skipped {
				fmt.Printf("… %s: already running\n", res.Kind)
				continue
			}
			if res.Err != nil {
				fmt.Printf("✗ %s: %v\n", res.Kind, res.Err)
				continue
			}
			fmt.Printf("✓ %s: %d reminder(s), %d spawned, %d archived\n",
				res.Kind, len(res.Reminders), len(res.Spawned), len(res.Archived))
		}
		n, err := env.svc.PruneBlobs(cmd.Context())
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Printf("✓ removed %d orphaned attachment(s)\n", n)
		}
		return nil
	},
}

var notificationsUnread bool

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List fired reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ns, err := env.svc.Notifications(cmd.Context(), notificationsUnread)
		if err != nil {
			return err
		}
		if len(ns) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		for _, n := range ns {
			mark := "●"
			if n.Read {
				mark = " "
			}
			fmt.Printf("%s %s  %s  %s\n", mark, shortID(n.ID), n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ns, err := env.svc.Notifications(cmd.Context(), false)
		if err != nil {
			return err
		}
		id := ""
		for _, n := range ns {
			if strings.HasPrefix(n.ID, args[0]) {
				id = n.ID
				break
			}
		}
		if id == "" {
			return fmt.Errorf("notification not found: %s", args[0])
		}
		return env.svc.MarkNotificationRead(cmd.Context(), id)
	},
}

func init() {
	calendarCmd.Flags().StringVarP(&calendarMonth, "month", "m", "", "Month to show (YYYY-MM)")
	notificationsCmd.Flags().BoolVarP(&notificationsUnread, "unread", "u", false, "Only unread notifications")
	notificationsCmd.AddCommand(notificationsReadCmd)
}
