package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
)

// taskFlags holds the flags shared by add and edit.
type taskFlags struct {
	desc       string
	date       string
	category   string
	priority   string
	status     string
	assign     []string
	depends    []string
	recurrence string
	remind     []int
	attach     []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.desc, "desc", "", "Description")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Due date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority (low, medium, high, urgent)")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Status (todo, inprogress, review, done)")
	cmd.Flags().StringSliceVarP(&f.assign, "assign", "a", nil, "Assignee contact ids or names")
	cmd.Flags().StringSliceVar(&f.depends, "depends", nil, "Ids of tasks this one waits on")
	cmd.Flags().StringVarP(&f.recurrence, "recurrence", "r", "", "Recurrence (none, daily, weekly, monthly)")
	cmd.Flags().IntSliceVar(&f.remind, "remind", nil, "Reminder offsets in minutes before the due date")
	cmd.Flags().StringSliceVar(&f.attach, "attach", nil, "Files to attach")
}

// apply copies every flag the user set onto in.
func (f *taskFlags) apply(cmd *cobra.Command, svc *app.Service, in *board.TaskInput) error {
	changed := cmd.Flags().Changed
	if changed("desc") {
		in.Description = f.desc
	}
	if changed("date") {
		in.Date = f.date
	}
	if changed("category") {
		in.CategoryID = ""
		if f.category != "" {
			c, ok := svc.ResolveCategory(f.category)
			if !ok {
				return fmt.Errorf("unknown category %q", f.category)
			}
			in.CategoryID = c.ID
		}
	}
	if changed("priority") {
		in.Priority = model.Priority(strings.ToLower(f.priority))
	}
	if changed("status") {
		in.Status = model.Status(strings.ToLower(f.status))
	}
	if changed("assign") {
		in.Assignees = nil
		for _, ref := range f.assign {
			c, ok := svc.ResolveContact(ref)
			if !ok {
				return fmt.Errorf("unknown contact %q", ref)
			}
			in.Assignees = append(in.Assignees, c.ID)
		}
	}
	if changed("depends") {
		in.Dependencies = nil
		for _, ref := range f.depends {
			t, err := lookupTask(svc, ref, false)
			if err != nil {
				return err
			}
			in.Dependencies = append(in.Dependencies, t.ID)
		}
	}
	if changed("recurrence") {
		in.Recurrence = model.Recurrence(strings.ToLower(f.recurrence))
	}
	if changed("remind") {
		in.Reminders = f.remind
	}
	if changed("attach") && len(f.attach) > 0 {
		atts, err := svc.IngestAttachments(cmd.Context(), f.attach)
		if err != nil {
			return err
		}
		in.Attachments = append(in.Attachments, atts...)
	}
	return nil
}

var (
	addFlags  taskFlags
	editFlags taskFlags
	editName  string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new task",
	Long: `Add a new task to the board.

Examples:
  taskboard add "Buy groceries"
  taskboard add "Quarterly review" -d 2025-04-01 -p high -c Travail
  taskboard add "Standup" -r daily --remind 15 --remind 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		in := board.TaskInput{
			Name: strings.Join(args, " "),
			Date: env.svc.Now().Format(model.DateLayout),
		}
		if err := addFlags.apply(cmd, env.svc, &in); err != nil {
			return err
		}
		if in.CategoryID == "" {
			if cats := env.svc.Categories(); len(cats) > 0 {
				in.CategoryID = cats[0].ID
			}
		}
		t, err := env.svc.CreateTask(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added %q (%s) for %s\n", t.Name, shortID(t.ID), t.Date)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Change the fields of a task. Only the flags given are modified.

Examples:
  taskboard edit abc123 --name "New name"
  taskboard edit abc123 -p urgent --remind 30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], false)
		if err != nil {
			return err
		}
		in := app.InputFrom(t)
		if cmd.Flags().Changed("name") {
			in.Name = editName
		}
		if err := editFlags.apply(cmd, env.svc, &in); err != nil {
			return err
		}
		updated, _, err := env.svc.UpdateTask(cmd.Context(), t.ID, in)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Updated %q\n", updated.Name)
		return nil
	},
}

var (
	listSearch   string
	listCategory string
	listStatus   string
	listPriority string
	listDate     string
	listAssignee string
	listSort     string
	listArchived bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List the active tasks, filtered and sorted.

Examples:
  taskboard list
  taskboard list --status inprogress --sort priority
  taskboard list --search rapport --category Travail
  taskboard list --archived`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if listArchived {
			tasks := env.svc.ArchivedTasks()
			if len(tasks) == 0 {
				fmt.Println("The archive is empty.")
				return nil
			}
			for _, t := range tasks {
				printTask(os.Stdout, env.svc, t)
			}
			return nil
		}

		key, err := query.ParseSortKey(listSort)
		if err != nil {
			return err
		}
		f, err := listFilter(env.svc)
		if err != nil {
			return err
		}
		tasks := env.svc.Tasks(f, key)
		if len(tasks) == 0 {
			fmt.Println("No tasks found. Add one with: taskboard add \"Your task\"")
			return nil
		}
		for _, t := range tasks {
			printTask(os.Stdout, env.svc, t)
		}
		return nil
	},
}

// listFilter builds the filter from the list flags, resolving names.
func listFilter(svc *app.Service) (query.Filter, error) {
	f := query.Filter{
		Search:   listSearch,
		Status:   model.Status(strings.ToLower(listStatus)),
		Priority: model.Priority(strings.ToLower(listPriority)),
		Date:     listDate,
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("unknown status %q", listStatus)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return f, fmt.Errorf("unknown priority %q", listPriority)
	}
	if listCategory != "" {
		c, ok := svc.ResolveCategory(listCategory)
		if !ok {
			return f, fmt.Errorf("unknown category %q", listCategory)
		}
		f.CategoryID = c.ID
	}
	if listAssignee != "" {
		c, ok := svc.ResolveContact(listAssignee)
		if !ok {
			return f, fmt.Errorf("unknown contact %q", listAssignee)
		}
		f.Assignee = c.ID
	}
	return f, nil
}

var showArchived bool

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show every field of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], showArchived)
		if err != nil {
			return err
		}
		printTaskDetail(os.Stdout, env.svc, t)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Mark a task as completed. A task whose dependencies are still open
cannot be completed.

Examples:
  taskboard done abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCompleted(cmd, args[0], true)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo [task-id]",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCompleted(cmd, args[0], false)
	},
}

func runSetCompleted(cmd *cobra.Command, ref string, completed bool) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	t, err := lookupTask(env.svc, ref, false)
	if err != nil {
		return err
	}
	if _, _, err := env.svc.SetCompleted(cmd.Context(), t.ID, completed); err != nil {
		if errors.Is(err, app.ErrBlocked) {
			return blockedError(env.svc, t)
		}
		return err
	}
	if completed {
		fmt.Printf("✓ Completed: %q\n", t.Name)
	} else {
		fmt.Printf("○ Reopened: %q\n", t.Name)
	}
	return nil
}

// blockedError names the open dependencies of t.
func blockedError(svc *app.Service, t model.Task) error {
	var names []string
	for _, b := range svc.Blocking(t.ID) {
		names = append(names, b.Name)
	}
	return fmt.Errorf("%q is blocked by: %s", t.Name, strings.Join(names, ", "))
}

var statusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Move a task to another kanban column",
	Long: `Move a task to todo, inprogress, review or done.

Examples:
  taskboard status abc123 inprogress`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.Status(strings.ToLower(args[1]))
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", args[1])
		}
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], false)
		if err != nil {
			return err
		}
		if _, _, err := env.svc.ChangeStatus(cmd.Context(), t.ID, status); err != nil {
			if errors.Is(err, app.ErrBlocked) {
				return blockedError(env.svc, t)
			}
			return err
		}
		fmt.Printf("→ %q is now %s\n", t.Name, status.Label())
		return nil
	},
}

var (
	deleteYes      bool
	deleteArchived bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID.

Examples:
  taskboard delete abc123
  taskboard rm abc123 --yes
  taskboard delete abc123 --archived`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], deleteArchived)
		if err != nil {
			return err
		}
		ok, err := confirm("Delete task?", fmt.Sprintf("%q (%s)", t.Name, shortID(t.ID)), deleteYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
		if _, err := env.svc.DeleteTask(cmd.Context(), t.ID, deleteArchived); err != nil {
			return err
		}
		fmt.Printf("✗ Deleted: %q\n", t.Name)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Move a task to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], false)
		if err != nil {
			return err
		}
		if _, err := env.svc.ArchiveTask(cmd.Context(), t.ID); err != nil {
			return err
		}
		fmt.Printf("▣ Archived: %q\n", t.Name)
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment [task-id] [text]",
	Short: "Comment on a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		t, err := lookupTask(env.svc, args[0], false)
		if err != nil {
			return err
		}
		c, _, err := env.svc.AddComment(cmd.Context(), t.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s commented on %q\n", c.Author, t.Name)
		return nil
	},
}

func init() {
	addFlags.register(addCmd)
	editFlags.register(editCmd)
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "New name")

	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Search in name and description")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category id or name")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority")
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "Filter by due date (YYYY-MM-DD)")
	listCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Filter by assignee id or name")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort key (name, date-asc, date-desc, priority, status, category)")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "List the archive instead")

	showCmd.Flags().BoolVar(&showArchived, "archived", false, "Look the task up in the archive")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
	deleteCmd.Flags().BoolVar(&deleteArchived, "archived", false, "Delete from the archive")
}
