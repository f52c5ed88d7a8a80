package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

var (
	entityColor string
	entityEmail string
	entityName  string
	entityYes   bool
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	Long: `Manage the categories tasks are filed under.

Examples:
  taskboard category list
  taskboard category add Courses --color "#f39c12"
  taskboard category edit Courses --name Shopping
  taskboard category delete Shopping`,
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		counts := make(map[string]int)
		for _, c := range env.svc.Dashboard().ByCategory {
			counts[c.ID] = c.Count
		}
		for _, c := range env.svc.Categories() {
			fmt.Printf("%s %s  %-20s %d task(s)\n",
				theme.SwatchStyle(c.Color).Render("●"), shortID(c.ID), c.Name, counts[c.ID])
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.svc.CreateCategory(cmd.Context(), strings.Join(args, " "), entityColor)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added category %q (%s)\n", c.Name, shortID(c.ID))
		return nil
	},
}

var categoryEditCmd = &cobra.Command{
	Use:   "edit [category]",
	Short: "Rename or recolour a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.svc.ResolveCategory(args[0])
		if !ok {
			return fmt.Errorf("category not found: %s", args[0])
		}
		if cmd.Flags().Changed("name") {
			c.Name = entityName
		}
		if cmd.Flags().Changed("color") {
			c.Color = entityColor
		}
		if _, err := env.svc.UpdateCategory(cmd.Context(), c.ID, c.Name, c.Color); err != nil {
			return err
		}
		fmt.Printf("✓ Updated category %q\n", c.Name)
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:     "delete [category]",
	Aliases: []string{"rm"},
	Short:   "Delete a category",
	Long:    `Delete a category. Its tasks are kept and become uncategorized.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.svc.ResolveCategory(args[0])
		if !ok {
			return fmt.Errorf("category not found: %s", args[0])
		}
		ok, err = confirm("Delete category?", c.Name, entityYes)
		if err != nil || !ok {
			return err
		}
		if _, err := env.svc.DeleteCategory(cmd.Context(), c.ID); err != nil {
			return err
		}
		fmt.Printf("✗ Deleted category %q\n", c.Name)
		return nil
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage contacts tasks can be assigned to",
	Long: `Manage contacts.

Examples:
  taskboard contact add "Alice Martin" --email alice@example.com
  taskboard contact list
  taskboard contact delete Alice`,
}

var contactListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		contacts := env.svc.Contacts()
		if len(contacts) == 0 {
			fmt.Println("No contacts yet.")
			return nil
		}
		for _, c := range contacts {
			fmt.Printf("%s %s  %-20s %s\n",
				theme.SwatchStyle(c.Color).Render("●"), shortID(c.ID), c.Name, c.Email)
		}
		return nil
	},
}

var contactAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a contact",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.svc.CreateContact(cmd.Context(), strings.Join(args, " "), entityEmail, entityColor)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added contact %q (%s)\n", c.Name, shortID(c.ID))
		return nil
	},
}

var contactEditCmd = &cobra.Command{
	Use:   "edit [contact]",
	Short: "Edit a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.svc.ResolveContact(args[0])
		if !ok {
			return fmt.Errorf("contact not found: %s", args[0])
		}
		if cmd.Flags().Changed("name") {
			c.Name = entityName
		}
		if cmd.Flags().Changed("email") {
			c.Email = entityEmail
		}
		if cmd.Flags().Changed("color") {
			c.Color = entityColor
		}
		if _, err := env.svc.UpdateContact(cmd.Context(), c.ID, c.Name, c.Email, c.Color); err != nil {
			return err
		}
		fmt.Printf("✓ Updated contact %q\n", c.Name)
		return nil
	},
}

var contactDeleteCmd = &cobra.Command{
	Use:     "delete [contact]",
	Aliases: []string{"rm"},
	Short:   "Delete a contact",
	Long:    `Delete a contact and remove it from every task it was assigned to.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.svc.ResolveContact(args[0])
		if !ok {
			return fmt.Errorf("contact not found: %s", args[0])
		}
		ok, err = confirm("Delete contact?", c.Name, entityYes)
		if err != nil || !ok {
			return err
		}
		if _, err := env.svc.DeleteContact(cmd.Context(), c.ID); err != nil {
			return err
		}
		fmt.Printf("✗ Deleted contact %q\n", c.Name)
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Read and write daily notes",
	Long: `Daily notes hold free text for one calendar day. Setting an empty text
removes the note.

Examples:
  taskboard note set "Call the bank" --date 2025-03-10
  taskboard note get
  taskboard note list`,
}

var noteDate string

var noteSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Write the note of a day",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		date := noteDay(env.svc.Now().Format(model.DateLayout))
		text := strings.Join(args, " ")
		if err := env.svc.SetNote(cmd.Context(), date, text); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			fmt.Printf("✗ Cleared note for %s\n", date)
		} else {
			fmt.Printf("✓ Saved note for %s\n", date)
		}
		return nil
	},
}

var noteGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the note of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		date := noteDay(env.svc.Now().Format(model.DateLayout))
		if text := env.svc.Note(date); text != "" {
			fmt.Println(text)
		}
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every day with a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		for _, n := range env.svc.Notes() {
			first, _, _ := strings.Cut(n.Text, "\n")
			fmt.Printf("%s  %s\n", n.Date, first)
		}
		return nil
	},
}

func noteDay(today string) string {
	if noteDate != "" {
		return noteDate
	}
	return today
}

func init() {
	for _, c := range []*cobra.Command{categoryAddCmd, categoryEditCmd, contactAddCmd, contactEditCmd} {
		c.Flags().StringVar(&entityColor, "color", "", "Colour as #rrggbb")
	}
	for _, c := range []*cobra.Command{categoryEditCmd, contactEditCmd} {
		c.Flags().StringVarP(&entityName, "name", "n", "", "New name")
	}
	for _, c := range []*cobra.Command{contactAddCmd, contactEditCmd} {
		c.Flags().StringVar(&entityEmail, "email", "", "Email address")
	}
	for _, c := range []*cobra.Command{categoryDeleteCmd, contactDeleteCmd} {
		c.Flags().BoolVarP(&entityYes, "yes", "y", false, "Skip the confirmation prompt")
	}
	for _, c := range []*cobra.Command{noteSetCmd, noteGetCmd} {
		c.Flags().StringVarP(&noteDate, "date", "d", "", "Day (YYYY-MM-DD, defaults to today)")
	}

	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryEditCmd, categoryDeleteCmd)
	contactCmd.AddCommand(contactListCmd, contactAddCmd, contactEditCmd, contactDeleteCmd)
	noteCmd.AddCommand(noteSetCmd, noteGetCmd, noteListCmd)
}
