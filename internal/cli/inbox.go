package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/inbox"
	"github.com/nhle/taskboard/internal/logger"
)

var (
	inboxLimit      int
	inboxCategory   string
	inboxDryRun     bool
	inboxKeepUnread bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Turn unread mail into tasks",
	Long: `Read the unread messages of the configured IMAP mailbox and create one
task per message. The subject becomes the name, the body the description,
and attached files become task attachments. A sender matching a contact's
email is assigned. Captured messages are marked as read.

Configure the server in the inbox section of the config file and store the
password with 'taskboard config set-imap-password' or TASKBOARD_IMAP_PASSWORD.

Examples:
  taskboard inbox
  taskboard inbox --dry-run
  taskboard inbox --limit 5 --category Travail`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Inbox.Host == "" || cfg.Inbox.Username == "" {
			return errors.New("inbox.host and inbox.username must be set in the config file")
		}
		password, err := imapPassword()
		if err != nil {
			return err
		}

		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		categoryID := ""
		name := inboxCategory
		if name == "" {
			name = cfg.Inbox.Category
		}
		if name != "" {
			c, ok := env.svc.ResolveCategory(name)
			if !ok {
				return fmt.Errorf("unknown category %q", name)
			}
			categoryID = c.ID
		}

		limit := inboxLimit
		if limit <= 0 {
			limit = cfg.Inbox.Limit
		}
		client := inbox.New(inbox.Config{
			Host:     cfg.Inbox.Host,
			Port:     cfg.Inbox.Port,
			Username: cfg.Inbox.Username,
			Password: password,
			TLS:      cfg.Inbox.TLS,
			Mailbox:  cfg.Inbox.Mailbox,
		})
		msgs, err := client.FetchUnseen(cmd.Context(), limit)
		if err != nil {
			logger.Error("Fetching mail failed", logger.F("host", cfg.Inbox.Host), logger.Err(err))
			return err
		}
		if len(msgs) == 0 {
			fmt.Println("No unread mail.")
			return nil
		}

		if inboxDryRun {
			for _, m := range msgs {
				fmt.Printf("  %-40s from %s, %d file(s)\n", m.Subject, m.FromAddr, len(m.Parts))
			}
			fmt.Printf("%d message(s) would be captured.\n", len(msgs))
			return nil
		}

		captured, captureErr := env.svc.CaptureMail(cmd.Context(), msgs, categoryID)
		uids := make([]uint32, 0, len(captured))
		for _, c := range captured {
			uids = append(uids, c.UID)
			fmt.Printf("✓ %s %s\n", shortID(c.Task.ID), c.Task.Name)
		}
		if !inboxKeepUnread {
			if err := client.MarkSeen(cmd.Context(), uids); err != nil {
				logger.Warn("Marking captured mail read failed", logger.Err(err))
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
		fmt.Printf("%d task(s) created from %d message(s).\n", len(captured), len(msgs))
		return captureErr
	},
}

// imapPassword reads the mailbox password from TASKBOARD_IMAP_PASSWORD or
// the keyring.
func imapPassword() (string, error) {
	if p := os.Getenv("TASKBOARD_IMAP_PASSWORD"); p != "" {
		return p, nil
	}
	creds, err := credential.Open()
	if err != nil {
		return "", err
	}
	p, err := creds.Get(credential.IMAPPasswordKey)
	if errors.Is(err, credential.ErrNotFound) {
		return "", errors.New("no IMAP password stored: run 'taskboard config set-imap-password'")
	}
	return p, err
}

func init() {
	inboxCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 0, "Maximum messages to capture (default inbox.limit)")
	inboxCmd.Flags().StringVarP(&inboxCategory, "category", "c", "", "Category for the new tasks (default inbox.category)")
	inboxCmd.Flags().BoolVar(&inboxDryRun, "dry-run", false, "List the messages without creating tasks")
	inboxCmd.Flags().BoolVar(&inboxKeepUnread, "keep-unread", false, "Leave captured messages unread")
}
