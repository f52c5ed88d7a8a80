package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration and secrets",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := model.SaveConfig(configPath, model.DefaultAppConfig()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("config file:        %s\n", configPath)
		fmt.Printf("storage.path:       %s\n", cfg.Storage.Path)
		fmt.Printf("archive.retention:  %d days\n", cfg.Archive.RetentionDays)
		fmt.Printf("reminders.window:   ±%d min\n", cfg.Reminders.ToleranceMinutes)
		fmt.Printf("schedule:           reminders=%q recurrence=%q archive=%q\n",
			cfg.Schedule.Reminders, cfg.Schedule.Recurrence, cfg.Schedule.Archive)
		fmt.Printf("display.author:     %s\n", cfg.Display.Author)
		fmt.Printf("notify:             console=%t slack=%t\n", cfg.Notify.Console, cfg.Notify.SlackEnabled)
		fmt.Printf("server.addr:        %s\n", cfg.Server.Addr)
		fmt.Printf("inbox:              %s@%s:%s/%s\n", cfg.Inbox.Username, cfg.Inbox.Host, cfg.Inbox.Port, cfg.Inbox.Mailbox)
		fmt.Printf("log:                level=%s file=%s\n", cfg.Log.Level, cfg.Log.File)
		return nil
	},
}

var configSlackCmd = &cobra.Command{
	Use:   "set-slack-webhook [url]",
	Short: "Store the Slack webhook used for reminders in the keyring",
	Long: `Store the Slack incoming-webhook URL in the system keyring. Without an
argument the URL is prompted for. Enable delivery with notify.slack_enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var url string
		if len(args) == 1 {
			url = args[0]
		} else {
			if !interactive() {
				return errors.New("webhook URL required")
			}
			err := huh.NewInput().
				Title("Slack webhook URL").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "https://") {
						return errors.New("must be an https URL")
					}
					return nil
				}).
				Value(&url).
				Run()
			if err != nil {
				return err
			}
		}

		creds, err := credential.Open()
		if err != nil {
			return err
		}
		if err := creds.Set(credential.SlackWebhookKey, strings.TrimSpace(url)); err != nil {
			return err
		}
		fmt.Println("✓ Slack webhook stored")
		return nil
	},
}

var configClearSlackCmd = &cobra.Command{
	Use:   "clear-slack-webhook",
	Short: "Remove the Slack webhook from the keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credential.Open()
		if err != nil {
			return err
		}
		if err := creds.Delete(credential.SlackWebhookKey); err != nil && !errors.Is(err, credential.ErrNotFound) {
			return err
		}
		fmt.Println("✓ Slack webhook removed")
		return nil
	},
}

var configIMAPCmd = &cobra.Command{
	Use:   "set-imap-password",
	Short: "Store the password of the captured mailbox in the keyring",
	Long: `Prompt for the IMAP password used by 'taskboard inbox' and store it in
the system keyring. The server and user come from the inbox section of the
config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !interactive() {
			return errors.New("a terminal is required to enter the password")
		}
		var password string
		err := huh.NewInput().
			Title(fmt.Sprintf("Password for %s", cfg.Inbox.Username)).
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password is required")
				}
				return nil
			}).
			Value(&password).
			Run()
		if err != nil {
			return err
		}

		creds, err := credential.Open()
		if err != nil {
			return err
		}
		if err := creds.Set(credential.IMAPPasswordKey, password); err != nil {
			return err
		}
		fmt.Println("✓ IMAP password stored")
		return nil
	},
}

var configThemeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the saved theme preference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 0 {
			fmt.Println(env.svc.Theme())
			return nil
		}
		if err := env.svc.SetTheme(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Theme set to %s\n", env.svc.Theme())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configSlackCmd, configClearSlackCmd, configIMAPCmd, configThemeCmd)
}
