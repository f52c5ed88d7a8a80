// Package cli implements the taskboard command line.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
)

var (
	configPath string
	logLevel   string
	logFile    string
	logConsole bool

	// cfg is loaded once per invocation by the root PersistentPreRunE.
	cfg *model.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Taskboard - tasks, kanban and reminders from the terminal",
	Long: `Taskboard keeps tasks, categories, contacts and daily notes in a local
SQLite database. Background sweeps fire reminders, generate recurring tasks
and archive finished work.

Run 'taskboard' without arguments to open the interactive board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.Log.Console = logConsole
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.Log.Level)
		logConfig.FilePath = cfg.Log.File
		logConfig.Console = cfg.Log.Console
		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		logger.Debug("Taskboard started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		sched := env.scheduler()
		if err := sched.Start(cmd.Context()); err != nil {
			return err
		}
		defer sched.Stop()

		logger.Info("Launching board UI")
		p := tea.NewProgram(ui.New(env.svc, sched), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.Err(err))
			return fmt.Errorf("running board UI: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Debug("Taskboard exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command. Cancelling ctx stops background sweeps and
// the HTTP server.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Also log to stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(configCmd)
}
