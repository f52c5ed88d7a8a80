package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/notify"
	"github.com/nhle/taskboard/internal/rules"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/sweep"
)

// env bundles what a command needs: the open store and the service over it.
type env struct {
	store *store.SQLiteStore
	svc   *app.Service
}

// openEnv opens the configured database and loads the board.
func openEnv(ctx context.Context) (*env, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	path := cfg.Storage.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Error("Failed to open database", logger.F("path", path), logger.Err(err))
		return nil, fmt.Errorf("opening database: %w", err)
	}

	svc, err := app.New(ctx, st, app.Options{
		Author:        cfg.Display.Author,
		RetentionDays: cfg.Archive.RetentionDays,
		Tolerance:     cfg.Reminders.ToleranceMinutes,
		Notifier:      buildNotifier(st),
		Logger:        logger.Global(),
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &env{store: st, svc: svc}, nil
}

// Close releases the database.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		logger.Warn("Failed to close database", logger.Err(err))
	}
}

func (e *env) scheduler() *sweep.Scheduler {
	return sweep.New(e.svc, cfg.Schedule, logger.Global())
}

// buildNotifier assembles the reminder channels enabled in the config. The
// notification log is always written.
func buildNotifier(st *store.SQLiteStore) rules.Notifier {
	channels := notify.Multi{notify.Log{Store: st}}
	if cfg.Notify.Console {
		channels = append(channels, notify.Console{W: os.Stderr})
	}
	if cfg.Notify.SlackEnabled {
		if url := slackWebhook(); url != "" {
			channels = append(channels, notify.Slack{WebhookURL: url, Channel: cfg.Notify.SlackChannel})
		}
	}
	return channels
}

// slackWebhook reads the webhook from TASKBOARD_SLACK_WEBHOOK or the
// keyring. A missing secret disables Slack delivery.
func slackWebhook() string {
	if url := os.Getenv("TASKBOARD_SLACK_WEBHOOK"); url != "" {
		return url
	}
	creds, err := credential.Open()
	if err != nil {
		logger.Warn("Keyring unavailable, Slack reminders disabled", logger.Err(err))
		return ""
	}
	url, err := creds.Get(credential.SlackWebhookKey)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			logger.Warn("Reading Slack webhook failed", logger.Err(err))
		}
		return ""
	}
	return url
}
