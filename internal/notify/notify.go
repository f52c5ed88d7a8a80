// Package notify delivers reminder notifications. Each Notifier degrades
// silently when its channel is not configured.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/nhle/taskboard/internal/model"
)

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Title heads every reminder.
const Title = "Task reminder"

// Console prints reminders to a writer, typically stdout.
type Console struct {
	W io.Writer
}

// Notify writes one line per reminder.
func (c Console) Notify(_ context.Context, n model.Notification) error {
	if c.W == nil {
		return nil
	}
	_, err := fmt.Fprintf(c.W, "🔔 %s: %s\n", Title, n.Message)
	return err
}

// Recorder persists notifications so they can be listed later.
type Recorder interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// Log records every reminder in the notification log.
type Log struct {
	Store Recorder
}

// Notify stores n.
func (l Log) Notify(ctx context.Context, n model.Notification) error {
	if l.Store == nil {
		return nil
	}
	if err := l.Store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("recording notification for task %s: %w", n.TaskID, err)
	}
	return nil
}

// Slack posts reminders to a Slack incoming webhook.
type Slack struct {
	WebhookURL string
	Channel    string
	Client     *http.Client
}

// Notify posts n to the webhook. An empty webhook URL disables delivery.
func (s Slack) Notify(ctx context.Context, n model.Notification) error {
	if s.WebhookURL == "" {
		return nil
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	msg := &slack.WebhookMessage{
		Channel: s.Channel,
		Text:    fmt.Sprintf(":bell: *%s*: %s", Title, n.Message),
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("posting reminder for task %s to slack: %w", n.TaskID, err)
	}
	return nil
}

// Multi fans a notification out to every notifier. All of them are tried
// even when one fails.
type Multi []Notifier

// Notify delivers n to each notifier and joins their errors.
func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
