package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, task_id, task_name, minutes_before, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.TaskName, n.MinutesBefore, n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetNotifications lists notifications newest first, optionally only the
// unread ones.
func (s *SQLiteStore) GetNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	query := "SELECT * FROM notifications"
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY created_at DESC"

	var notifications []model.Notification
	if err := s.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return notifications, nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	return s.GetNotifications(ctx, true)
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}
