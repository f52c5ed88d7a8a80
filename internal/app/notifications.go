package app

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// Notifications lists the reminder log, newest first.
func (s *Service) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	ns, err := s.store.GetNotifications(ctx, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return ns, nil
}

// MarkNotificationRead flags a logged reminder as seen.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.store.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}
