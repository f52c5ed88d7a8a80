package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/model"
)

// ErrBlobNotFound is returned when no blob has the requested ref.
var ErrBlobNotFound = errors.New("blob not found")

// KV persists the board aggregate as independently keyed JSON blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutAll(ctx context.Context, entries map[string][]byte) error
	Keys(ctx context.Context) ([]string, error)
}

// Blobs stores attachment payloads by content address.
type Blobs interface {
	PutBlob(ctx context.Context, data []byte, mediaType string) (string, error)
	GetBlob(ctx context.Context, ref string) ([]byte, error)
	DeleteUnreferencedBlobs(ctx context.Context, keep map[string]bool) (int, error)
}

// Notifications keeps the log of delivered reminders.
type Notifications interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Store defines the persistence interface for the board, attachment blobs,
// and notifications.
type Store interface {
	KV
	Blobs
	Notifications
	Close() error
}
