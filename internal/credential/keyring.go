package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "taskboard"

// SlackWebhookKey names the Slack incoming-webhook URL in the keyring.
const SlackWebhookKey = "slack-webhook-url"

// IMAPPasswordKey names the password of the captured mailbox.
const IMAPPasswordKey = "imap-password"

// ErrNotFound is returned when the keyring holds no value for a key.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes secrets in a keyring.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a Store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewStore(ring), nil
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskboard/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
