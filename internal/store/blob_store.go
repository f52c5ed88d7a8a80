package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// refPrefix marks content addresses produced by PutBlob.
const refPrefix = "sha256:"

// BlobRef returns the content address of data.
func BlobRef(data []byte) string {
	sum := sha256.Sum256(data)
	return refPrefix + hex.EncodeToString(sum[:])
}

// PutBlob stores data under its content address and returns the ref.
// Storing the same bytes twice keeps a single row.
func (s *SQLiteStore) PutBlob(ctx context.Context, data []byte, mediaType string) (string, error) {
	ref := BlobRef(data)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO blobs (ref, media_type, size, data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ref, mediaType, len(data), data, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("storing blob %s: %w", ref, err)
	}
	return ref, nil
}

// GetBlob returns the payload stored under ref.
func (s *SQLiteStore) GetBlob(ctx context.Context, ref string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT data FROM blobs WHERE ref = ?", ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting blob %s: %w", ref, ErrBlobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", ref, err)
	}
	return data, nil
}

// DeleteUnreferencedBlobs removes every blob whose ref is not in keep.
func (s *SQLiteStore) DeleteUnreferencedBlobs(ctx context.Context, keep map[string]bool) (int, error) {
	var refs []string
	if err := s.db.SelectContext(ctx, &refs, "SELECT ref FROM blobs"); err != nil {
		return 0, fmt.Errorf("listing blobs: %w", err)
	}

	removed := 0
	for _, ref := range refs {
		if keep[ref] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE ref = ?", ref); err != nil {
			return removed, fmt.Errorf("deleting blob %s: %w", ref, err)
		}
		removed++
	}
	return removed, nil
}
