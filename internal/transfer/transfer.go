// Package transfer imports and exports the board: the versioned JSON backup,
// legacy JSON merges, CSV and XLSX.
package transfer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed wraps every parse failure. An import that returns it has not
// touched the state.
var ErrMalformed = errors.New("malformed import payload")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Blobs stores attachment payloads by content address.
type Blobs interface {
	PutBlob(ctx context.Context, data []byte, mediaType string) (string, error)
	GetBlob(ctx context.Context, ref string) ([]byte, error)
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a base64 data URL, returning its media type and bytes.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mediaType, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URL: %w", err)
	}
	return mediaType, data, nil
}
