// Package asset stores and removes the image files attached to vacations.
// The service layer depends on the Store interface; Local keeps files in a
// directory that the HTTP server also exposes under /uploads/.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// MaxImageBytes is the size ceiling for a single vacation image (5 MiB).
const MaxImageBytes = 5 << 20

// acceptedTypes maps each accepted media type to the extension used for stored files.
var acceptedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Accepted reports whether mediaType is one of the accepted image types.
func Accepted(mediaType string) bool {
	_, ok := acceptedTypes[strings.ToLower(mediaType)]
	return ok
}

// Store persists image bytes and deletes them by handle.
type Store interface {
	// Store saves data and returns the handle to reference it by.
	// Returns domain.ErrAssetRejected for unaccepted media types or oversized data.
	Store(ctx context.Context, data []byte, mediaType string) (string, error)

	// Delete removes the asset. Deleting a handle that does not exist is not an error.
	Delete(ctx context.Context, handle string) error
}

// Local is a Store backed by a directory on the local filesystem.
type Local struct {
	dir string
	now func() time.Time
}

// NewLocal returns a Local store rooted at dir, creating the directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset.NewLocal: %w", err)
	}
	return &Local{dir: dir, now: time.Now}, nil
}

// Dir returns the root directory, for serving files statically.
func (l *Local) Dir() string {
	return l.dir
}

// Store writes data under a generated name. The client's original file name
// is never used, so it cannot influence the path.
func (l *Local) Store(_ context.Context, data []byte, mediaType string) (string, error) {
	ext, ok := acceptedTypes[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("asset.Local.Store: media type %q: %w", mediaType, domain.ErrAssetRejected)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("asset.Local.Store: %d bytes exceeds %d: %w", len(data), MaxImageBytes, domain.ErrAssetRejected)
	}

	handle := fmt.Sprintf("%d-%s%s", l.now().UnixMilli(), uuid.NewString(), ext)

	// Write to a temp file and rename so a reader never sees a partial image.
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("asset.Local.Store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("asset.Local.Store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("asset.Local.Store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, handle)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("asset.Local.Store: rename: %w", err)
	}
	return handle, nil
}

// Delete removes the file for handle. Missing files are ignored so that two
// racing cleanups of the same stale image both succeed.
func (l *Local) Delete(_ context.Context, handle string) error {
	if handle == "" || handle != filepath.Base(handle) || strings.HasPrefix(handle, ".") {
		return fmt.Errorf("asset.Local.Delete: invalid handle %q", handle)
	}
	err := os.Remove(filepath.Join(l.dir, handle))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("asset.Local.Delete: %w", err)
	}
	return nil
}
