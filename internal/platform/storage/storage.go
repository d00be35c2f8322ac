// Package storage keeps uploaded import files until a worker reads them back.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Open and Delete when nothing is stored under the key
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for empty keys and keys escaping the store root
var ErrInvalidKey = errors.New("invalid object key")

// FileStore stores and retrieves import file bytes by key
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the key an upload is stored under:
// import_requests/YYYY/MM/<id>_<base name>
func ObjectKey(now time.Time, id uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "_" {
		name = "upload.csv"
	}

	now = now.UTC()
	return fmt.Sprintf("import_requests/%04d/%02d/%s_%s", now.Year(), int(now.Month()), id.String(), name)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
