package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	gcs "cloud.google.com/go/storage"
)

const gcsUploadTimeout = 2 * time.Minute

// GCSStore keeps files as objects in a Google Cloud Storage bucket.
// It relies on Application Default Credentials.
type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
	logger *slog.Logger
}

// NewGCSStore wraps an existing client. The caller owns the client.
func NewGCSStore(logger *slog.Logger, client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: logger,
	}
}

// Save uploads r as the object key
func (s *GCSStore) Save(ctx context.Context, key string, r io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, gcsUploadTimeout)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload of %s: %w", URI(s.name, key), err)
	}

	s.logger.Debug("Stored import file", "key", key, "backend", "gcs", "bucket", s.name)
	return nil
}

// Open returns a reader for the object key
func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	rc, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, URI(s.name, key))
		}
		return nil, fmt.Errorf("open GCS object reader %s: %w", URI(s.name, key), err)
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, URI(s.name, key))
		}
		return fmt.Errorf("delete GCS object %s: %w", URI(s.name, key), err)
	}

	s.logger.Debug("Deleted import file", "key", key, "backend", "gcs", "bucket", s.name)
	return nil
}

// URI formats a gs:// URI for logging
func URI(bucket, key string) string {
	return "gs://" + bucket + "/" + key
}
