package storage

import (
	"context"
	"fmt"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"github.com/transaction-importer/internal/config"
)

// NewFileStore builds the store selected by cfg.Backend. The returned close
// function releases backend clients and is never nil.
func NewFileStore(ctx context.Context, logger *slog.Logger, cfg *config.StorageConfig) (FileStore, func() error, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		store, err := NewLocalStore(logger, cfg.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using local file store", "dir", cfg.LocalDir)
		return store, func() error { return nil }, nil

	case config.StorageBackendGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create storage client: %w", err)
		}
		logger.Info("Using GCS file store", "bucket", cfg.GCSBucket)
		return NewGCSStore(logger, client, cfg.GCSBucket), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
