package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/outbox"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/shared"
	"github.com/transaction-importer/internal/platform/persistence"
	"github.com/transaction-importer/internal/platform/storage"
)

// ImportServiceImpl implements the ImportService interface
type ImportServiceImpl struct {
	db            persistence.TxStarter
	requestRepo   importrequest.Repository
	outboxRepo    outbox.Repository
	rejectionRepo rejection.Repository
	files         storage.FileStore
	maxUploadSize int64
	logger        *slog.Logger
	now           func() time.Time
}

// NewImportService creates a new import service
func NewImportService(
	logger *slog.Logger,
	db persistence.TxStarter,
	requestRepo importrequest.Repository,
	outboxRepo outbox.Repository,
	rejectionRepo rejection.Repository,
	files storage.FileStore,
	maxUploadSize int64,
) ImportService {
	return &ImportServiceImpl{
		db:            db,
		requestRepo:   requestRepo,
		outboxRepo:    outboxRepo,
		rejectionRepo: rejectionRepo,
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        logger,
		now:           time.Now,
	}
}

// AcceptUpload stores the file, then creates the request and its outbox message in one transaction
func (s *ImportServiceImpl) AcceptUpload(ctx context.Context, upload Upload) (*importrequest.ImportRequest, error) {
	logger := s.logger
	if upload.CorrelationID != "" {
		logger = s.logger.With("correlation_id", upload.CorrelationID)
	}

	if !strings.EqualFold(filepath.Ext(upload.Filename), ".csv") {
		return nil, ErrNotCSV
	}
	if s.maxUploadSize > 0 && upload.Size > s.maxUploadSize {
		return nil, ErrFileTooLarge{Size: upload.Size, Limit: s.maxUploadSize}
	}

	key := storage.ObjectKey(s.now(), uuid.New(), upload.Filename)
	if err := s.files.Save(ctx, key, upload.Content); err != nil {
		logger.Error("Failed to store uploaded file", "file_ref", key, "error", err)
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	request, err := importrequest.NewImportRequest(key, upload.Filename, upload.RequestedBy)
	if err != nil {
		s.discardUpload(ctx, logger, key)
		return nil, err
	}

	message, err := outbox.NewMessage(&shared.ImportJobMessage{
		ImportRequestID: request.ID,
		CorrelationID:   upload.CorrelationID,
		RequestedAt:     request.CreatedAt,
	})
	if err != nil {
		s.discardUpload(ctx, logger, key)
		return nil, fmt.Errorf("failed to build import job message: %w", err)
	}

	err = persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.requestRepo.WithTx(tx).Create(ctx, request); err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		logger.Error("Failed to create import request",
			"file_ref", key,
			"requested_by", upload.RequestedBy,
			"error", err,
		)
		s.discardUpload(ctx, logger, key)
		return nil, err
	}

	logger.Info("Import request accepted",
		"import_request_id", request.ID.String(),
		"file_ref", key,
		"original_filename", upload.Filename,
		"size", upload.Size,
		"requested_by", upload.RequestedBy,
	)
	return request, nil
}

// discardUpload removes a stored file no request points to. A failure only leaves an orphaned object behind.
func (s *ImportServiceImpl) discardUpload(ctx context.Context, logger *slog.Logger, key string) {
	if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn("Failed to delete orphaned upload", "file_ref", key, "error", err)
	}
}

// GetImport retrieves an import request by its ID, returns ErrImportRequestNotFound if not found
func (s *ImportServiceImpl) GetImport(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// ListRejections returns the rejected rows of an existing import request ordered by line
func (s *ImportServiceImpl) ListRejections(ctx context.Context, importRequestID uuid.UUID, page, perPage int) ([]*rejection.RejectedRow, int64, error) {
	if _, err := s.requestRepo.GetByID(ctx, importRequestID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := s.rejectionRepo.ListByImportRequestID(ctx, importRequestID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.rejectionRepo.CountByImportRequestID(ctx, importRequestID)
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
