// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the transaction importer.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/platform/persistence"
)

// ImportRequestRepository implements the importrequest.Repository interface for PostgreSQL
type ImportRequestRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewImportRequestRepository creates a new PostgreSQL import request repository
func NewImportRequestRepository(logger *slog.Logger, db *persistence.PostgresDB) importrequest.Repository {
	return &ImportRequestRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx, so request creation can share a
// transaction with its outbox message.
func (r *ImportRequestRepository) WithTx(tx pgx.Tx) importrequest.Repository {
	return &ImportRequestRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new import request
func (r *ImportRequestRepository) Create(ctx context.Context, req *importrequest.ImportRequest) error {
	query := `
		INSERT INTO import_requests (id, status, file_ref, original_filename, error_detail, imported_rows, rejected_rows, requested_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		req.ID,
		req.Status,
		req.FileRef,
		req.OriginalFilename,
		req.ErrorDetail,
		req.ImportedRows,
		req.RejectedRows,
		req.RequestedBy,
		req.CreatedAt,
		req.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create import request", "import_request_id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to create import request: %w", err)
	}

	return nil
}

// GetByID retrieves an import request by its ID.
// Returns ErrImportRequestNotFound if it does not exist.
func (r *ImportRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error) {
	query := `
		SELECT id, status, file_ref, original_filename, error_detail, imported_rows, rejected_rows, requested_by, created_at, completed_at
		FROM import_requests
		WHERE id = $1
	`

	var req importrequest.ImportRequest
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Status,
		&req.FileRef,
		&req.OriginalFilename,
		&req.ErrorDetail,
		&req.ImportedRows,
		&req.RejectedRows,
		&req.RequestedBy,
		&req.CreatedAt,
		&req.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, importrequest.ErrImportRequestNotFound{ID: id}
		}
		r.logger.Error("Failed to get import request", "import_request_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get import request: %w", err)
	}

	return &req, nil
}

// Update persists the processing outcome of an import request
func (r *ImportRequestRepository) Update(ctx context.Context, req *importrequest.ImportRequest) error {
	query := `
		UPDATE import_requests
		SET status = $1, error_detail = $2, imported_rows = $3, rejected_rows = $4, completed_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		req.Status,
		req.ErrorDetail,
		req.ImportedRows,
		req.RejectedRows,
		req.CompletedAt,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update import request",
			"import_request_id", req.ID.String(),
			"status", string(req.Status),
			"error", err,
		)
		return fmt.Errorf("failed to update import request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return importrequest.ErrImportRequestNotFound{ID: req.ID}
	}

	return nil
}
