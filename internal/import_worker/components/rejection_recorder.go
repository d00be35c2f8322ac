package components

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/import_worker/service"
)

type RejectionRecorderImpl struct {
	repo   rejection.Repository
	logger *slog.Logger
}

func NewRejectionRecorder(repo rejection.Repository, logger *slog.Logger) service.RejectionRecorder {
	return &RejectionRecorderImpl{
		repo:   repo,
		logger: logger,
	}
}

// Record stores rejected rows for later inspection. Failures are logged and never reach the import.
func (r *RejectionRecorderImpl) Record(ctx context.Context, importRequestID uuid.UUID, rows []*rejection.RejectedRow) {
	if len(rows) == 0 {
		return
	}
	logger := r.logger.With("import_request_id", importRequestID.String())

	if err := r.repo.CreateMany(ctx, rows); err != nil {
		logger.Error("Failed to store rejected rows", "count", len(rows), "error", err)
		return
	}
	logger.Info("Stored rejected rows", "count", len(rows))
}
