package components

import (
	"log/slog"

	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/import_worker/service"
	"github.com/transaction-importer/internal/platform/persistence"
	"github.com/transaction-importer/internal/platform/storage"
)

// ImportDependencies groups the stores the import pipeline reads from and writes to
type ImportDependencies struct {
	DB             persistence.TxStarter
	ImportRequests importrequest.Repository
	Transactions   transaction.Repository
	Rejections     rejection.Repository
	Files          storage.FileStore
	Normalizer     *currency.Normalizer
}

// CreateImportService creates the import pipeline running on a worker pool.
// It returns the unpooled pipeline when the pool cannot be created.
func CreateImportService(deps ImportDependencies, logger *slog.Logger, cfg *config.Config) service.ImportService {
	parser := NewRowParser(deps.Normalizer)
	writer := NewTransactionWriter(deps.DB, deps.Transactions, logger.With("component", "transaction_writer"))
	recorder := NewRejectionRecorder(deps.Rejections, logger.With("component", "rejection_recorder"))

	baseService := service.NewImportService(
		deps.ImportRequests,
		deps.Files,
		parser,
		writer,
		recorder,
		cfg.Storage.MaxUploadSize,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolImportService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool import service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
