package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/import_worker/service"
	"github.com/transaction-importer/internal/platform/persistence"
)

type TransactionWriterImpl struct {
	db     persistence.TxStarter
	repo   transaction.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewTransactionWriter(db persistence.TxStarter, repo transaction.Repository, logger *slog.Logger) service.TransactionWriter {
	return &TransactionWriterImpl{
		db:     db,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WriteAll stores every record in one database transaction. Either all rows land or none do.
func (w *TransactionWriterImpl) WriteAll(ctx context.Context, records []*transaction.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	createdAt := w.now().UTC()
	for _, rec := range records {
		rec.CreatedAt = createdAt
	}

	var written int64
	err := persistence.ExecuteTx(ctx, w.db, func(tx pgx.Tx) error {
		n, err := w.repo.WithTx(tx).CreateBatch(ctx, records)
		if err != nil {
			return err
		}
		if n != int64(len(records)) {
			return fmt.Errorf("copied %d of %d transactions", n, len(records))
		}
		written = n
		return nil
	})
	if err != nil {
		w.logger.Error("Failed to write imported transactions", "count", len(records), "error", err)
		return 0, err
	}

	w.logger.Info("Imported transactions written", "count", written)
	return written, nil
}
