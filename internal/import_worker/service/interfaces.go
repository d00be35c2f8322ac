package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
)

// ImportService runs the import pipeline for one import request
type ImportService interface {
	RunImport(ctx context.Context, importRequestID uuid.UUID) error
}

// RowResult is the outcome of validating one CSV row. Exactly one field is set.
type RowResult struct {
	Record *transaction.Record
	Err    *transaction.RowValidationError
}

// RowParser validates a raw CSV row and normalizes it into a record
type RowParser interface {
	Parse(line int, raw map[string]string) RowResult
}

// TransactionWriter persists the accepted records of one import atomically
type TransactionWriter interface {
	WriteAll(ctx context.Context, records []*transaction.Record) (int64, error)
}

// RejectionRecorder keeps an audit copy of rejected rows. It never fails the import.
type RejectionRecorder interface {
	Record(ctx context.Context, importRequestID uuid.UUID, rows []*rejection.RejectedRow)
}
