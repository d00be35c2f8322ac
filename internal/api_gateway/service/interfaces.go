package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
)

// Upload is a CSV file received over HTTP
type Upload struct {
	Filename      string
	Size          int64
	Content       io.Reader
	RequestedBy   string
	CorrelationID string
}

// ImportService defines the interface for import request operations
type ImportService interface {
	// AcceptUpload stores the file and creates a PENDING import request together with its dispatch message.
	// Returns ErrNotCSV or ErrFileTooLarge for files that are refused
	AcceptUpload(ctx context.Context, upload Upload) (*importrequest.ImportRequest, error)

	// GetImport retrieves an import request by its ID
	// Returns ErrImportRequestNotFound if the request doesn't exist
	GetImport(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error)

	// ListRejections retrieves a page of the rows skipped by an import
	// Returns rows, total count of rejected rows, and any error
	ListRejections(ctx context.Context, importRequestID uuid.UUID, page, perPage int) ([]*rejection.RejectedRow, int64, error)
}

// TransactionService defines the interface for imported transaction reads
type TransactionService interface {
	// GetTransactionByID retrieves a transaction by its ID
	// Returns nil if the transaction is not found
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error)

	// ListTransactions retrieves a page of transactions, newest first
	// Returns records, total count of matching transactions, and any error
	ListTransactions(ctx context.Context, filter transaction.Filter, page, perPage int) ([]*transaction.Record, int64, error)
}

// ReportService defines the interface for aggregate reports
type ReportService interface {
	CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error)
	ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error)
}
