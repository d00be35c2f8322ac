package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// DataResponse is a generic version of Response for testing single objects
type DataResponse[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) AcceptUpload(ctx context.Context, upload service.Upload) (*importrequest.ImportRequest, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importrequest.ImportRequest), args.Error(1)
}

func (m *MockImportService) GetImport(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importrequest.ImportRequest), args.Error(1)
}

func (m *MockImportService) ListRejections(ctx context.Context, importRequestID uuid.UUID, page, perPage int) ([]*rejection.RejectedRow, int64, error) {
	args := m.Called(ctx, importRequestID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*rejection.RejectedRow), args.Get(1).(int64), args.Error(2)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Record), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, filter transaction.Filter, page, perPage int) ([]*transaction.Record, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Record), args.Get(1).(int64), args.Error(2)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	args := m.Called(ctx, customerID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.CustomerSummary), args.Error(1)
}

func (m *MockReportService) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	args := m.Called(ctx, productID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.ProductSummary), args.Error(1)
}
