package components

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
)

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) CreateBatch(ctx context.Context, records []*transaction.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Record), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, filter transaction.Filter, limit, offset int) ([]*transaction.Record, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Record), args.Error(1)
}

func (m *MockTransactionRepo) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	args := m.Called(ctx, customerID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.CustomerSummary), args.Error(1)
}

func (m *MockTransactionRepo) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	args := m.Called(ctx, productID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.ProductSummary), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) transaction.Repository {
	args := m.Called(tx)
	return args.Get(0).(transaction.Repository)
}

type MockRejectionRepo struct {
	mock.Mock
}

func (m *MockRejectionRepo) CreateMany(ctx context.Context, rows []*rejection.RejectedRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockRejectionRepo) ListByImportRequestID(ctx context.Context, importRequestID uuid.UUID, limit, offset int) ([]*rejection.RejectedRow, error) {
	args := m.Called(ctx, importRequestID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rejection.RejectedRow), args.Error(1)
}

func (m *MockRejectionRepo) CountByImportRequestID(ctx context.Context, importRequestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, importRequestID)
	return args.Get(0).(int64), args.Error(1)
}
