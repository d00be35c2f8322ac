package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/outbox"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/shared"
	"github.com/transaction-importer/internal/domain/transaction"
)

type MockImportRequestRepository struct {
	mock.Mock
}

func (m *MockImportRequestRepository) Create(ctx context.Context, request *importrequest.ImportRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockImportRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importrequest.ImportRequest), args.Error(1)
}

func (m *MockImportRequestRepository) Update(ctx context.Context, request *importrequest.ImportRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockImportRequestRepository) WithTx(tx pgx.Tx) importrequest.Repository {
	args := m.Called(tx)
	return args.Get(0).(importrequest.Repository)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockRejectionRepository struct {
	mock.Mock
}

func (m *MockRejectionRepository) CreateMany(ctx context.Context, rows []*rejection.RejectedRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockRejectionRepository) ListByImportRequestID(ctx context.Context, importRequestID uuid.UUID, limit, offset int) ([]*rejection.RejectedRow, error) {
	args := m.Called(ctx, importRequestID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rejection.RejectedRow), args.Error(1)
}

func (m *MockRejectionRepository) CountByImportRequestID(ctx context.Context, importRequestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, importRequestID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateBatch(ctx context.Context, records []*transaction.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Record), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter transaction.Filter, limit, offset int) ([]*transaction.Record, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Record), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	args := m.Called(ctx, customerID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.CustomerSummary), args.Error(1)
}

func (m *MockTransactionRepository) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	args := m.Called(ctx, productID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.ProductSummary), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	args := m.Called(tx)
	return args.Get(0).(transaction.Repository)
}

// memFileStore keeps saved files in memory and can be told to fail
type memFileStore struct {
	files     map[string]string
	saveErr   error
	deleteErr error
	deleted   []string
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string]string{}}
}

func (s *memFileStore) Save(_ context.Context, key string, r io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[key] = string(data)
	return nil
}

func (s *memFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := s.files[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (s *memFileStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, key)
	return nil
}
