package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/platform/storage"
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

type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) WriteAll(ctx context.Context, records []*transaction.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

type MockRejectionRecorder struct {
	mock.Mock
}

func (m *MockRejectionRecorder) Record(ctx context.Context, importRequestID uuid.UUID, rows []*rejection.RejectedRow) {
	m.Called(ctx, importRequestID, rows)
}

// memFileStore serves files from memory
type memFileStore struct {
	files map[string]string
}

func (s *memFileStore) Save(_ context.Context, key string, r io.Reader) error {
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
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (s *memFileStore) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	return nil
}

// stubParser accepts rows whose amount parses and whose transaction_id is a UUID
type stubParser struct{}

func (stubParser) Parse(line int, raw map[string]string) RowResult {
	id, err := uuid.Parse(raw["transaction_id"])
	if err != nil {
		return RowResult{Err: &transaction.RowValidationError{Line: line, Field: "transaction_id", Value: raw["transaction_id"], Message: "must be a valid UUID"}}
	}
	amount, err := decimal.NewFromString(raw["amount"])
	if err != nil {
		return RowResult{Err: &transaction.RowValidationError{Line: line, Field: "amount", Value: raw["amount"], Message: "must be a decimal number"}}
	}
	return RowResult{Record: &transaction.Record{ID: id, Amount: amount, AmountInBaseCurrency: amount, Currency: "PLN", Quantity: 1}}
}

// panicParser simulates a programming error inside the pipeline
type panicParser struct{}

func (panicParser) Parse(int, map[string]string) RowResult {
	panic("unexpected nil map")
}
