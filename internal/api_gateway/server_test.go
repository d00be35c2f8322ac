package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/transaction-importer/internal/api_gateway/middleware"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
)

type stubImportService struct{ mock.Mock }

func (s *stubImportService) AcceptUpload(ctx context.Context, upload service.Upload) (*importrequest.ImportRequest, error) {
	args := s.Called(ctx, upload)
	return nil, args.Error(1)
}

func (s *stubImportService) GetImport(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error) {
	args := s.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importrequest.ImportRequest), args.Error(1)
}

func (s *stubImportService) ListRejections(ctx context.Context, id uuid.UUID, page, perPage int) ([]*rejection.RejectedRow, int64, error) {
	args := s.Called(ctx, id, page, perPage)
	return nil, 0, args.Error(2)
}

type stubTransactionService struct{}

func (s *stubTransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	return nil, nil
}

func (s *stubTransactionService) ListTransactions(ctx context.Context, filter transaction.Filter, page, perPage int) ([]*transaction.Record, int64, error) {
	return []*transaction.Record{}, 0, nil
}

type stubReportService struct{}

func (s *stubReportService) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	return &transaction.CustomerSummary{CustomerID: customerID}, nil
}

func (s *stubReportService) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	return &transaction.ProductSummary{ProductID: productID}, nil
}

func newTestServer(importService service.ImportService) *Server {
	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server: config.ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
		},
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServer(logger, cfg, importService, &stubTransactionService{}, &stubReportService{})
}

func TestServer_Routes(t *testing.T) {
	importID := uuid.New()
	importService := &stubImportService{}
	importService.On("GetImport", mock.Anything, importID).Return(&importrequest.ImportRequest{
		ID:     importID,
		Status: importrequest.StatusPending,
	}, nil)

	handler := newTestServer(importService).Handler()

	tests := []struct {
		name         string
		method       string
		path         string
		userID       string
		expectedCode int
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", expectedCode: http.StatusOK},
		{name: "api requires a user", method: http.MethodGet, path: "/api/v1/transactions", expectedCode: http.StatusUnauthorized},
		{name: "list transactions", method: http.MethodGet, path: "/api/v1/transactions", userID: "u1", expectedCode: http.StatusOK},
		{name: "unknown transaction", method: http.MethodGet, path: "/api/v1/transactions/" + uuid.NewString(), userID: "u1", expectedCode: http.StatusNotFound},
		{name: "import status", method: http.MethodGet, path: "/api/v1/imports/" + importID.String(), userID: "u1", expectedCode: http.StatusOK},
		{name: "upload without file", method: http.MethodPost, path: "/api/v1/imports", userID: "u1", expectedCode: http.StatusBadRequest},
		{name: "customer summary", method: http.MethodGet, path: "/api/v1/reports/customers/" + uuid.NewString() + "/summary", userID: "u1", expectedCode: http.StatusOK},
		{name: "product summary", method: http.MethodGet, path: "/api/v1/reports/products/" + uuid.NewString() + "/summary", userID: "u1", expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.userID != "" {
				req.Header.Set(middleware.UserIDHeader, tt.userID)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code, rr.Body.String())
			assert.NotEmpty(t, rr.Header().Get(middleware.CorrelationIDHeader))
		})
	}
}

func TestServer_StopBeforeStart(t *testing.T) {
	server := newTestServer(&stubImportService{})
	assert.NoError(t, server.Stop(context.Background()))
}
