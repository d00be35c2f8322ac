package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/transaction"
)

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	transactionRepo transaction.Repository
	logger          *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(logger *slog.Logger, transactionRepo transaction.Repository) ReportService {
	return &ReportServiceImpl{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// CustomerSummary aggregates the spending of one customer within dates
func (s *ReportServiceImpl) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	summary, err := s.transactionRepo.CustomerSummary(ctx, customerID, dates)
	if err != nil {
		s.logger.Error("Failed to build customer summary", "customer_id", customerID.String(), "error", err)
		return nil, err
	}
	return summary, nil
}

// ProductSummary aggregates the sales of one product within dates
func (s *ReportServiceImpl) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	summary, err := s.transactionRepo.ProductSummary(ctx, productID, dates)
	if err != nil {
		s.logger.Error("Failed to build product summary", "product_id", productID.String(), "error", err)
		return nil, err
	}
	return summary, nil
}
