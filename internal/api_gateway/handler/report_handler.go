package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/domain/transaction"
)

// ReportHandler handles HTTP requests for aggregate reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// CustomerSummary reports what one customer spent, in the base currency
func (h *ReportHandler) CustomerSummary(c *gin.Context) {
	customerID, dates, ok := h.parseReportRequest(c, "customer_id")
	if !ok {
		return
	}

	summary, err := h.reportService.CustomerSummary(c.Request.Context(), customerID, dates)
	if err != nil {
		RespondInternalError(c)
		return
	}

	response := CustomerSummaryResponse{
		CustomerID:              summary.CustomerID.String(),
		TotalCostInBaseCurrency: summary.TotalCostInBaseCurrency.StringFixed(currency.AmountScale),
		UniqueProducts:          summary.UniqueProducts,
	}
	if summary.LastTransactionAt != nil {
		last := summary.LastTransactionAt.UTC().Format(time.RFC3339Nano)
		response.LastTransactionAt = &last
	}

	RespondOK(c, response)
}

// ProductSummary reports how one product sold, in the base currency
func (h *ReportHandler) ProductSummary(c *gin.Context) {
	productID, dates, ok := h.parseReportRequest(c, "product_id")
	if !ok {
		return
	}

	summary, err := h.reportService.ProductSummary(c.Request.Context(), productID, dates)
	if err != nil {
		RespondInternalError(c)
		return
	}

	RespondOK(c, ProductSummaryResponse{
		ProductID:                  summary.ProductID.String(),
		TotalQuantity:              summary.TotalQuantity,
		TotalRevenueInBaseCurrency: summary.TotalRevenueInBaseCurrency.StringFixed(currency.AmountScale),
		UniqueCustomers:            summary.UniqueCustomers,
	})
}

func (h *ReportHandler) parseReportRequest(c *gin.Context, param string) (uuid.UUID, transaction.DateRange, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Invalid report subject ID", param, raw, "error", err)
		RespondBadRequest(c, fmt.Sprintf("Invalid %s", param))
		return uuid.Nil, transaction.DateRange{}, false
	}

	var params DateRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return uuid.Nil, transaction.DateRange{}, false
	}

	dates, err := parseDateRange(params)
	if err != nil {
		var dateErr *dateParamError
		if errors.As(err, &dateErr) {
			RespondWithErrorDetails(c, http.StatusBadRequest, CodeBadRequest, dateErr.Error(), gin.H{
				"field": dateErr.Field,
				"value": dateErr.Value,
			})
			return uuid.Nil, transaction.DateRange{}, false
		}
		RespondBadRequest(c, err.Error())
		return uuid.Nil, transaction.DateRange{}, false
	}

	return id, dates, true
}
