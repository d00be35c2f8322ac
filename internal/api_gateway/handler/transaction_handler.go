package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for imported transactions
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List returns transactions newest first, optionally filtered by customer or product
func (h *TransactionHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	var params TransactionFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid transaction filter", "error", err)
		RespondBadRequest(c, "customer_id and product_id must be valid UUIDs")
		return
	}

	var filter transaction.Filter
	if params.CustomerID != "" {
		id := uuid.MustParse(params.CustomerID)
		filter.CustomerID = &id
	}
	if params.ProductID != "" {
		id := uuid.MustParse(params.ProductID)
		filter.ProductID = &id
	}

	records, total, err := h.transactionService.ListTransactions(c.Request.Context(), filter, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(records))
	for _, rec := range records {
		transactions = append(transactions, mapTransactionToResponse(rec))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	rec, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if rec == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(rec))
}

// mapTransactionToResponse maps a transaction record to a transaction response DTO
func mapTransactionToResponse(rec *transaction.Record) TransactionResponse {
	return TransactionResponse{
		ID:                   rec.ID.String(),
		Timestamp:            rec.Timestamp.UTC().Format(time.RFC3339Nano),
		Amount:               rec.Amount.StringFixed(currency.AmountScale),
		AmountInBaseCurrency: rec.AmountInBaseCurrency.StringFixed(currency.AmountScale),
		Currency:             rec.Currency,
		CustomerID:           rec.CustomerID.String(),
		ProductID:            rec.ProductID.String(),
		Quantity:             rec.Quantity,
		CreatedAt:            rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
