package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one imported transaction with its amount normalized to the base currency
type Record struct {
	ID                   uuid.UUID       `json:"id"`
	Timestamp            time.Time       `json:"timestamp"`
	Amount               decimal.Decimal `json:"amount"`
	AmountInBaseCurrency decimal.Decimal `json:"amount_in_base_currency"`
	Currency             string          `json:"currency"`
	CustomerID           uuid.UUID       `json:"customer_id"`
	ProductID            uuid.UUID       `json:"product_id"`
	Quantity             int             `json:"quantity"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Filter narrows transaction listings. Nil fields are ignored.
type Filter struct {
	CustomerID *uuid.UUID
	ProductID  *uuid.UUID
}

// DateRange bounds report aggregation by transaction timestamp.
// From is inclusive, To is exclusive, and nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// CustomerSummary aggregates the transactions of one customer
type CustomerSummary struct {
	CustomerID              uuid.UUID       `json:"customer_id"`
	TotalCostInBaseCurrency decimal.Decimal `json:"total_cost_in_base_currency"`
	UniqueProducts          int64           `json:"unique_products"`
	LastTransactionAt       *time.Time      `json:"last_transaction_at"`
}

// ProductSummary aggregates the transactions of one product
type ProductSummary struct {
	ProductID                  uuid.UUID       `json:"product_id"`
	TotalQuantity              int64           `json:"total_quantity"`
	TotalRevenueInBaseCurrency decimal.Decimal `json:"total_revenue_in_base_currency"`
	UniqueCustomers            int64           `json:"unique_customers"`
}
