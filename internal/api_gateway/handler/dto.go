package handler

// ErrorDetailResponse is the failure cause of an import request
type ErrorDetailResponse struct {
	ExceptionType  string `json:"exception_type"`
	ExceptionValue string `json:"exception_value"`
}

// ImportRequestResponse represents an import request in API responses
type ImportRequestResponse struct {
	ID               string               `json:"id"`
	Status           string               `json:"status"`
	OriginalFilename string               `json:"original_filename"`
	RequestedBy      string               `json:"requested_by"`
	ImportedRows     int                  `json:"imported_rows"`
	RejectedRows     int                  `json:"rejected_rows"`
	ErrorDetail      *ErrorDetailResponse `json:"error_detail,omitempty"`
	CreatedAt        string               `json:"created_at"`
	CompletedAt      string               `json:"completed_at,omitempty"`
}

// RejectedRowResponse represents a skipped CSV row in API responses
type RejectedRowResponse struct {
	Line      int               `json:"line"`
	Field     string            `json:"field,omitempty"`
	Reason    string            `json:"reason"`
	Raw       map[string]string `json:"raw"`
	CreatedAt string            `json:"created_at"`
}

// TransactionResponse represents an imported transaction in API responses
type TransactionResponse struct {
	ID                   string `json:"id"`
	Timestamp            string `json:"timestamp"`
	Amount               string `json:"amount"`
	AmountInBaseCurrency string `json:"amount_in_base_currency"`
	Currency             string `json:"currency"`
	CustomerID           string `json:"customer_id"`
	ProductID            string `json:"product_id"`
	Quantity             int    `json:"quantity"`
	CreatedAt            string `json:"created_at"`
}

// CustomerSummaryResponse represents the customer report in API responses
type CustomerSummaryResponse struct {
	CustomerID              string  `json:"customer_id"`
	TotalCostInBaseCurrency string  `json:"total_cost_in_base_currency"`
	UniqueProducts          int64   `json:"unique_products"`
	LastTransactionAt       *string `json:"last_transaction_at"`
}

// ProductSummaryResponse represents the product report in API responses
type ProductSummaryResponse struct {
	ProductID                  string `json:"product_id"`
	TotalQuantity              int64  `json:"total_quantity"`
	TotalRevenueInBaseCurrency string `json:"total_revenue_in_base_currency"`
	UniqueCustomers            int64  `json:"unique_customers"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=50" binding:"min=1,max=1000"`
}

// TransactionFilterParams represents the optional filters of the transaction listing
type TransactionFilterParams struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
}

// DateRangeParams bounds report aggregation. Values are YYYY-MM-DD or RFC3339.
type DateRangeParams struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}
