package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/import_worker/service"
)

// CSV columns every row must carry
const (
	ColumnTransactionID = "transaction_id"
	ColumnTimestamp     = "timestamp"
	ColumnAmount        = "amount"
	ColumnCurrency      = "currency"
	ColumnCustomerID    = "customer_id"
	ColumnProductID     = "product_id"
	ColumnQuantity      = "quantity"
)

var requiredColumns = []string{
	ColumnTransactionID,
	ColumnTimestamp,
	ColumnAmount,
	ColumnCurrency,
	ColumnCustomerID,
	ColumnProductID,
	ColumnQuantity,
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

const maxQuantity = 2147483647

// amountLimit is the first value NUMERIC(12,2) cannot hold
var amountLimit = decimal.New(1, 10)

type RowParserImpl struct {
	normalizer *currency.Normalizer
}

func NewRowParser(normalizer *currency.Normalizer) service.RowParser {
	return &RowParserImpl{normalizer: normalizer}
}

// Parse validates one raw row and converts it into a record normalized to the base currency
func (p *RowParserImpl) Parse(line int, raw map[string]string) service.RowResult {
	fields := make(map[string]string, len(requiredColumns))
	for _, column := range requiredColumns {
		value, ok := raw[column]
		if !ok {
			return rejected(line, column, "", "missing required column")
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return rejected(line, column, value, "is required")
		}
		fields[column] = value
	}

	id, err := uuid.Parse(fields[ColumnTransactionID])
	if err != nil {
		return rejected(line, ColumnTransactionID, fields[ColumnTransactionID], "must be a valid UUID")
	}

	timestamp, ok := parseTimestamp(fields[ColumnTimestamp])
	if !ok {
		return rejected(line, ColumnTimestamp, fields[ColumnTimestamp], "must be an ISO-8601 date or date-time")
	}

	amount, reason := parseAmount(fields[ColumnAmount])
	if reason != "" {
		return rejected(line, ColumnAmount, fields[ColumnAmount], reason)
	}

	code, ok := parseCurrency(fields[ColumnCurrency])
	if !ok {
		return rejected(line, ColumnCurrency, fields[ColumnCurrency], "must be a 3-letter currency code")
	}

	customerID, err := uuid.Parse(fields[ColumnCustomerID])
	if err != nil {
		return rejected(line, ColumnCustomerID, fields[ColumnCustomerID], "must be a valid UUID")
	}

	productID, err := uuid.Parse(fields[ColumnProductID])
	if err != nil {
		return rejected(line, ColumnProductID, fields[ColumnProductID], "must be a valid UUID")
	}

	quantity, err := strconv.ParseInt(fields[ColumnQuantity], 10, 64)
	if err != nil || quantity < 1 || quantity > maxQuantity {
		return rejected(line, ColumnQuantity, fields[ColumnQuantity], "must be an integer between 1 and 2147483647")
	}

	inBase := p.normalizer.Normalize(amount, code)
	if inBase.GreaterThanOrEqual(amountLimit) {
		return rejected(line, ColumnAmount, fields[ColumnAmount],
			"exceeds the storable range after conversion to "+p.normalizer.BaseCurrency())
	}

	return service.RowResult{Record: &transaction.Record{
		ID:                   id,
		Timestamp:            timestamp,
		Amount:               amount,
		AmountInBaseCurrency: inBase,
		Currency:             code,
		CustomerID:           customerID,
		ProductID:            productID,
		Quantity:             int(quantity),
	}}
}

func rejected(line int, field, value, message string) service.RowResult {
	return service.RowResult{Err: &transaction.RowValidationError{
		Line:    line,
		Field:   field,
		Value:   value,
		Message: message,
	}}
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseAmount returns the amount or the reason it was refused
func parseAmount(value string) (decimal.Decimal, string) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, "must be a decimal number"
	}
	if strings.ContainsAny(value, "eE") {
		return decimal.Decimal{}, "must be a plain decimal number"
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, "must not be negative"
	}
	if !amount.Equal(amount.Truncate(currency.AmountScale)) {
		return decimal.Decimal{}, "must have at most 2 decimal places"
	}
	if amount.GreaterThanOrEqual(amountLimit) {
		return decimal.Decimal{}, "must have at most 10 integer digits"
	}
	return amount, ""
}

func parseCurrency(value string) (string, bool) {
	if len(value) != 3 {
		return "", false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", false
		}
	}
	return strings.ToUpper(value), true
}
