package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/platform/persistence"
)

// transactionColumns is the column order used by CreateBatch
var transactionColumns = []string{
	"id", "timestamp", "amount", "amount_in_base_currency", "currency",
	"customer_id", "product_id", "quantity", "created_at",
}

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateBatch bulk inserts records with COPY. Any duplicate id aborts the whole copy.
func (r *TransactionRepository) CreateBatch(ctx context.Context, records []*transaction.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	copied, err := r.querier.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		transactionColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			return []any{
				rec.ID,
				rec.Timestamp,
				rec.Amount,
				rec.AmountInBaseCurrency,
				rec.Currency,
				rec.CustomerID,
				rec.ProductID,
				rec.Quantity,
				rec.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		r.logger.Error("Failed to bulk insert transactions", "count", len(records), "error", err)
		return 0, fmt.Errorf("failed to bulk insert transactions: %w", err)
	}

	return copied, nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	query := `
		SELECT id, timestamp, amount, amount_in_base_currency, currency, customer_id, product_id, quantity, created_at
		FROM transactions
		WHERE id = $1
	`

	var rec transaction.Record
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Amount,
		&rec.AmountInBaseCurrency,
		&rec.Currency,
		&rec.CustomerID,
		&rec.ProductID,
		&rec.Quantity,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrRecordNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &rec, nil
}

// List returns a page of transactions matching filter, newest first
func (r *TransactionRepository) List(ctx context.Context, filter transaction.Filter, limit, offset int) ([]*transaction.Record, error) {
	where, args := filterClause(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT id, timestamp, amount, amount_in_base_currency, currency, customer_id, product_id, quantity, created_at
		FROM transactions
		%s
		ORDER BY timestamp DESC, id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	records := make([]*transaction.Record, 0, limit)
	for rows.Next() {
		var rec transaction.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Amount,
			&rec.AmountInBaseCurrency,
			&rec.Currency,
			&rec.CustomerID,
			&rec.ProductID,
			&rec.Quantity,
			&rec.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return records, nil
}

// Count returns the number of transactions matching filter
func (r *TransactionRepository) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	where, args := filterClause(filter)
	query := "SELECT COUNT(*) FROM transactions " + where

	var count int64
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CustomerSummary aggregates the spending of one customer within dates
func (r *TransactionRepository) CustomerSummary(ctx context.Context, customerID uuid.UUID, dates transaction.DateRange) (*transaction.CustomerSummary, error) {
	rangeSQL, args := dateRangeClause(dates, []any{customerID})
	query := `
		SELECT COALESCE(SUM(amount_in_base_currency * quantity), 0), COUNT(DISTINCT product_id), MAX(timestamp)
		FROM transactions
		WHERE customer_id = $1` + rangeSQL

	summary := transaction.CustomerSummary{CustomerID: customerID}
	err := r.querier.QueryRow(ctx, query, args...).Scan(
		&summary.TotalCostInBaseCurrency,
		&summary.UniqueProducts,
		&summary.LastTransactionAt,
	)
	if err != nil {
		r.logger.Error("Failed to summarize customer transactions", "customer_id", customerID.String(), "error", err)
		return nil, fmt.Errorf("failed to summarize customer transactions: %w", err)
	}

	return &summary, nil
}

// ProductSummary aggregates the sales of one product within dates
func (r *TransactionRepository) ProductSummary(ctx context.Context, productID uuid.UUID, dates transaction.DateRange) (*transaction.ProductSummary, error) {
	rangeSQL, args := dateRangeClause(dates, []any{productID})
	query := `
		SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(amount_in_base_currency * quantity), 0), COUNT(DISTINCT customer_id)
		FROM transactions
		WHERE product_id = $1` + rangeSQL

	summary := transaction.ProductSummary{ProductID: productID}
	err := r.querier.QueryRow(ctx, query, args...).Scan(
		&summary.TotalQuantity,
		&summary.TotalRevenueInBaseCurrency,
		&summary.UniqueCustomers,
	)
	if err != nil {
		r.logger.Error("Failed to summarize product transactions", "product_id", productID.String(), "error", err)
		return nil, fmt.Errorf("failed to summarize product transactions: %w", err)
	}

	return &summary, nil
}

// filterClause builds a WHERE clause and its positional arguments for filter
func filterClause(filter transaction.Filter) (string, []any) {
	var conds []string
	var args []any
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// dateRangeClause appends timestamp bounds to an existing WHERE clause.
// The lower bound is inclusive and the upper bound exclusive.
func dateRangeClause(dates transaction.DateRange, args []any) (string, []any) {
	var sql string
	if dates.From != nil {
		args = append(args, *dates.From)
		sql += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if dates.To != nil {
		args = append(args, *dates.To)
		sql += fmt.Sprintf(" AND timestamp < $%d", len(args))
	}
	return sql, args
}
