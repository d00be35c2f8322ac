package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transaction record persistence and reporting reads
type Repository interface {
	CreateBatch(ctx context.Context, records []*Record) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Record, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	CustomerSummary(ctx context.Context, customerID uuid.UUID, dates DateRange) (*CustomerSummary, error)
	ProductSummary(ctx context.Context, productID uuid.UUID, dates DateRange) (*ProductSummary, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates a missing transaction record
type ErrRecordNotFound struct {
	ID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
