package rejection

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores rejected rows for later inspection
type Repository interface {
	CreateMany(ctx context.Context, rows []*RejectedRow) error
	ListByImportRequestID(ctx context.Context, importRequestID uuid.UUID, limit, offset int) ([]*RejectedRow, error)
	CountByImportRequestID(ctx context.Context, importRequestID uuid.UUID) (int64, error)
}
