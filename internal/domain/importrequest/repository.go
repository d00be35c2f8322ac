package importrequest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages import request persistence
type Repository interface {
	Create(ctx context.Context, request *ImportRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImportRequest, error)
	Update(ctx context.Context, request *ImportRequest) error
	WithTx(tx pgx.Tx) Repository
}
