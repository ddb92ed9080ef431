package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*Customer, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Customer, error)
	UpdateRemainingLimitInTx(ctx context.Context, tx pgx.Tx, c *Customer) error
}
