// Package plafond resolves credit tiers and the interest rate for a tenor.
package plafond

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Plafond struct {
	ID        uuid.UUID
	Name      string
	MaxAmount decimal.Decimal
	MaxTenor  int
	FeeRate   decimal.Decimal
}

// Rate is one row of a plafond's rate table.
type Rate struct {
	PlafondID    uuid.UUID
	Tenor        int
	InterestRate decimal.Decimal
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plafond, error)
	FindByName(ctx context.Context, name string) (*Plafond, error)
	// FindRate returns apperrors.ErrNotFound when no row exists for the pair.
	FindRate(ctx context.Context, plafondID uuid.UUID, tenor int) (*Rate, error)
}
