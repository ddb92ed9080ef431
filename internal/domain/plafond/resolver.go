package plafond

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is a plafond together with the rate that applies to a tenor.
type Quote struct {
	Plafond      *Plafond
	Tenor        int
	InterestRate decimal.Decimal
}

type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	if repo == nil {
		panic("plafond repository cannot be nil")
	}
	return &Resolver{
		repo:   repo,
		logger: logger.With(slog.String("component", "PlafondResolver")),
	}
}

// ResolveRate fails with ErrRateNotFound when the plafond has no entry for tenor.
func (r *Resolver) ResolveRate(ctx context.Context, plafondID uuid.UUID, tenor int) (decimal.Decimal, error) {
	if tenor < 1 {
		return decimal.Zero, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTenor, tenor)
	}
	rate, err := r.repo.FindRate(ctx, plafondID, tenor)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: plafond %s, tenor %d", apperrors.ErrRateNotFound, plafondID, tenor)
		}
		return decimal.Zero, err
	}
	return rate.InterestRate, nil
}

// ValidateEligibility checks the customer's remaining limit and that the
// customer's plafond offers tenor. It returns the customer's plafond.
func (r *Resolver) ValidateEligibility(ctx context.Context, c *customer.Customer, amount decimal.Decimal, tenor int) (*Plafond, error) {
	q, err := r.Eligible(ctx, c, amount, tenor)
	if err != nil {
		return nil, err
	}
	return q.Plafond, nil
}

// Eligible runs the eligibility check and the rate lookup in one pass.
// Failures stay distinguishable: ErrInsufficientLimit or ErrTenorUnavailable.
func (r *Resolver) Eligible(ctx context.Context, c *customer.Customer, amount decimal.Decimal, tenor int) (*Quote, error) {
	if tenor < 1 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTenor, tenor)
	}
	if amount.GreaterThan(c.RemainingLimit) {
		r.logger.InfoContext(ctx, "Eligibility rejected: limit",
			slog.String("customerID", c.ID.String()),
			slog.String("amount", amount.String()),
			slog.String("remaining", c.RemainingLimit.String()))
		return nil, fmt.Errorf("%w: remaining %s, requested %s",
			apperrors.ErrInsufficientLimit, c.RemainingLimit.String(), amount.String())
	}

	p, err := r.repo.FindByID(ctx, c.PlafondID)
	if err != nil {
		return nil, fmt.Errorf("loading plafond for customer %s: %w", c.ID, err)
	}

	rate, err := r.ResolveRate(ctx, p.ID, tenor)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			return nil, fmt.Errorf("%w: plafond %s has no %d-period entry", apperrors.ErrTenorUnavailable, p.Name, tenor)
		}
		return nil, err
	}
	return &Quote{Plafond: p, Tenor: tenor, InterestRate: rate}, nil
}

// QuoteByName is the simulation path: no customer, only the tier's own bounds.
func (r *Resolver) QuoteByName(ctx context.Context, name string, amount decimal.Decimal, tenor int) (*Quote, error) {
	p, err := r.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(p.MaxAmount) {
		return nil, fmt.Errorf("%w: amount exceeds plafond %s maximum of %s",
			apperrors.ErrInvalidInput, p.Name, p.MaxAmount.String())
	}
	if tenor > p.MaxTenor {
		return nil, fmt.Errorf("%w: tenor exceeds plafond %s maximum of %d",
			apperrors.ErrInvalidInput, p.Name, p.MaxTenor)
	}
	rate, err := r.ResolveRate(ctx, p.ID, tenor)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			return nil, fmt.Errorf("%w: plafond %s has no %d-period entry", apperrors.ErrTenorUnavailable, p.Name, tenor)
		}
		return nil, err
	}
	return &Quote{Plafond: p, Tenor: tenor, InterestRate: rate}, nil
}
