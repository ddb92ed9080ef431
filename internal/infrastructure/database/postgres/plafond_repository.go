package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/plafond"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	sqlPlafondByID = `
        SELECT id, name, max_amount, max_tenor, fee_rate
        FROM plafonds
        WHERE id = $1`

	sqlPlafondByName = `
        SELECT id, name, max_amount, max_tenor, fee_rate
        FROM plafonds
        WHERE LOWER(name) = LOWER($1)`

	sqlPlafondRate = `
        SELECT plafond_id, tenor, interest_rate
        FROM plafond_rates
        WHERE plafond_id = $1 AND tenor = $2`
)

type PlafondRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ plafond.Repository = (*PlafondRepository)(nil)

func NewPlafondRepository(db DBPool, logger *slog.Logger) *PlafondRepository {
	return &PlafondRepository{db: db, logger: logger.With("component", "PlafondRepository")}
}

func (r *PlafondRepository) findPlafond(ctx context.Context, operation, query string, arg any) (*plafond.Plafond, error) {
	start := time.Now()
	var p plafond.Plafond
	err := r.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.MaxAmount, &p.MaxTenor, &p.FeeRate)
	observe(operation, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: plafond %v", apperrors.ErrNotFound, arg)
		}
		return nil, translateDBError(err, r.logger.With("operation", operation))
	}
	return &p, nil
}

func (r *PlafondRepository) FindByID(ctx context.Context, id uuid.UUID) (*plafond.Plafond, error) {
	return r.findPlafond(ctx, "FindPlafondByID", sqlPlafondByID, id)
}

func (r *PlafondRepository) FindByName(ctx context.Context, name string) (*plafond.Plafond, error) {
	return r.findPlafond(ctx, "FindPlafondByName", sqlPlafondByName, name)
}

func (r *PlafondRepository) FindRate(ctx context.Context, plafondID uuid.UUID, tenor int) (*plafond.Rate, error) {
	start := time.Now()
	var rate plafond.Rate
	err := r.db.QueryRow(ctx, sqlPlafondRate, plafondID, tenor).Scan(&rate.PlafondID, &rate.Tenor, &rate.InterestRate)
	observe("FindPlafondRate", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "No rate configured", "plafond_id", plafondID, "tenor", tenor)
			return nil, apperrors.ErrNotFound
		}
		return nil, translateDBError(err, r.logger.With("plafond_id", plafondID))
	}
	return &rate, nil
}
