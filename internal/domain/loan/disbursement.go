package loan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/finance"

	"github.com/jackc/pgx/v5"
)

// DisbursementProcessor applies the financial side of the back-office decision
// inside the caller's transaction.
type DisbursementProcessor struct {
	repo      Repository
	customers customer.Repository
	logger    *slog.Logger
}

func NewDisbursementProcessor(repo Repository, customers customer.Repository, logger *slog.Logger) *DisbursementProcessor {
	return &DisbursementProcessor{
		repo:      repo,
		customers: customers,
		logger:    logger.With(slog.String("component", "DisbursementProcessor")),
	}
}

// Recompute overwrites the creation snapshot with multi-period amounts.
func (p *DisbursementProcessor) Recompute(r *LoanRequest) error {
	b, err := finance.ComputeDisbursement(r.Amount, r.Tenor, r.InterestRate, r.FeeRate)
	if err != nil {
		return err
	}
	r.applyBreakdown(b)
	return nil
}

// Disburse re-checks the customer's remaining limit under a row lock, deducts
// the principal and stores the repayment schedule. r must already carry the
// recomputed amounts.
func (p *DisbursementProcessor) Disburse(ctx context.Context, tx pgx.Tx, r *LoanRequest, at time.Time) (*customer.Customer, []ScheduleEntry, error) {
	cust, err := p.customers.FindByIDForUpdate(ctx, tx, r.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("locking customer %s: %w", r.CustomerID, err)
	}

	if err := cust.Deduct(r.Amount); err != nil {
		p.logger.WarnContext(ctx, "Disbursement blocked by remaining limit",
			slog.String("loanRequestID", r.ID.String()),
			slog.String("remaining", cust.RemainingLimit.String()),
			slog.String("amount", r.Amount.String()))
		return nil, nil, err
	}
	if err := p.customers.UpdateRemainingLimitInTx(ctx, tx, cust); err != nil {
		return nil, nil, fmt.Errorf("updating remaining limit of customer %s: %w", cust.ID, err)
	}

	schedule, err := GenerateSchedule(r, at)
	if err != nil {
		return nil, nil, err
	}
	if err := p.repo.CreateScheduleInTx(ctx, tx, schedule); err != nil {
		return nil, nil, fmt.Errorf("storing repayment schedule: %w", err)
	}

	p.logger.InfoContext(ctx, "Loan request disbursed",
		slog.String("loanRequestID", r.ID.String()),
		slog.String("customerID", cust.ID.String()),
		slog.Int("scheduleEntries", len(schedule)))
	return cust, schedule, nil
}
