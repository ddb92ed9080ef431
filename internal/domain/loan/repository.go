package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// CreateInTx stores a new request with its first audit record. A second
	// open request for the same customer fails with ErrDuplicateOpenRequest.
	CreateInTx(ctx context.Context, tx pgx.Tx, req *LoanRequest, first *Approval) error

	GetByID(ctx context.Context, id uuid.UUID) (*LoanRequest, error)

	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*LoanRequest, error)

	ListApprovals(ctx context.Context, requestID uuid.UUID) ([]Approval, error)

	UpdateInTx(ctx context.Context, tx pgx.Tx, req *LoanRequest) error

	InsertApprovalInTx(ctx context.Context, tx pgx.Tx, a *Approval) error

	ExistsOpenByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (bool, error)

	CountOpenByMarketing(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]int, error)

	ListByMarketingAndStatus(ctx context.Context, marketingID uuid.UUID, status Status) ([]LoanRequest, error)

	ListByBranchAndStatus(ctx context.Context, branchID uuid.UUID, status Status) ([]LoanRequest, error)

	ListByCustomerAndStatuses(ctx context.Context, customerID uuid.UUID, statuses []Status) ([]LoanRequest, error)

	// ListStale returns requests that have stayed in status since before cutoff.
	ListStale(ctx context.Context, status Status, cutoff time.Time) ([]LoanRequest, error)

	CreateScheduleInTx(ctx context.Context, tx pgx.Tx, entries []ScheduleEntry) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
