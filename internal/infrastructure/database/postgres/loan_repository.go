package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/assignment"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const loanRequestColumns = `id, customer_id, marketing_id, branch_id, plafond_id, amount, tenor, status,
        interest_rate, fee_rate, interest_amount, fees_amount, disbursed_amount, total_repayment, estimated_installment,
        latitude, longitude, purpose, requested_at, marketing_acted_at, branch_manager_acted_at, disbursement_acted_at, updated_at`

const (
	sqlInsertLoanRequest = `
        INSERT INTO loan_requests (` + loanRequestColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	sqlSelectLoanRequestByID = `
        SELECT ` + loanRequestColumns + `
        FROM loan_requests
        WHERE id = $1`

	sqlSelectLoanRequestForUpdate = sqlSelectLoanRequestByID + `
        FOR UPDATE`

	sqlUpdateLoanRequest = `
        UPDATE loan_requests
        SET status = $1, interest_amount = $2, fees_amount = $3, disbursed_amount = $4, total_repayment = $5,
            estimated_installment = $6, marketing_acted_at = $7, branch_manager_acted_at = $8,
            disbursement_acted_at = $9, updated_at = $10
        WHERE id = $11`

	sqlInsertApproval = `
        INSERT INTO loan_approvals (id, loan_request_id, handled_by, status, general_notes, identity_notes, plafond_notes, summary_notes, approved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	sqlSelectApprovals = `
        SELECT id, loan_request_id, handled_by, status, general_notes, identity_notes, plafond_notes, summary_notes, approved_at
        FROM loan_approvals
        WHERE loan_request_id = $1
        ORDER BY approved_at ASC`

	sqlExistsOpenByCustomer = `
        SELECT EXISTS (
            SELECT 1 FROM loan_requests WHERE customer_id = $1 AND status = ANY($2)
        )`

	sqlCountOpenByMarketing = `
        SELECT marketing_id, COUNT(*)
        FROM loan_requests
        WHERE branch_id = $1 AND status = ANY($2)
        GROUP BY marketing_id`

	sqlListByMarketingAndStatus = `
        SELECT ` + loanRequestColumns + `
        FROM loan_requests
        WHERE marketing_id = $1 AND status = $2
        ORDER BY requested_at ASC`

	sqlListByBranchAndStatus = `
        SELECT ` + loanRequestColumns + `
        FROM loan_requests
        WHERE branch_id = $1 AND status = $2
        ORDER BY requested_at ASC`

	sqlListByCustomerAndStatuses = `
        SELECT ` + loanRequestColumns + `
        FROM loan_requests
        WHERE customer_id = $1 AND status = ANY($2)
        ORDER BY requested_at DESC`

	sqlListStale = `
        SELECT ` + loanRequestColumns + `
        FROM loan_requests
        WHERE status = $1 AND updated_at < $2
        ORDER BY updated_at ASC`

	sqlInsertScheduleEntry = `
        INSERT INTO loan_schedules (id, loan_request_id, period, due_date, due_amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)`
)

type LoanRequestRepository struct {
	txManager
	db     DBPool
	logger *slog.Logger
}

var (
	_ loan.Repository        = (*LoanRequestRepository)(nil)
	_ assignment.LoadCounter = (*LoanRequestRepository)(nil)
)

func NewLoanRequestRepository(db DBPool, logger *slog.Logger) *LoanRequestRepository {
	l := logger.With("component", "LoanRequestRepository")
	return &LoanRequestRepository{
		txManager: txManager{db: db, logger: l},
		db:        db,
		logger:    l,
	}
}

func statusArgs(statuses []loan.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanLoanRequest(row pgx.Row) (*loan.LoanRequest, error) {
	var r loan.LoanRequest
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.MarketingID, &r.BranchID, &r.PlafondID, &r.Amount, &r.Tenor, &r.Status,
		&r.InterestRate, &r.FeeRate, &r.InterestAmount, &r.FeesAmount, &r.DisbursedAmount, &r.TotalRepayment, &r.EstimatedInstallment,
		&r.Latitude, &r.Longitude, &r.Purpose, &r.RequestedAt, &r.MarketingActedAt, &r.BranchManagerActedAt, &r.DisbursementActedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *LoanRequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, req *loan.LoanRequest, first *loan.Approval) error {
	start := time.Now()
	_, err := tx.Exec(ctx, sqlInsertLoanRequest,
		req.ID, req.CustomerID, req.MarketingID, req.BranchID, req.PlafondID, req.Amount, req.Tenor, req.Status,
		req.InterestRate, req.FeeRate, req.InterestAmount, req.FeesAmount, req.DisbursedAmount, req.TotalRepayment, req.EstimatedInstallment,
		req.Latitude, req.Longitude, req.Purpose, req.RequestedAt, req.MarketingActedAt, req.BranchManagerActedAt, req.DisbursementActedAt, req.UpdatedAt,
	)
	observe("CreateLoanRequest", start, err)
	if err != nil {
		return translateDBError(err, r.logger.With("loan_request_id", req.ID))
	}

	if first != nil {
		if err := r.InsertApprovalInTx(ctx, tx, first); err != nil {
			return err
		}
	}
	r.logger.InfoContext(ctx, "Loan request stored", "loan_request_id", req.ID, "customer_id", req.CustomerID)
	return nil
}

func (r *LoanRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.LoanRequest, error) {
	start := time.Now()
	req, err := scanLoanRequest(r.db.QueryRow(ctx, sqlSelectLoanRequestByID, id))
	observe("GetLoanRequestByID", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan request not found", "loan_request_id", id)
			return nil, fmt.Errorf("%w: loan request %s", apperrors.ErrNotFound, id)
		}
		return nil, translateDBError(err, r.logger.With("loan_request_id", id))
	}
	return req, nil
}

func (r *LoanRequestRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*loan.LoanRequest, error) {
	start := time.Now()
	req, err := scanLoanRequest(tx.QueryRow(ctx, sqlSelectLoanRequestForUpdate, id))
	observe("LockLoanRequest", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan request %s", apperrors.ErrNotFound, id)
		}
		return nil, translateDBError(err, r.logger.With("loan_request_id", id))
	}
	return req, nil
}

func (r *LoanRequestRepository) ListApprovals(ctx context.Context, requestID uuid.UUID) ([]loan.Approval, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sqlSelectApprovals, requestID)
	if err != nil {
		observe("ListApprovals", start, err)
		r.logger.ErrorContext(ctx, "Failed to query approvals", "loan_request_id", requestID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	approvals := make([]loan.Approval, 0)
	for rows.Next() {
		var a loan.Approval
		if err := rows.Scan(&a.ID, &a.LoanRequestID, &a.HandledBy, &a.Status,
			&a.Notes.General, &a.Notes.Identity, &a.Notes.Plafond, &a.Notes.Summary, &a.ApprovedAt); err != nil {
			observe("ListApprovals", start, err)
			r.logger.ErrorContext(ctx, "Failed to scan approval row", "loan_request_id", requestID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		approvals = append(approvals, a)
	}
	err = rows.Err()
	observe("ListApprovals", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating approval rows", "loan_request_id", requestID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return approvals, nil
}

func (r *LoanRequestRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, req *loan.LoanRequest) error {
	start := time.Now()
	cmdTag, err := tx.Exec(ctx, sqlUpdateLoanRequest,
		req.Status, req.InterestAmount, req.FeesAmount, req.DisbursedAmount, req.TotalRepayment,
		req.EstimatedInstallment, req.MarketingActedAt, req.BranchManagerActedAt,
		req.DisbursementActedAt, req.UpdatedAt, req.ID,
	)
	observe("UpdateLoanRequest", start, err)
	if err != nil {
		return translateDBError(err, r.logger.With("loan_request_id", req.ID))
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan request update affected zero rows", "loan_request_id", req.ID)
		return fmt.Errorf("%w: loan request update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRequestRepository) InsertApprovalInTx(ctx context.Context, tx pgx.Tx, a *loan.Approval) error {
	start := time.Now()
	_, err := tx.Exec(ctx, sqlInsertApproval,
		a.ID, a.LoanRequestID, a.HandledBy, a.Status,
		a.Notes.General, a.Notes.Identity, a.Notes.Plafond, a.Notes.Summary, a.ApprovedAt,
	)
	observe("InsertApproval", start, err)
	if err != nil {
		return translateDBError(err, r.logger.With("loan_request_id", a.LoanRequestID))
	}
	return nil
}

func (r *LoanRequestRepository) ExistsOpenByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (bool, error) {
	start := time.Now()
	var exists bool
	err := tx.QueryRow(ctx, sqlExistsOpenByCustomer, customerID, statusArgs(loan.OpenStatuses)).Scan(&exists)
	observe("ExistsOpenLoanRequest", start, err)
	if err != nil {
		return false, translateDBError(err, r.logger.With("customer_id", customerID))
	}
	return exists, nil
}

func (r *LoanRequestRepository) CountOpenByMarketing(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]int, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sqlCountOpenByMarketing, branchID, statusArgs(loan.OpenStatuses))
	if err != nil {
		observe("CountOpenByMarketing", start, err)
		r.logger.ErrorContext(ctx, "Failed to count open requests", "branch_id", branchID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			marketingID uuid.UUID
			count       int64
		)
		if err := rows.Scan(&marketingID, &count); err != nil {
			observe("CountOpenByMarketing", start, err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		counts[marketingID] = int(count)
	}
	err = rows.Err()
	observe("CountOpenByMarketing", start, err)
	if err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return counts, nil
}

func (r *LoanRequestRepository) ListByMarketingAndStatus(ctx context.Context, marketingID uuid.UUID, status loan.Status) ([]loan.LoanRequest, error) {
	return r.list(ctx, "ListByMarketingAndStatus", sqlListByMarketingAndStatus, marketingID, status)
}

func (r *LoanRequestRepository) ListByBranchAndStatus(ctx context.Context, branchID uuid.UUID, status loan.Status) ([]loan.LoanRequest, error) {
	return r.list(ctx, "ListByBranchAndStatus", sqlListByBranchAndStatus, branchID, status)
}

func (r *LoanRequestRepository) ListByCustomerAndStatuses(ctx context.Context, customerID uuid.UUID, statuses []loan.Status) ([]loan.LoanRequest, error) {
	return r.list(ctx, "ListByCustomerAndStatuses", sqlListByCustomerAndStatuses, customerID, statusArgs(statuses))
}

func (r *LoanRequestRepository) ListStale(ctx context.Context, status loan.Status, cutoff time.Time) ([]loan.LoanRequest, error) {
	return r.list(ctx, "ListStale", sqlListStale, status, cutoff)
}

func (r *LoanRequestRepository) list(ctx context.Context, operation, query string, args ...any) ([]loan.LoanRequest, error) {
	logCtx := r.logger.With(slog.String("operation", operation))
	start := time.Now()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		observe(operation, start, err)
		logCtx.ErrorContext(ctx, "Failed to query loan requests", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	result := make([]loan.LoanRequest, 0)
	for rows.Next() {
		req, err := scanLoanRequest(rows)
		if err != nil {
			observe(operation, start, err)
			logCtx.ErrorContext(ctx, "Failed to scan loan request row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		result = append(result, *req)
	}
	err = rows.Err()
	observe(operation, start, err)
	if err != nil {
		logCtx.ErrorContext(ctx, "Error iterating loan request rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Loan requests listed", slog.Int("count", len(result)))
	return result, nil
}

func (r *LoanRequestRepository) CreateScheduleInTx(ctx context.Context, tx pgx.Tx, entries []loan.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(sqlInsertScheduleEntry, e.ID, e.LoanRequestID, e.Period, e.DueDate, e.DueAmount, e.Status)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			observe("CreateSchedule", start, err)
			r.logger.ErrorContext(ctx, "Failed executing schedule batch insert", "error", err, "entry_index", i, "loan_request_id", entries[i].LoanRequestID)
			return fmt.Errorf("%w: failed inserting schedule entry %d: %w", apperrors.ErrDatabase, i+1, err)
		}
	}
	err := results.Close()
	observe("CreateSchedule", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed closing schedule batch results", "error", err)
		return fmt.Errorf("%w: closing batch results failed: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Repayment schedule stored", "loan_request_id", entries[0].LoanRequestID, "num_entries", len(entries))
	return nil
}
