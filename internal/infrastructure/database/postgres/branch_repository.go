package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/assignment"
	"loan-origination/internal/domain/identity"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	sqlBranchesWithMarketing = `
        SELECT b.id, b.name, b.latitude, b.longitude
        FROM branches b
        WHERE EXISTS (
            SELECT 1 FROM users u WHERE u.branch_id = b.id AND u.role = $1
        )
        ORDER BY b.name`

	// Listing order is the balancer's tie-break order, so it must be stable.
	sqlMarketingByBranch = `
        SELECT id
        FROM users
        WHERE branch_id = $1 AND role = $2
        ORDER BY created_at ASC, id ASC`
)

// BranchRepository reads branches and their staff from the users table.
type BranchRepository struct {
	db     DBPool
	logger *slog.Logger
}

var (
	_ assignment.BranchRepository = (*BranchRepository)(nil)
	_ assignment.AgentDirectory   = (*BranchRepository)(nil)
)

func NewBranchRepository(db DBPool, logger *slog.Logger) *BranchRepository {
	return &BranchRepository{db: db, logger: logger.With("component", "BranchRepository")}
}

func (r *BranchRepository) ListWithMarketing(ctx context.Context) ([]assignment.Branch, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sqlBranchesWithMarketing, string(identity.RoleMarketing))
	if err != nil {
		observe("ListBranchesWithMarketing", start, err)
		r.logger.ErrorContext(ctx, "Failed to query branches", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	branches := make([]assignment.Branch, 0)
	for rows.Next() {
		var b assignment.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Latitude, &b.Longitude); err != nil {
			observe("ListBranchesWithMarketing", start, err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		branches = append(branches, b)
	}
	err = rows.Err()
	observe("ListBranchesWithMarketing", start, err)
	if err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return branches, nil
}

func (r *BranchRepository) ListMarketingByBranch(ctx context.Context, branchID uuid.UUID) ([]uuid.UUID, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sqlMarketingByBranch, branchID, string(identity.RoleMarketing))
	if err != nil {
		observe("ListMarketingByBranch", start, err)
		r.logger.ErrorContext(ctx, "Failed to query marketing agents", "branch_id", branchID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	agents := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			observe("ListMarketingByBranch", start, err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		agents = append(agents, id)
	}
	err = rows.Err()
	observe("ListMarketingByBranch", start, err)
	if err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return agents, nil
}
