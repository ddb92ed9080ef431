package loan

import (
	"fmt"
	"time"

	"loan-origination/internal/domain/identity"
	"loan-origination/internal/pkg/apperrors"
)

// stage is one row of the transition table: who may act on a request in a
// given status and where they may move it.
type stage struct {
	role       identity.Role
	assignee   bool
	sameBranch bool
	targets    []Status
	stamp      func(r *LoanRequest, at time.Time)
}

var transitions = map[Status]stage{
	StatusMarketingReview: {
		role:     identity.RoleMarketing,
		assignee: true,
		targets:  []Status{StatusMarketingRecommended, StatusMarketingRejected},
		stamp:    func(r *LoanRequest, at time.Time) { r.MarketingActedAt = &at },
	},
	StatusMarketingRecommended: {
		role:       identity.RoleBranchManager,
		sameBranch: true,
		targets:    []Status{StatusBMApproved, StatusBMRejected},
		stamp:      func(r *LoanRequest, at time.Time) { r.BranchManagerActedAt = &at },
	},
	StatusBMApproved: {
		role:       identity.RoleBackOffice,
		sameBranch: true,
		targets:    []Status{StatusDisbursed, StatusDisbursementDeclined},
		stamp:      func(r *LoanRequest, at time.Time) { r.DisbursementActedAt = &at },
	},
}

// authorize returns the stage the actor may act on, or ErrForbidden.
func authorize(r *LoanRequest, actor identity.Actor) (stage, error) {
	st, ok := transitions[r.Status]
	if !ok {
		return stage{}, fmt.Errorf("%w: no action permitted on a request in status %s", apperrors.ErrForbidden, r.Status)
	}
	if actor.Role != st.role {
		return stage{}, fmt.Errorf("%w: status %s is handled by %s", apperrors.ErrForbidden, r.Status, st.role)
	}
	if st.assignee && actor.UserID != r.MarketingID {
		return stage{}, fmt.Errorf("%w: request is assigned to another marketing agent", apperrors.ErrForbidden)
	}
	if st.sameBranch && !actor.InBranch(r.BranchID) {
		return stage{}, fmt.Errorf("%w: request belongs to another branch", apperrors.ErrForbidden)
	}
	return st, nil
}

func (st stage) allows(target Status) bool {
	for _, t := range st.targets {
		if t == target {
			return true
		}
	}
	return false
}

// decide validates target against the stage and applies it to the request.
func (st stage) decide(r *LoanRequest, target Status, at time.Time) error {
	if !st.allows(target) {
		return fmt.Errorf("%w: cannot move from %s to %s", apperrors.ErrInvalidInput, r.Status, target)
	}
	r.Status = target
	st.stamp(r, at)
	r.UpdatedAt = at
	return nil
}
