package loan

import (
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/domain/finance"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted            Status = "SUBMITTED"
	StatusMarketingReview      Status = "MARKETING_REVIEW"
	StatusMarketingRecommended Status = "MARKETING_RECOMMENDED"
	StatusMarketingRejected    Status = "MARKETING_REJECTED"
	StatusBMApproved           Status = "BM_APPROVED"
	StatusBMRejected           Status = "BM_REJECTED"
	StatusDisbursed            Status = "DISBURSED"
	StatusDisbursementDeclined Status = "DISBURSEMENT_DECLINED"
)

// OpenStatuses are the non-terminal statuses. A customer may hold at most one
// request in any of them.
var OpenStatuses = []Status{
	StatusSubmitted,
	StatusMarketingReview,
	StatusMarketingRecommended,
	StatusBMApproved,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusSubmitted, StatusMarketingReview, StatusMarketingRecommended, StatusMarketingRejected,
		StatusBMApproved, StatusBMRejected, StatusDisbursed, StatusDisbursementDeclined:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, s)
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusMarketingRejected, StatusBMRejected, StatusDisbursed, StatusDisbursementDeclined:
		return true
	}
	return false
}

// HistoryGroup selects finished requests for the customer history view.
type HistoryGroup string

const (
	HistoryApproved HistoryGroup = "APPROVED"
	HistoryRejected HistoryGroup = "REJECTED"
)

func (g HistoryGroup) Statuses() ([]Status, error) {
	switch HistoryGroup(strings.ToUpper(string(g))) {
	case HistoryApproved:
		return []Status{StatusDisbursed}, nil
	case HistoryRejected:
		return []Status{StatusMarketingRejected, StatusBMRejected, StatusDisbursementDeclined}, nil
	}
	return nil, fmt.Errorf("%w: unknown history group %q", apperrors.ErrInvalidInput, g)
}

type LoanRequest struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	MarketingID uuid.UUID
	BranchID    uuid.UUID
	PlafondID   uuid.UUID

	Amount       decimal.Decimal
	Tenor        int
	Status       Status
	InterestRate decimal.Decimal
	FeeRate      decimal.Decimal

	InterestAmount       decimal.Decimal
	FeesAmount           decimal.Decimal
	DisbursedAmount      decimal.Decimal
	TotalRepayment       decimal.Decimal
	EstimatedInstallment decimal.Decimal

	Latitude  float64
	Longitude float64
	Purpose   string

	RequestedAt          time.Time
	MarketingActedAt     *time.Time
	BranchManagerActedAt *time.Time
	DisbursementActedAt  *time.Time
	UpdatedAt            time.Time

	// Approvals is populated only by detail reads.
	Approvals []Approval
}

func (r *LoanRequest) applyBreakdown(b finance.Breakdown) {
	r.InterestAmount = b.InterestAmount
	r.FeesAmount = b.FeesAmount
	r.DisbursedAmount = b.DisbursedAmount
	r.TotalRepayment = b.TotalRepayment
	r.EstimatedInstallment = b.EstimatedInstallment
}

// Notes are the free-text fields a reviewer may attach to a decision.
type Notes struct {
	General  string
	Identity string
	Plafond  string
	Summary  string
}

// Approval is an append-only audit record, one per status change.
type Approval struct {
	ID            uuid.UUID
	LoanRequestID uuid.UUID
	HandledBy     uuid.UUID
	Status        Status
	Notes         Notes
	ApprovedAt    time.Time
}

func newApproval(requestID, handledBy uuid.UUID, status Status, notes Notes, at time.Time) *Approval {
	return &Approval{
		ID:            uuid.New(),
		LoanRequestID: requestID,
		HandledBy:     handledBy,
		Status:        status,
		Notes:         notes,
		ApprovedAt:    at,
	}
}

// StageNotes are the latest notes left at each review stage.
type StageNotes struct {
	Marketing     *Notes
	BranchManager *Notes
	BackOffice    *Notes
}

func (r *LoanRequest) StageNotes() StageNotes {
	var sn StageNotes
	for i := range r.Approvals {
		a := &r.Approvals[i]
		switch a.Status {
		case StatusMarketingRecommended, StatusMarketingRejected:
			sn.Marketing = &a.Notes
		case StatusBMApproved, StatusBMRejected:
			sn.BranchManager = &a.Notes
		case StatusDisbursed, StatusDisbursementDeclined:
			sn.BackOffice = &a.Notes
		}
	}
	return sn
}

// handledBy reports whether userID appears in the audit trail.
func (r *LoanRequest) handledBy(userID uuid.UUID) bool {
	for _, a := range r.Approvals {
		if a.HandledBy == userID {
			return true
		}
	}
	return false
}
