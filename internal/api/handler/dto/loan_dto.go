package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/domain/finance"
	"loan-origination/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type PreviewRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Tenor  int             `json:"tenor"`
}

func (r *PreviewRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	if !finance.HasMoneyScale(r.Amount) {
		return fmt.Errorf("amount must have at most two decimal places")
	}
	if r.Tenor <= 0 {
		return fmt.Errorf("tenor must be positive")
	}
	return nil
}

type SimulateWebRequest struct {
	PlafondName string          `json:"plafondName"`
	Amount      decimal.Decimal `json:"amount"`
	Tenor       int             `json:"tenor"`
}

func (r *SimulateWebRequest) Validate() error {
	if strings.TrimSpace(r.PlafondName) == "" {
		return fmt.Errorf("plafondName cannot be empty")
	}
	p := PreviewRequest{Amount: r.Amount, Tenor: r.Tenor}
	return p.Validate()
}

type CreateLoanRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Tenor     int             `json:"tenor"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Purpose   string          `json:"purpose"`
}

func (r *CreateLoanRequest) Validate() error {
	if !finance.HasMoneyScale(r.Amount) {
		return fmt.Errorf("amount must have at most two decimal places")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

func (r *CreateLoanRequest) ToInput() loan.CreateInput {
	return loan.CreateInput{
		Amount:    r.Amount,
		Tenor:     r.Tenor,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Purpose:   strings.TrimSpace(r.Purpose),
	}
}

// ReviewRequest is the body of every reviewer decision.
type ReviewRequest struct {
	Status        string `json:"status"`
	Notes         string `json:"notes"`
	IdentityNotes string `json:"notesIdentity"`
	PlafondNotes  string `json:"notesPlafond"`
	SummaryNotes  string `json:"notesSummary"`
}

func (r *ReviewRequest) ToInput() (loan.TransitionInput, error) {
	target, err := loan.ParseStatus(r.Status)
	if err != nil {
		return loan.TransitionInput{}, err
	}
	return loan.TransitionInput{
		Target: target,
		Notes: loan.Notes{
			General:  r.Notes,
			Identity: r.IdentityNotes,
			Plafond:  r.PlafondNotes,
			Summary:  r.SummaryNotes,
		},
	}, nil
}

// money renders d at the stored scale without trailing zeros: "10000000", "5000.5".
func money(d decimal.Decimal) string {
	return finance.RoundMoney(d).String()
}

type PreviewResponse struct {
	PlafondName          string `json:"plafondName"`
	Amount               string `json:"amount"`
	Tenor                int    `json:"tenor"`
	InterestRate         string `json:"interestRate"`
	FeeRate              string `json:"feeRate"`
	InterestAmount       string `json:"interestAmount"`
	FeesAmount           string `json:"feesAmount"`
	DisbursedAmount      string `json:"disbursedAmount"`
	TotalRepayment       string `json:"totalRepayment"`
	EstimatedInstallment string `json:"estimatedInstallment"`
}

func NewPreviewResponse(p *loan.Preview) PreviewResponse {
	return PreviewResponse{
		PlafondName:          p.PlafondName,
		Amount:               money(p.Amount),
		Tenor:                p.Tenor,
		InterestRate:         p.InterestRate.String(),
		FeeRate:              p.FeeRate.String(),
		InterestAmount:       money(p.InterestAmount),
		FeesAmount:           money(p.FeesAmount),
		DisbursedAmount:      money(p.DisbursedAmount),
		TotalRepayment:       money(p.TotalRepayment),
		EstimatedInstallment: money(p.EstimatedInstallment),
	}
}

type NotesResponse struct {
	Notes         string `json:"notes,omitempty"`
	IdentityNotes string `json:"notesIdentity,omitempty"`
	PlafondNotes  string `json:"notesPlafond,omitempty"`
	SummaryNotes  string `json:"notesSummary,omitempty"`
}

func newNotesResponse(n *loan.Notes) *NotesResponse {
	if n == nil {
		return nil
	}
	return &NotesResponse{
		Notes:         n.General,
		IdentityNotes: n.Identity,
		PlafondNotes:  n.Plafond,
		SummaryNotes:  n.Summary,
	}
}

type ApprovalResponse struct {
	ID         string        `json:"id"`
	HandledBy  string        `json:"handledBy"`
	Status     string        `json:"status"`
	Notes      NotesResponse `json:"notes"`
	ApprovedAt time.Time     `json:"approvedAt"`
}

type LoanRequestResponse struct {
	ID                   string     `json:"id"`
	CustomerID           string     `json:"customerId"`
	MarketingID          string     `json:"marketingId"`
	BranchID             string     `json:"branchId"`
	PlafondID            string     `json:"plafondId"`
	Amount               string     `json:"amount"`
	Tenor                int        `json:"tenor"`
	Status               string     `json:"status"`
	InterestRate         string     `json:"interestRate"`
	FeeRate              string     `json:"feeRate"`
	InterestAmount       string     `json:"interestAmount"`
	FeesAmount           string     `json:"feesAmount"`
	DisbursedAmount      string     `json:"disbursedAmount"`
	TotalRepayment       string     `json:"totalRepayment"`
	EstimatedInstallment string     `json:"estimatedInstallment"`
	Latitude             float64    `json:"latitude"`
	Longitude            float64    `json:"longitude"`
	Purpose              string     `json:"purpose,omitempty"`
	RequestedAt          time.Time  `json:"requestedAt"`
	MarketingActedAt     *time.Time `json:"marketingActedAt,omitempty"`
	BranchManagerActedAt *time.Time `json:"branchManagerActedAt,omitempty"`
	DisbursementActedAt  *time.Time `json:"disbursementActedAt,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	MarketingNotes     *NotesResponse     `json:"marketingNotes,omitempty"`
	BranchManagerNotes *NotesResponse     `json:"branchManagerNotes,omitempty"`
	BackOfficeNotes    *NotesResponse     `json:"backOfficeNotes,omitempty"`
	Approvals          []ApprovalResponse `json:"approvals,omitempty"`
}

// NewLoanRequestResponse renders r. The audit trail and per-stage notes are
// included only when includeTrail is set and r carries approvals.
func NewLoanRequestResponse(r *loan.LoanRequest, includeTrail bool) LoanRequestResponse {
	resp := LoanRequestResponse{
		ID:                   r.ID.String(),
		CustomerID:           r.CustomerID.String(),
		MarketingID:          r.MarketingID.String(),
		BranchID:             r.BranchID.String(),
		PlafondID:            r.PlafondID.String(),
		Amount:               money(r.Amount),
		Tenor:                r.Tenor,
		Status:               string(r.Status),
		InterestRate:         r.InterestRate.String(),
		FeeRate:              r.FeeRate.String(),
		InterestAmount:       money(r.InterestAmount),
		FeesAmount:           money(r.FeesAmount),
		DisbursedAmount:      money(r.DisbursedAmount),
		TotalRepayment:       money(r.TotalRepayment),
		EstimatedInstallment: money(r.EstimatedInstallment),
		Latitude:             r.Latitude,
		Longitude:            r.Longitude,
		Purpose:              r.Purpose,
		RequestedAt:          r.RequestedAt,
		MarketingActedAt:     r.MarketingActedAt,
		BranchManagerActedAt: r.BranchManagerActedAt,
		DisbursementActedAt:  r.DisbursementActedAt,
		UpdatedAt:            r.UpdatedAt,
	}

	if !includeTrail || len(r.Approvals) == 0 {
		return resp
	}

	stage := r.StageNotes()
	resp.MarketingNotes = newNotesResponse(stage.Marketing)
	resp.BranchManagerNotes = newNotesResponse(stage.BranchManager)
	resp.BackOfficeNotes = newNotesResponse(stage.BackOffice)

	resp.Approvals = make([]ApprovalResponse, len(r.Approvals))
	for i := range r.Approvals {
		a := &r.Approvals[i]
		resp.Approvals[i] = ApprovalResponse{
			ID:         a.ID.String(),
			HandledBy:  a.HandledBy.String(),
			Status:     string(a.Status),
			Notes:      *newNotesResponse(&a.Notes),
			ApprovedAt: a.ApprovedAt,
		}
	}
	return resp
}

func NewLoanRequestList(requests []loan.LoanRequest) []LoanRequestResponse {
	out := make([]LoanRequestResponse, len(requests))
	for i := range requests {
		out[i] = NewLoanRequestResponse(&requests[i], false)
	}
	return out
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// TokenRequest asks the development issuer for a token carrying these claims.
type TokenRequest struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	BranchID string `json:"branchId,omitempty"`
}
