package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/assignment"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/finance"
	"loan-origination/internal/domain/identity"
	"loan-origination/internal/domain/plafond"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const DefaultPublicPlafond = "Bronze"

type RateResolver interface {
	Eligible(ctx context.Context, c *customer.Customer, amount decimal.Decimal, tenor int) (*plafond.Quote, error)
	QuoteByName(ctx context.Context, name string, amount decimal.Decimal, tenor int) (*plafond.Quote, error)
}

type AgentAssigner interface {
	Assign(ctx context.Context, branchID uuid.UUID) (uuid.UUID, error)
}

type BranchFinder interface {
	Nearest(ctx context.Context, lat, lon float64) (*assignment.Branch, error)
}

type Preview struct {
	PlafondName  string
	Amount       decimal.Decimal
	Tenor        int
	InterestRate decimal.Decimal
	FeeRate      decimal.Decimal
	finance.Breakdown
}

type CreateInput struct {
	Amount    decimal.Decimal
	Tenor     int
	Latitude  float64
	Longitude float64
	Purpose   string
}

type TransitionInput struct {
	Target Status
	Notes  Notes
}

type Service interface {
	Preview(ctx context.Context, actor identity.Actor, amount decimal.Decimal, tenor int) (*Preview, error)

	SimulateForPlafond(ctx context.Context, plafondName string, amount decimal.Decimal, tenor int) (*Preview, error)

	SimulatePublic(ctx context.Context, amount decimal.Decimal, tenor int) (*Preview, error)

	Create(ctx context.Context, actor identity.Actor, in CreateInput) (*LoanRequest, error)

	GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*LoanRequest, error)

	// Transition moves a request along the workflow according to the transition table.
	Transition(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error)

	Review(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error)

	ReviewByBranchManager(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error)

	Disburse(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error)

	ListForMarketing(ctx context.Context, actor identity.Actor) ([]LoanRequest, error)

	ListForBranchManager(ctx context.Context, actor identity.Actor) ([]LoanRequest, error)

	ListForBackOffice(ctx context.Context, actor identity.Actor) ([]LoanRequest, error)

	ListInProgress(ctx context.Context, actor identity.Actor) ([]LoanRequest, error)

	History(ctx context.Context, actor identity.Actor, group HistoryGroup) ([]LoanRequest, error)
}

type Dependencies struct {
	Repo          Repository
	Customers     customer.Repository
	Resolver      RateResolver
	Balancer      AgentAssigner
	Branches      BranchFinder
	Disbursement  *DisbursementProcessor
	Notifier      Notifier
	PublicPlafond string
}

type loanServiceImpl struct {
	repo          Repository
	customers     customer.Repository
	resolver      RateResolver
	balancer      AgentAssigner
	branches      BranchFinder
	disbursement  *DisbursementProcessor
	dispatch      dispatcher
	publicPlafond string
	now           func() time.Time
	logger        *slog.Logger
}

func NewLoanService(deps Dependencies, logger *slog.Logger) Service {
	if deps.Repo == nil || deps.Customers == nil || deps.Resolver == nil || deps.Balancer == nil ||
		deps.Branches == nil || deps.Disbursement == nil {
		panic("loan service dependencies cannot be nil")
	}
	if deps.PublicPlafond == "" {
		deps.PublicPlafond = DefaultPublicPlafond
	}
	l := logger.With(slog.String("component", "LoanService"))
	return &loanServiceImpl{
		repo:          deps.Repo,
		customers:     deps.Customers,
		resolver:      deps.Resolver,
		balancer:      deps.Balancer,
		branches:      deps.Branches,
		disbursement:  deps.Disbursement,
		dispatch:      dispatcher{notifier: deps.Notifier, logger: l},
		publicPlafond: deps.PublicPlafond,
		now:           time.Now,
		logger:        l,
	}
}

func validateTerms(amount decimal.Decimal, tenor int) error {
	if tenor < 1 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidTenor, tenor)
	}
	if !amount.IsPositive() {
		return apperrors.NewValidationError("amount", "must be greater than zero")
	}
	if !finance.HasMoneyScale(amount) {
		return apperrors.NewValidationError("amount", "must have at most two decimal places")
	}
	return nil
}

func buildPreview(q *plafond.Quote, amount decimal.Decimal, tenor int) (*Preview, error) {
	b, err := finance.ComputePreview(amount, tenor, q.InterestRate, q.Plafond.FeeRate)
	if err != nil {
		return nil, err
	}
	return &Preview{
		PlafondName:  q.Plafond.Name,
		Amount:       amount,
		Tenor:        tenor,
		InterestRate: q.InterestRate,
		FeeRate:      q.Plafond.FeeRate,
		Breakdown:    b,
	}, nil
}

func (s *loanServiceImpl) customerOf(ctx context.Context, actor identity.Actor) (*customer.Customer, error) {
	if !actor.Is(identity.RoleCustomer) {
		return nil, fmt.Errorf("%w: only customers may use this operation", apperrors.ErrForbidden)
	}
	cust, err := s.customers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return cust, nil
}

func (s *loanServiceImpl) Preview(ctx context.Context, actor identity.Actor, amount decimal.Decimal, tenor int) (*Preview, error) {
	if err := validateTerms(amount, tenor); err != nil {
		return nil, err
	}
	cust, err := s.customerOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	q, err := s.resolver.Eligible(ctx, cust, amount, tenor)
	if err != nil {
		return nil, err
	}
	return buildPreview(q, amount, tenor)
}

func (s *loanServiceImpl) SimulateForPlafond(ctx context.Context, plafondName string, amount decimal.Decimal, tenor int) (*Preview, error) {
	if err := validateTerms(amount, tenor); err != nil {
		return nil, err
	}
	if plafondName == "" {
		return nil, apperrors.NewValidationError("plafond", "must not be empty")
	}
	q, err := s.resolver.QuoteByName(ctx, plafondName, amount, tenor)
	if err != nil {
		return nil, err
	}
	return buildPreview(q, amount, tenor)
}

func (s *loanServiceImpl) SimulatePublic(ctx context.Context, amount decimal.Decimal, tenor int) (*Preview, error) {
	return s.SimulateForPlafond(ctx, s.publicPlafond, amount, tenor)
}

func (s *loanServiceImpl) Create(ctx context.Context, actor identity.Actor, in CreateInput) (*LoanRequest, error) {
	if err := validateTerms(in.Amount, in.Tenor); err != nil {
		return nil, err
	}
	cust, err := s.customerOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With(slog.String("customerID", cust.ID.String()))

	if err := cust.CheckProfileComplete(); err != nil {
		logger.InfoContext(ctx, "Loan request rejected: incomplete profile", slog.Any("error", err))
		return nil, err
	}

	quote, err := s.resolver.Eligible(ctx, cust, in.Amount, in.Tenor)
	if err != nil {
		return nil, err
	}
	breakdown, err := finance.ComputePreview(in.Amount, in.Tenor, quote.InterestRate, quote.Plafond.FeeRate)
	if err != nil {
		return nil, err
	}

	branch, err := s.branches.Nearest(ctx, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	marketingID, err := s.balancer.Assign(ctx, branch.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &LoanRequest{
		ID:           uuid.New(),
		CustomerID:   cust.ID,
		MarketingID:  marketingID,
		BranchID:     branch.ID,
		PlafondID:    quote.Plafond.ID,
		Amount:       in.Amount,
		Tenor:        in.Tenor,
		Status:       StatusMarketingReview,
		InterestRate: quote.InterestRate,
		FeeRate:      quote.Plafond.FeeRate,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Purpose:      in.Purpose,
		RequestedAt:  now,
		UpdatedAt:    now,
	}
	req.applyBreakdown(breakdown)
	submitted := newApproval(req.ID, actor.UserID, StatusSubmitted, Notes{General: in.Purpose}, now)

	err = s.withinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.customers.FindByIDForUpdate(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		if !locked.HasLimitFor(in.Amount) {
			return fmt.Errorf("%w: remaining %s, requested %s",
				apperrors.ErrInsufficientLimit, locked.RemainingLimit.String(), in.Amount.String())
		}
		open, err := s.repo.ExistsOpenByCustomerInTx(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		if open {
			return apperrors.ErrDuplicateOpenRequest
		}
		return s.repo.CreateInTx(ctx, tx, req, submitted)
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to create loan request", slog.Any("error", err))
		return nil, err
	}

	req.Approvals = []Approval{*submitted}
	monitoring.RecordTransition("", string(req.Status))
	logger.InfoContext(ctx, "Loan request created",
		slog.String("loanRequestID", req.ID.String()),
		slog.String("branchID", req.BranchID.String()),
		slog.String("marketingID", req.MarketingID.String()))
	return req, nil
}

func (s *loanServiceImpl) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*LoanRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	approvals, err := s.repo.ListApprovals(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Approvals = approvals

	if err := s.canView(ctx, actor, req); err != nil {
		s.logger.InfoContext(ctx, "Read access denied",
			slog.String("loanRequestID", id.String()),
			slog.String("userID", actor.UserID.String()),
			slog.String("role", string(actor.Role)))
		return nil, err
	}
	return req, nil
}

// canView lets through the owning customer, whoever may act on the current
// status, and anyone already in the audit trail.
func (s *loanServiceImpl) canView(ctx context.Context, actor identity.Actor, req *LoanRequest) error {
	if actor.Is(identity.RoleCustomer) {
		cust, err := s.customers.FindByUserID(ctx, actor.UserID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if cust != nil && cust.ID == req.CustomerID {
			return nil
		}
		return fmt.Errorf("%w: loan request belongs to another customer", apperrors.ErrForbidden)
	}
	if _, err := authorize(req, actor); err == nil {
		return nil
	}
	if req.handledBy(actor.UserID) {
		return nil
	}
	return fmt.Errorf("%w: no access to loan request in status %s", apperrors.ErrForbidden, req.Status)
}

func (s *loanServiceImpl) Transition(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error) {
	return s.transition(ctx, actor, id, in, "")
}

func (s *loanServiceImpl) Review(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error) {
	return s.transition(ctx, actor, id, in, StatusMarketingReview)
}

func (s *loanServiceImpl) ReviewByBranchManager(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error) {
	return s.transition(ctx, actor, id, in, StatusMarketingRecommended)
}

func (s *loanServiceImpl) Disburse(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput) (*LoanRequest, error) {
	return s.transition(ctx, actor, id, in, StatusBMApproved)
}

// transition runs one workflow step under a row lock. The status change and
// its audit record commit together; notifications go out only after commit.
// expect pins the status an operation is meant for; empty accepts any.
func (s *loanServiceImpl) transition(ctx context.Context, actor identity.Actor, id uuid.UUID, in TransitionInput, expect Status) (*LoanRequest, error) {
	logger := s.logger.With(
		slog.String("loanRequestID", id.String()),
		slog.String("userID", actor.UserID.String()),
		slog.String("target", string(in.Target)))

	var (
		req  *LoanRequest
		from Status
		cust *customer.Customer
	)
	err := s.withinTx(ctx, func(tx pgx.Tx) error {
		var err error
		req, err = s.repo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		from = req.Status

		if expect != "" && from != expect {
			if expect == StatusBMApproved {
				return fmt.Errorf("%w: loan request is %s, expected %s", apperrors.ErrNotReady, from, expect)
			}
			return fmt.Errorf("%w: loan request is %s, expected %s", apperrors.ErrForbidden, from, expect)
		}

		st, err := authorize(req, actor)
		if err != nil {
			return err
		}
		now := s.now()
		if err := st.decide(req, in.Target, now); err != nil {
			return err
		}

		if from == StatusBMApproved {
			if err := s.disbursement.Recompute(req); err != nil {
				return err
			}
			if req.Status == StatusDisbursed {
				if cust, _, err = s.disbursement.Disburse(ctx, tx, req, now); err != nil {
					return err
				}
			}
		}

		if err := s.repo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}
		return s.repo.InsertApprovalInTx(ctx, tx, newApproval(req.ID, actor.UserID, req.Status, in.Notes, now))
	})
	if err != nil {
		logger.WarnContext(ctx, "Transition rejected", slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordTransition(string(from), string(req.Status))
	if req.Status == StatusDisbursed {
		monitoring.RecordDisbursement(req.Amount.InexactFloat64())
	}
	logger.InfoContext(ctx, "Loan request transitioned", slog.String("from", string(from)), slog.String("to", string(req.Status)))

	s.afterTransition(ctx, req, cust)
	return req, nil
}

func (s *loanServiceImpl) afterTransition(ctx context.Context, req *LoanRequest, cust *customer.Customer) {
	switch req.Status {
	case StatusBMApproved, StatusDisbursed, StatusDisbursementDeclined:
	default:
		return
	}

	if cust == nil {
		var err error
		if cust, err = s.customers.FindByID(ctx, req.CustomerID); err != nil {
			s.logger.WarnContext(ctx, "Skipping notifications: customer lookup failed",
				slog.String("loanRequestID", req.ID.String()), slog.Any("error", err))
			return
		}
	}

	amount := finance.RoundMoney(req.Amount).String()
	switch req.Status {
	case StatusBMApproved:
		s.dispatch.notify(ctx, cust.UserID, "Loan Request Approved",
			fmt.Sprintf("Your loan request of %s has been approved by the branch manager and is waiting for disbursement.", amount))
	case StatusDisbursed:
		s.dispatch.notify(ctx, cust.UserID, "Loan Disbursed",
			fmt.Sprintf("Your loan of %s has been disbursed. %s will be transferred to your account.", amount, finance.RoundMoney(req.DisbursedAmount).String()))
		s.dispatch.email(ctx, cust.Email, TemplateDisbursed, map[string]string{
			"name":            cust.Name,
			"amount":          amount,
			"disbursedAmount": finance.RoundMoney(req.DisbursedAmount).String(),
			"tenor":           fmt.Sprintf("%d", req.Tenor),
			"installment":     finance.RoundMoney(req.EstimatedInstallment).String(),
		})
	case StatusDisbursementDeclined:
		s.dispatch.notify(ctx, cust.UserID, "Loan Disbursement Failed",
			fmt.Sprintf("Your loan request of %s could not be disbursed.", amount))
		s.dispatch.email(ctx, cust.Email, TemplateDisbursementFailed, map[string]string{
			"name":   cust.Name,
			"amount": amount,
		})
	}
}

func (s *loanServiceImpl) ListForMarketing(ctx context.Context, actor identity.Actor) ([]LoanRequest, error) {
	if !actor.Is(identity.RoleMarketing) {
		return nil, fmt.Errorf("%w: marketing queue requires the marketing role", apperrors.ErrForbidden)
	}
	return s.repo.ListByMarketingAndStatus(ctx, actor.UserID, StatusMarketingReview)
}

func (s *loanServiceImpl) ListForBranchManager(ctx context.Context, actor identity.Actor) ([]LoanRequest, error) {
	if !actor.Is(identity.RoleBranchManager) || actor.BranchID == uuid.Nil {
		return nil, fmt.Errorf("%w: branch manager queue requires a branch manager of a branch", apperrors.ErrForbidden)
	}
	return s.repo.ListByBranchAndStatus(ctx, actor.BranchID, StatusMarketingRecommended)
}

func (s *loanServiceImpl) ListForBackOffice(ctx context.Context, actor identity.Actor) ([]LoanRequest, error) {
	if !actor.Is(identity.RoleBackOffice) || actor.BranchID == uuid.Nil {
		return nil, fmt.Errorf("%w: back office queue requires a back office user of a branch", apperrors.ErrForbidden)
	}
	return s.repo.ListByBranchAndStatus(ctx, actor.BranchID, StatusBMApproved)
}

func (s *loanServiceImpl) ListInProgress(ctx context.Context, actor identity.Actor) ([]LoanRequest, error) {
	cust, err := s.customerOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomerAndStatuses(ctx, cust.ID, OpenStatuses)
}

func (s *loanServiceImpl) History(ctx context.Context, actor identity.Actor, group HistoryGroup) ([]LoanRequest, error) {
	statuses, err := group.Statuses()
	if err != nil {
		return nil, err
	}
	cust, err := s.customerOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomerAndStatuses(ctx, cust.ID, statuses)
}

// withinTx runs fn in one database transaction, rolling back on error or panic.
func (s *loanServiceImpl) withinTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrDatabase, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := s.repo.RollbackTx(ctx, tx); rbErr != nil {
				s.logger.ErrorContext(ctx, "Rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrDatabase, err)
	}
	return nil
}
