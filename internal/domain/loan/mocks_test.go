package loan

import (
	"context"
	"log/slog"
	"os"
	"time"

	"loan-origination/internal/domain/assignment"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/plafond"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// fakeTx stands in for a live transaction; repositories are mocked so it is never used.
type fakeTx struct {
	pgx.Tx
}

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateInTx(ctx context.Context, tx pgx.Tx, req *LoanRequest, first *Approval) error {
	return _m.Called(ctx, tx, req, first).Error(0)
}

func (_m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*LoanRequest, error) {
	ret := _m.Called(ctx, id)
	var r0 *LoanRequest
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*LoanRequest, error) {
	ret := _m.Called(ctx, tx, id)
	var r0 *LoanRequest
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListApprovals(ctx context.Context, requestID uuid.UUID) ([]Approval, error) {
	ret := _m.Called(ctx, requestID)
	var r0 []Approval
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Approval)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, req *LoanRequest) error {
	return _m.Called(ctx, tx, req).Error(0)
}

func (_m *MockRepository) InsertApprovalInTx(ctx context.Context, tx pgx.Tx, a *Approval) error {
	return _m.Called(ctx, tx, a).Error(0)
}

func (_m *MockRepository) ExistsOpenByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, tx, customerID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockRepository) CountOpenByMarketing(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]int, error) {
	ret := _m.Called(ctx, branchID)
	var r0 map[uuid.UUID]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[uuid.UUID]int)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) listResult(ret mock.Arguments) ([]LoanRequest, error) {
	var r0 []LoanRequest
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]LoanRequest)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListByMarketingAndStatus(ctx context.Context, marketingID uuid.UUID, status Status) ([]LoanRequest, error) {
	return _m.listResult(_m.Called(ctx, marketingID, status))
}

func (_m *MockRepository) ListByBranchAndStatus(ctx context.Context, branchID uuid.UUID, status Status) ([]LoanRequest, error) {
	return _m.listResult(_m.Called(ctx, branchID, status))
}

func (_m *MockRepository) ListByCustomerAndStatuses(ctx context.Context, customerID uuid.UUID, statuses []Status) ([]LoanRequest, error) {
	return _m.listResult(_m.Called(ctx, customerID, statuses))
}

func (_m *MockRepository) ListStale(ctx context.Context, status Status, cutoff time.Time) ([]LoanRequest, error) {
	return _m.listResult(_m.Called(ctx, status, cutoff))
}

func (_m *MockRepository) CreateScheduleInTx(ctx context.Context, tx pgx.Tx, entries []ScheduleEntry) error {
	return _m.Called(ctx, tx, entries).Error(0)
}

func (_m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	ret := _m.Called(ctx)
	var r0 pgx.Tx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(pgx.Tx)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return _m.Called(ctx, tx).Error(0)
}

func (_m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return _m.Called(ctx, tx).Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (_m *MockCustomerRepository) customerResult(ret mock.Arguments) (*customer.Customer, error) {
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return _m.customerResult(_m.Called(ctx, id))
}

func (_m *MockCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	return _m.customerResult(_m.Called(ctx, userID))
}

func (_m *MockCustomerRepository) FindByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*customer.Customer, error) {
	return _m.customerResult(_m.Called(ctx, tx, userID))
}

func (_m *MockCustomerRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*customer.Customer, error) {
	return _m.customerResult(_m.Called(ctx, tx, id))
}

func (_m *MockCustomerRepository) UpdateRemainingLimitInTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	return _m.Called(ctx, tx, c).Error(0)
}

type MockResolver struct {
	mock.Mock
}

func (_m *MockResolver) quoteResult(ret mock.Arguments) (*plafond.Quote, error) {
	var r0 *plafond.Quote
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*plafond.Quote)
	}
	return r0, ret.Error(1)
}

func (_m *MockResolver) Eligible(ctx context.Context, c *customer.Customer, amount decimal.Decimal, tenor int) (*plafond.Quote, error) {
	return _m.quoteResult(_m.Called(ctx, c, amount, tenor))
}

func (_m *MockResolver) QuoteByName(ctx context.Context, name string, amount decimal.Decimal, tenor int) (*plafond.Quote, error) {
	return _m.quoteResult(_m.Called(ctx, name, amount, tenor))
}

type MockAssigner struct {
	mock.Mock
}

func (_m *MockAssigner) Assign(ctx context.Context, branchID uuid.UUID) (uuid.UUID, error) {
	ret := _m.Called(ctx, branchID)
	return ret.Get(0).(uuid.UUID), ret.Error(1)
}

type MockBranchFinder struct {
	mock.Mock
}

func (_m *MockBranchFinder) Nearest(ctx context.Context, lat, lon float64) (*assignment.Branch, error) {
	ret := _m.Called(ctx, lat, lon)
	var r0 *assignment.Branch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*assignment.Branch)
	}
	return r0, ret.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (_m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, title, body string) error {
	return _m.Called(ctx, userID, title, body).Error(0)
}

func (_m *MockNotifier) Email(ctx context.Context, address, template string, params map[string]string) error {
	return _m.Called(ctx, address, template, params).Error(0)
}
