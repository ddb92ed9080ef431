package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/identity"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) result(args mock.Arguments) (*customer.Customer, error) {
	var r0 *customer.Customer
	if v := args.Get(0); v != nil {
		r0 = v.(*customer.Customer)
	}
	return r0, args.Error(1)
}

func (_m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return _m.result(_m.Called(ctx, id))
}

func (_m *MockRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	return _m.result(_m.Called(ctx, userID))
}

func (_m *MockRepository) FindByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*customer.Customer, error) {
	return _m.result(_m.Called(ctx, tx, userID))
}

func (_m *MockRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*customer.Customer, error) {
	return _m.result(_m.Called(ctx, tx, id))
}

func (_m *MockRepository) UpdateRemainingLimitInTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	return _m.Called(ctx, tx, c).Error(0)
}

func setupTest() (*MockRepository, customer.CustomerService) {
	repo := new(MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, customer.NewCustomerService(repo, logger)
}

func TestCustomerService_GetProfile(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	actor := identity.Actor{UserID: userID, Role: identity.RoleCustomer}

	t.Run("Complete profile", func(t *testing.T) {
		repo, svc := setupTest()
		c := completeCustomer()
		repo.On("FindByUserID", ctx, userID).Return(c, nil).Once()

		p, err := svc.GetProfile(ctx, actor)

		require.NoError(t, err)
		assert.True(t, p.Complete)
		assert.Empty(t, p.MissingField)
		assert.Equal(t, "Sari Dewi", p.Name)
		repo.AssertExpectations(t)
	})

	t.Run("Incomplete profile names the missing field", func(t *testing.T) {
		repo, svc := setupTest()
		c := completeCustomer()
		c.Phone = ""
		repo.On("FindByUserID", ctx, userID).Return(c, nil).Once()

		p, err := svc.GetProfile(ctx, actor)

		require.NoError(t, err)
		assert.False(t, p.Complete)
		assert.Equal(t, "phone", p.MissingField)
	})

	t.Run("Non-customer is forbidden", func(t *testing.T) {
		repo, svc := setupTest()

		_, err := svc.GetProfile(ctx, identity.Actor{UserID: userID, Role: identity.RoleMarketing})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, svc := setupTest()
		repo.On("FindByUserID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

		_, err := svc.GetProfile(ctx, actor)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Repository failure", func(t *testing.T) {
		repo, svc := setupTest()
		dbErr := errors.New("connection refused")
		repo.On("FindByUserID", ctx, userID).Return(nil, dbErr).Once()

		_, err := svc.GetProfile(ctx, actor)

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestNewCustomerService_PanicsOnNilRepository(t *testing.T) {
	assert.Panics(t, func() { customer.NewCustomerService(nil, slog.Default()) })
}
