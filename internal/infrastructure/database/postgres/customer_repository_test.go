package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerColumnNames = []string{
	"id", "user_id", "name", "email", "plafond_id", "remaining_limit",
	"nik", "address", "phone", "mother_maiden_name", "occupation", "salary",
	"bank_account_number", "house_status", "id_card_url", "selfie_url", "updated_at",
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool := newMockPool(t)
	return context.Background(), NewCustomerRepository(mockPool, logger), mockPool
}

func TestFindCustomerByUserIDReturnsCompleteProfile(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	id, userID, plafondID := uuid.New(), uuid.New(), uuid.New()
	updated := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlCustomerByUserID)).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(customerColumnNames).AddRow(
			id, userID, "Sari Dewi", "sari@example.com", plafondID, decimal.NewFromInt(15_000_000),
			text("3174000101010001"), text("Jl. Merdeka 1"), text("08123456789"), text("Wati"), text("Nurse"),
			decimal.NullDecimal{Decimal: decimal.NewFromInt(8_000_000), Valid: true},
			text("1234567890"), text("OWNED"), text("https://files.example/ktp.jpg"), text("https://files.example/selfie.jpg"), updated,
		))

	c, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "sari@example.com", c.Email)
	assert.True(t, c.RemainingLimit.Equal(decimal.NewFromInt(15_000_000)))
	assert.True(t, c.Salary.Equal(decimal.NewFromInt(8_000_000)))
	assert.NoError(t, c.CheckProfileComplete())
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDWithEmptyProfile(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlCustomerByID)).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(customerColumnNames).AddRow(
			id, uuid.New(), "New Customer", "new@example.com", uuid.New(), decimal.NewFromInt(5_000_000),
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, time.Now(),
		))

	c, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, c.NIK)
	assert.True(t, c.Salary.IsZero())

	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, c.CheckProfileComplete(), &vErr)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerWhenMissing(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	userID := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlCustomerByUserID)).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateRemainingLimitInTx(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	c := &customer.Customer{ID: uuid.New(), RemainingLimit: decimal.NewFromInt(5_000_000), UpdatedAt: time.Now()}

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(sqlUpdateRemainingLimit)).
		WithArgs(c.RemainingLimit, c.UpdatedAt, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectExec(regexp.QuoteMeta(sqlUpdateRemainingLimit)).
		WithArgs(c.RemainingLimit, c.UpdatedAt, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mockPool.Begin(ctx)
	require.NoError(t, err)
	assert.NoError(t, repo.UpdateRemainingLimitInTx(ctx, tx, c))
	assert.ErrorIs(t, repo.UpdateRemainingLimitInTx(ctx, tx, c), apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
