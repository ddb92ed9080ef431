package postgres

import (
	"context"
	"regexp"
	"testing"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPlafondByName(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPlafondRepository(mockPool, logger)
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlPlafondByName)).
		WithArgs("bronze").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "max_amount", "max_tenor", "fee_rate"}).
			AddRow(id, "Bronze", decimal.NewFromInt(20_000_000), 24, decimal.RequireFromString("0.01")))

	p, err := repo.FindByName(context.Background(), "bronze")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, 24, p.MaxTenor)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindPlafondRate(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewPlafondRepository(mockPool, logger)
	plafondID := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlPlafondRate)).
		WithArgs(plafondID, 12).
		WillReturnRows(pgxmock.NewRows([]string{"plafond_id", "tenor", "interest_rate"}).
			AddRow(plafondID, 12, decimal.RequireFromString("0.02")))
	mockPool.ExpectQuery(regexp.QuoteMeta(sqlPlafondRate)).
		WithArgs(plafondID, 36).
		WillReturnError(pgx.ErrNoRows)

	rate, err := repo.FindRate(context.Background(), plafondID, 12)
	require.NoError(t, err)
	assert.True(t, rate.InterestRate.Equal(decimal.RequireFromString("0.02")))

	_, err = repo.FindRate(context.Background(), plafondID, 36)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestListMarketingByBranchKeepsOrder(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewBranchRepository(mockPool, logger)
	branchID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlMarketingByBranch)).
		WithArgs(branchID, "MARKETING").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a).AddRow(b).AddRow(c))

	agents, err := repo.ListMarketingByBranch(context.Background(), branchID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b, c}, agents)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestListBranchesWithMarketing(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewBranchRepository(mockPool, logger)
	jakarta, bandung := uuid.New(), uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(sqlBranchesWithMarketing)).
		WithArgs("MARKETING").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "latitude", "longitude"}).
			AddRow(bandung, "Bandung", -6.9175, 107.6191).
			AddRow(jakarta, "Jakarta", -6.2088, 106.8456))

	branches, err := repo.ListWithMarketing(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "Jakarta", branches[1].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
