package assignment

import (
	"context"
	"testing"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBranchRepository struct {
	mock.Mock
}

func (_m *MockBranchRepository) ListWithMarketing(ctx context.Context) ([]Branch, error) {
	ret := _m.Called(ctx)
	var r0 []Branch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Branch)
	}
	return r0, ret.Error(1)
}

func TestBranchLocator_Nearest(t *testing.T) {
	ctx := context.Background()
	jakarta := Branch{ID: uuid.New(), Name: "Jakarta", Latitude: -6.2088, Longitude: 106.8456}
	bandung := Branch{ID: uuid.New(), Name: "Bandung", Latitude: -6.9175, Longitude: 107.6191}
	surabaya := Branch{ID: uuid.New(), Name: "Surabaya", Latitude: -7.2575, Longitude: 112.7521}

	repo := new(MockBranchRepository)
	repo.On("ListWithMarketing", ctx).Return([]Branch{jakarta, bandung, surabaya}, nil)
	locator := NewBranchLocator(repo, logger)

	t.Run("Bogor is served by Jakarta", func(t *testing.T) {
		got, err := locator.Nearest(ctx, -6.5971, 106.8060)
		require.NoError(t, err)
		assert.Equal(t, jakarta.ID, got.ID)
	})

	t.Run("Malang is served by Surabaya", func(t *testing.T) {
		got, err := locator.Nearest(ctx, -7.9666, 112.6326)
		require.NoError(t, err)
		assert.Equal(t, surabaya.ID, got.ID)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		_, err := locator.Nearest(ctx, 120, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestBranchLocator_NoBranches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBranchRepository)
	repo.On("ListWithMarketing", ctx).Return(nil, nil)

	_, err := NewBranchLocator(repo, logger).Nearest(ctx, 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrNoAgentAvailable)
}

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, distanceKm(1, 1, 1, 1), 1e-9)
	// Jakarta to Bandung is roughly 120 km as the crow flies.
	assert.InDelta(t, 120, distanceKm(-6.2088, 106.8456, -6.9175, 107.6191), 10)
}
