package identity

import (
	"context"
	"testing"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" branch_manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleBranchManager, r)

	_, err = ParseRole("SUPER_ADMIN")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestActor_InBranch(t *testing.T) {
	branch := uuid.New()

	assert.True(t, Actor{BranchID: branch}.InBranch(branch))
	assert.False(t, Actor{BranchID: uuid.New()}.InBranch(branch))
	assert.False(t, Actor{}.InBranch(uuid.Nil))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	a := Actor{UserID: uuid.New(), Role: RoleMarketing, BranchID: uuid.New()}
	got, ok := FromContext(WithActor(context.Background(), a))
	require.True(t, ok)
	assert.Equal(t, a, got)
}
