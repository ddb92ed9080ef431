// Package identity describes who is calling a workflow operation.
package identity

import (
	"context"
	"fmt"
	"strings"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer      Role = "CUSTOMER"
	RoleMarketing     Role = "MARKETING"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleBackOffice    Role = "BACK_OFFICE"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleMarketing, RoleBranchManager, RoleBackOffice:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, s)
	}
}

// Actor is the authenticated caller. BranchID is uuid.Nil for customers.
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	BranchID uuid.UUID
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}

// InBranch reports whether the actor is attached to branchID.
func (a Actor) InBranch(branchID uuid.UUID) bool {
	return a.BranchID != uuid.Nil && a.BranchID == branchID
}

type contextKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}
