package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-origination/internal/domain/identity"
	"loan-origination/internal/pkg/apperrors"
)

// Profile is the caller's own credit state plus whether a loan request can
// be submitted with the profile as it stands.
type Profile struct {
	*Customer
	Complete     bool
	MissingField string
}

type CustomerService interface {
	GetProfile(ctx context.Context, actor identity.Actor) (*Profile, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewCustomerService(repo Repository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) GetProfile(ctx context.Context, actor identity.Actor) (*Profile, error) {
	if !actor.Is(identity.RoleCustomer) {
		return nil, fmt.Errorf("%w: only customers have a credit profile", apperrors.ErrForbidden)
	}
	logCtx := s.logger.With(slog.String("userID", actor.UserID.String()))

	c, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "No customer record for user")
		} else {
			logCtx.ErrorContext(ctx, "Failed to load customer profile", slog.Any("error", err))
		}
		return nil, err
	}

	p := &Profile{Customer: c, Complete: true}
	var ve *apperrors.ValidationError
	if err := c.CheckProfileComplete(); errors.As(err, &ve) {
		p.Complete = false
		p.MissingField = ve.Field
	}
	logCtx.DebugContext(ctx, "Customer profile loaded", slog.Bool("complete", p.Complete))
	return p, nil
}
