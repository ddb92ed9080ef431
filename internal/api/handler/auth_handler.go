package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/identity"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const devTokenTTL = 24 * time.Hour

type AuthHandler struct {
	cfg    config.AuthConfig
	logger *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a development token for the given identity.
//
// @Summary Generate a JWT bearer token
// @Description Development helper. Signs a token carrying user id, role and branch.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Identity to embed"
// @Success 200 {object} map[string]string "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	actor, err := tokenActor(req)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := middleware.NewActorToken(h.cfg.JWTSecret, actor, devTokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInternalServer, err))
		return
	}
	h.logger.InfoContext(r.Context(), "Issued development token", "userID", actor.UserID, "role", actor.Role)
	respondJSON(w, http.StatusOK, map[string]string{"token": "Bearer " + token})
}

func tokenActor(req dto.TokenRequest) (identity.Actor, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return identity.Actor{}, apperrors.NewValidationError("userId", "must be a UUID")
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return identity.Actor{}, err
	}
	actor := identity.Actor{UserID: userID, Role: role}
	if req.BranchID != "" {
		if actor.BranchID, err = uuid.Parse(req.BranchID); err != nil {
			return identity.Actor{}, apperrors.NewValidationError("branchId", "must be a UUID")
		}
	}
	return actor, nil
}
