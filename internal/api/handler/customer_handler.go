package handler

import (
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/customer"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// GetProfile handles GET /v1/customers/me
// @Summary Own credit profile
// @Description Returns the caller's plafond, remaining limit and whether the profile is complete enough to apply.
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CustomerProfileResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not a customer"
// @Failure 404 {object} dto.ErrorResponse "No customer record"
// @Router /v1/customers/me [get]
// @Security BearerAuth
func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), actor)
	if err != nil {
		h.logger.DebugContext(r.Context(), "Profile lookup failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerProfileResponse(profile))
}
