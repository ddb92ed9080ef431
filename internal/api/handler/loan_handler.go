package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/identity"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	code, status := apperrors.Classify(err)
	message, field := err.Error(), ""

	var validationError *apperrors.ValidationError
	if errors.As(err, &validationError) {
		message, field = validationError.Message, validationError.Field
	}
	if status >= http.StatusInternalServerError {
		slog.Default().Error("Unhandled internal error", "error", err)
		message = "An unexpected error occurred."
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

func actorFrom(r *http.Request) (identity.Actor, error) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		return identity.Actor{}, fmt.Errorf("%w: no authenticated caller", apperrors.ErrUnauthorized)
	}
	return actor, nil
}

func getRequestIDFromURL(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "loanRequestID")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%w: loanRequestID not found in URL path", apperrors.ErrInvalidInput)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid loanRequestID %q", apperrors.ErrInvalidInput, idStr)
	}
	return id, nil
}

// CreateLoanRequest submits a loan request for the authenticated customer.
//
// @Summary Submit a loan request
// @Description Creates a loan request, assigns the nearest branch and a marketing agent, and places it in marketing review. Repeating a request with the same Idempotency-Key replays the first response.
// @Tags Loan Requests
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client supplied idempotency key"
// @Param request body dto.CreateLoanRequest true "Loan request payload"
// @Success 201 {object} dto.LoanRequestResponse "Loan request created"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or incomplete profile"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a customer"
// @Failure 409 {object} dto.ErrorResponse "Customer already has an open request"
// @Failure 422 {object} dto.ErrorResponse "Limit, rate or agent not available"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /v1/loan-requests [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoanRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	created, err := h.service.Create(r.Context(), actor, req.ToInput())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Loan request rejected", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanRequestResponse(created, false))
}

// PreviewLoan quotes a loan for the authenticated customer's plafond.
//
// @Summary Preview a loan
// @Tags Loan Requests
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Amount and tenor"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Limit exceeded or tenor unavailable"
// @Router /v1/loan-requests/loan-preview [post]
// @Security BearerAuth
func (h *LoanHandler) PreviewLoan(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	preview, err := h.service.Preview(r.Context(), actor, req.Amount, req.Tenor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPreviewResponse(preview))
}

// SimulateWeb quotes a loan against a named plafond without a customer.
//
// @Summary Simulate a loan for a plafond
// @Tags Simulation
// @Accept json
// @Produce json
// @Param request body dto.SimulateWebRequest true "Plafond, amount and tenor"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown plafond"
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/loan-requests/loan-web-simulate [post]
func (h *LoanHandler) SimulateWeb(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateWebRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	preview, err := h.service.SimulateForPlafond(r.Context(), req.PlafondName, req.Amount, req.Tenor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPreviewResponse(preview))
}

// SimulatePublic quotes a loan against the default public plafond.
//
// @Summary Public loan simulation
// @Tags Simulation
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Amount and tenor"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/loan-requests/loan-simulate [post]
func (h *LoanHandler) SimulatePublic(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	preview, err := h.service.SimulatePublic(r.Context(), req.Amount, req.Tenor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPreviewResponse(preview))
}

// GetLoanRequest returns a request with its audit trail.
//
// @Summary Loan request detail
// @Tags Loan Requests
// @Produce json
// @Param loanRequestID path string true "Loan request ID"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/loan-requests/{loanRequestID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoanRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := getRequestIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	req, err := h.service.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(req, true))
}

type transitionFunc func(ctx context.Context, actor identity.Actor, id uuid.UUID, in loan.TransitionInput) (*loan.LoanRequest, error)

func (h *LoanHandler) handleTransition(w http.ResponseWriter, r *http.Request, stage string, fn transitionFunc) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := getRequestIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var body dto.ReviewRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	in, err := body.ToInput()
	if err != nil {
		respondError(w, err)
		return
	}

	updated, err := fn(r.Context(), actor, id, in)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Transition refused",
			slog.String("stage", stage),
			slog.String("loanRequestID", id.String()),
			slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(updated, false))
}

// ReviewByMarketing records the assigned agent's decision.
//
// @Summary Marketing review
// @Tags Approval
// @Accept json
// @Produce json
// @Param loanRequestID path string true "Loan request ID"
// @Param request body dto.ReviewRequest true "MARKETING_RECOMMENDED or MARKETING_REJECTED"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/loan-requests/review/{loanRequestID} [put]
// @Security BearerAuth
func (h *LoanHandler) ReviewByMarketing(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "marketing", h.service.Review)
}

// ReviewByBranchManager records the branch manager's decision.
//
// @Summary Branch manager review
// @Tags Approval
// @Accept json
// @Produce json
// @Param loanRequestID path string true "Loan request ID"
// @Param request body dto.ReviewRequest true "BM_APPROVED or BM_REJECTED"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/loan-requests/branch-manager/review/{loanRequestID} [put]
// @Security BearerAuth
func (h *LoanHandler) ReviewByBranchManager(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "branch_manager", h.service.ReviewByBranchManager)
}

// Disburse records the back office outcome.
//
// @Summary Disburse or decline
// @Tags Approval
// @Accept json
// @Produce json
// @Param loanRequestID path string true "Loan request ID"
// @Param request body dto.ReviewRequest true "DISBURSED or DISBURSEMENT_DECLINED"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse "Not ready for disbursement"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Insufficient remaining limit"
// @Router /v1/loan-requests/back-office/disburse/{loanRequestID} [put]
// @Security BearerAuth
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "back_office", h.service.Disburse)
}

// Transition applies any permitted transition for the caller's role.
//
// @Summary Generic workflow transition
// @Tags Approval
// @Accept json
// @Produce json
// @Param loanRequestID path string true "Loan request ID"
// @Param request body dto.ReviewRequest true "Target status and notes"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/{loanRequestID}/status [put]
// @Security BearerAuth
func (h *LoanHandler) Transition(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "generic", h.service.Transition)
}

type listFunc func(ctx context.Context, actor identity.Actor) ([]loan.LoanRequest, error)

func (h *LoanHandler) handleList(w http.ResponseWriter, r *http.Request, fn listFunc) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requests, err := fn(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanRequestList(requests))
}

// ListForMarketing returns the agent's review queue.
//
// @Summary Marketing queue
// @Tags Approval
// @Produce json
// @Success 200 {array} dto.LoanRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/marketing/all [get]
// @Security BearerAuth
func (h *LoanHandler) ListForMarketing(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.ListForMarketing)
}

// ListForBranchManager returns recommended requests of the manager's branch.
//
// @Summary Branch manager queue
// @Tags Approval
// @Produce json
// @Success 200 {array} dto.LoanRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/branch-manager/all [get]
// @Security BearerAuth
func (h *LoanHandler) ListForBranchManager(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.ListForBranchManager)
}

// ListForBackOffice returns approved requests of the officer's branch.
//
// @Summary Back office queue
// @Tags Approval
// @Produce json
// @Success 200 {array} dto.LoanRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/back-office/all [get]
// @Security BearerAuth
func (h *LoanHandler) ListForBackOffice(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.ListForBackOffice)
}

// ListInProgress returns the customer's open requests.
//
// @Summary Requests in progress
// @Tags Loan Requests
// @Produce json
// @Success 200 {array} dto.LoanRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/in-progress [get]
// @Security BearerAuth
func (h *LoanHandler) ListInProgress(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.ListInProgress)
}

// History returns the customer's finished requests.
//
// @Summary Loan history
// @Tags Loan Requests
// @Produce json
// @Param status query string true "APPROVED or REJECTED"
// @Success 200 {array} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/loan-requests/history [get]
// @Security BearerAuth
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	group := loan.HistoryGroup(r.URL.Query().Get("status"))
	h.handleList(w, r, func(ctx context.Context, actor identity.Actor) ([]loan.LoanRequest, error) {
		return h.service.History(ctx, actor, group)
	})
}
