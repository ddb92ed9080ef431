package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidInput = errors.New("invalid input")

	ErrValidation = errors.New("validation failed")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	ErrInvalidTenor = errors.New("tenor must be at least 1")

	ErrInsufficientLimit = errors.New("remaining credit limit is not sufficient")

	ErrRateNotFound = errors.New("interest rate not found")

	ErrTenorUnavailable = errors.New("tenor not available for plafond")

	ErrNoAgentAvailable = errors.New("no marketing agent available")

	ErrDuplicateOpenRequest = errors.New("customer already has an open loan request")

	ErrNotReady = errors.New("loan request is not ready for this operation")

	ErrConflict = errors.New("resource conflict")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

type classification struct {
	target error
	code   string
	status int
}

// Order matters: the first matching sentinel wins.
var classifications = []classification{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrValidation, "INVALID_INPUT", http.StatusBadRequest},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrInvalidTenor, "INVALID_TENOR", http.StatusBadRequest},
	{ErrInsufficientLimit, "INSUFFICIENT_LIMIT", http.StatusUnprocessableEntity},
	{ErrRateNotFound, "RATE_NOT_FOUND", http.StatusUnprocessableEntity},
	{ErrTenorUnavailable, "TENOR_UNAVAILABLE", http.StatusUnprocessableEntity},
	{ErrNoAgentAvailable, "NO_AGENT_AVAILABLE", http.StatusUnprocessableEntity},
	{ErrDuplicateOpenRequest, "DUPLICATE_OPEN_REQUEST", http.StatusConflict},
	{ErrNotReady, "NOT_READY", http.StatusBadRequest},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrDatabase, "PERSISTENCE_FAILURE", http.StatusInternalServerError},
}

// Classify returns the machine code and HTTP status for err.
// Unknown errors are reported as internal failures.
func Classify(err error) (string, int) {
	for _, c := range classifications {
		if errors.Is(err, c.target) {
			return c.code, c.status
		}
	}
	return "INTERNAL", http.StatusInternalServerError
}

func HTTPStatus(err error) int {
	_, status := Classify(err)
	return status
}
