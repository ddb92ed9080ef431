package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("nik", "must not be empty")

	assert.ErrorIs(t, err, ErrValidation)
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "nik", vErr.Field)
	assert.Contains(t, err.Error(), "validation failed for field 'nik'")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: loan request x", ErrNotFound), "NOT_FOUND", http.StatusNotFound},
		{"forbidden", ErrForbidden, "FORBIDDEN", http.StatusForbidden},
		{"validation", NewValidationError("amount", "bad"), "INVALID_INPUT", http.StatusBadRequest},
		{"insufficient limit", fmt.Errorf("%w: need more", ErrInsufficientLimit), "INSUFFICIENT_LIMIT", http.StatusUnprocessableEntity},
		{"duplicate", ErrDuplicateOpenRequest, "DUPLICATE_OPEN_REQUEST", http.StatusConflict},
		{"not ready", ErrNotReady, "NOT_READY", http.StatusBadRequest},
		{"persistence", WrapDatabaseError(errors.New("boom"), "save failed"), "PERSISTENCE_FAILURE", http.StatusInternalServerError},
		{"unknown", errors.New("something else"), "INTERNAL", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
		})
	}
}
