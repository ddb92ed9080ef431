package dto

import (
	"testing"
	"time"

	"loan-origination/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCustomerProfileResponse(t *testing.T) {
	updated := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	c := &customer.Customer{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Name:           "Budi Santoso",
		Email:          "budi@example.com",
		PlafondID:      uuid.New(),
		RemainingLimit: decimal.RequireFromString("2500000.50"),
		UpdatedAt:      updated,
	}

	t.Run("Incomplete profile", func(t *testing.T) {
		resp := NewCustomerProfileResponse(&customer.Profile{Customer: c, Complete: false, MissingField: "nik"})

		assert.Equal(t, c.ID.String(), resp.CustomerID)
		assert.Equal(t, c.UserID.String(), resp.UserID)
		assert.Equal(t, c.PlafondID.String(), resp.PlafondID)
		assert.Equal(t, "2500000.5", resp.RemainingLimit)
		assert.False(t, resp.ProfileReady)
		assert.Equal(t, "nik", resp.MissingField)
		assert.Equal(t, updated, resp.UpdatedAt)
	})

	t.Run("Complete profile", func(t *testing.T) {
		resp := NewCustomerProfileResponse(&customer.Profile{Customer: c, Complete: true})

		assert.True(t, resp.ProfileReady)
		assert.Empty(t, resp.MissingField)
	})
}
