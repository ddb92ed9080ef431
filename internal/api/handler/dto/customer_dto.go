package dto

import (
	"time"

	"loan-origination/internal/domain/customer"
)

type CustomerProfileResponse struct {
	CustomerID     string    `json:"customerId"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PlafondID      string    `json:"plafondId"`
	RemainingLimit string    `json:"remainingLimit"`
	ProfileReady   bool      `json:"profileComplete"`
	MissingField   string    `json:"missingField,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewCustomerProfileResponse(p *customer.Profile) CustomerProfileResponse {
	return CustomerProfileResponse{
		CustomerID:     p.ID.String(),
		UserID:         p.UserID.String(),
		Name:           p.Name,
		Email:          p.Email,
		PlafondID:      p.PlafondID.String(),
		RemainingLimit: money(p.RemainingLimit),
		ProfileReady:   p.Complete,
		MissingField:   p.MissingField,
		UpdatedAt:      p.UpdatedAt,
	}
}
