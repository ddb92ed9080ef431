package customer

import (
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the credit state of a borrower plus the profile fields that
// must be filled in before a loan request may be submitted.
type Customer struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Email          string
	PlafondID      uuid.UUID
	RemainingLimit decimal.Decimal

	NIK               string
	Address           string
	Phone             string
	MotherMaidenName  string
	Occupation        string
	Salary            decimal.Decimal
	BankAccountNumber string
	HouseStatus       string
	IDCardURL         string
	SelfieURL         string

	UpdatedAt time.Time
}

// CheckProfileComplete returns a validation error naming the first missing field.
func (c *Customer) CheckProfileComplete() error {
	required := []struct {
		field string
		value string
	}{
		{"nik", c.NIK},
		{"address", c.Address},
		{"phone", c.Phone},
		{"motherMaidenName", c.MotherMaidenName},
		{"occupation", c.Occupation},
		{"bankAccountNumber", c.BankAccountNumber},
		{"houseStatus", c.HouseStatus},
		{"idCardUrl", c.IDCardURL},
		{"selfieUrl", c.SelfieURL},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.NewValidationError(r.field, "profile field must be completed before applying")
		}
	}
	if !c.Salary.IsPositive() {
		return apperrors.NewValidationError("salary", "profile field must be completed before applying")
	}
	return nil
}

func (c *Customer) HasLimitFor(amount decimal.Decimal) bool {
	return c.RemainingLimit.GreaterThanOrEqual(amount)
}

// Deduct consumes amount from the remaining limit. The limit is never restored here.
func (c *Customer) Deduct(amount decimal.Decimal) error {
	if !c.HasLimitFor(amount) {
		return fmt.Errorf("%w: remaining %s, requested %s",
			apperrors.ErrInsufficientLimit, c.RemainingLimit.String(), amount.String())
	}
	c.RemainingLimit = c.RemainingLimit.Sub(amount)
	c.UpdatedAt = time.Now()
	return nil
}
