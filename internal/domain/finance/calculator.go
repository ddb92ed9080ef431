// Package finance holds the pure money arithmetic of a loan request.
package finance

import (
	"fmt"

	"loan-origination/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places amounts are stored with.
const MoneyScale = 2

// Breakdown is the set of derived amounts for a principal, tenor and rate pair.
type Breakdown struct {
	FeesAmount           decimal.Decimal
	DisbursedAmount      decimal.Decimal
	InterestAmount       decimal.Decimal
	TotalRepayment       decimal.Decimal
	EstimatedInstallment decimal.Decimal
}

// ComputePreview uses single-period interest and includes fees in the total.
// It is the path used for previews, simulations and creation snapshots.
func ComputePreview(amount decimal.Decimal, tenor int, interestRate, feeRate decimal.Decimal) (Breakdown, error) {
	if err := validate(amount, tenor, interestRate, feeRate); err != nil {
		return Breakdown{}, err
	}

	fees := RoundMoney(amount.Mul(feeRate))
	interest := RoundMoney(amount.Mul(interestRate))
	total := amount.Add(interest).Add(fees)

	return Breakdown{
		FeesAmount:           fees,
		DisbursedAmount:      amount.Sub(fees),
		InterestAmount:       interest,
		TotalRepayment:       total,
		EstimatedInstallment: Installment(total, tenor),
	}, nil
}

// ComputeDisbursement uses interest accrued over every period and leaves fees
// out of the total. It is applied when the back office disburses.
func ComputeDisbursement(amount decimal.Decimal, tenor int, interestRate, feeRate decimal.Decimal) (Breakdown, error) {
	if err := validate(amount, tenor, interestRate, feeRate); err != nil {
		return Breakdown{}, err
	}

	fees := RoundMoney(amount.Mul(feeRate))
	interest := RoundMoney(amount.Mul(interestRate).Mul(decimal.NewFromInt(int64(tenor))))
	total := amount.Add(interest)

	return Breakdown{
		FeesAmount:           fees,
		DisbursedAmount:      amount.Sub(fees),
		InterestAmount:       interest,
		TotalRepayment:       total,
		EstimatedInstallment: Installment(total, tenor),
	}, nil
}

// Installment divides total by tenor rounding up to a whole currency unit,
// so installment*tenor never falls short of total. tenor must be positive.
func Installment(total decimal.Decimal, tenor int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(tenor))).RoundCeil(0)
}

// RoundMoney quantizes d to MoneyScale with banker's rounding. Derived
// amounts are computed from rounded parts so they add up after storage.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

// HasMoneyScale reports whether d carries no more than MoneyScale decimals.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

func validate(amount decimal.Decimal, tenor int, interestRate, feeRate decimal.Decimal) error {
	if tenor < 1 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidTenor, tenor)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidInput)
	}
	if !HasMoneyScale(amount) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", apperrors.ErrInvalidInput, MoneyScale)
	}
	if interestRate.IsNegative() || feeRate.IsNegative() {
		return fmt.Errorf("%w: rates must not be negative", apperrors.ErrInvalidInput)
	}
	if feeRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: fee rate must not exceed 1", apperrors.ErrInvalidInput)
	}
	return nil
}
