package finance

import (
	"testing"

	"loan-origination/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestComputePreview(t *testing.T) {
	b, err := ComputePreview(dec("10000000"), 12, dec("0.02"), dec("0.01"))
	require.NoError(t, err)

	assertDecimal(t, "100000", b.FeesAmount)
	assertDecimal(t, "9900000", b.DisbursedAmount)
	assertDecimal(t, "200000", b.InterestAmount)
	assertDecimal(t, "10300000", b.TotalRepayment)
	assertDecimal(t, "858334", b.EstimatedInstallment)
}

func TestComputeDisbursement(t *testing.T) {
	b, err := ComputeDisbursement(dec("10000000"), 12, dec("0.02"), dec("0.01"))
	require.NoError(t, err)

	assertDecimal(t, "100000", b.FeesAmount)
	assertDecimal(t, "9900000", b.DisbursedAmount)
	assertDecimal(t, "2400000", b.InterestAmount)
	assertDecimal(t, "12400000", b.TotalRepayment)
	assertDecimal(t, "1033334", b.EstimatedInstallment)
}

func TestCompute_InvalidTenor(t *testing.T) {
	for _, tenor := range []int{0, -3} {
		_, err := ComputePreview(dec("1000"), tenor, dec("0.02"), dec("0.01"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTenor)

		_, err = ComputeDisbursement(dec("1000"), tenor, dec("0.02"), dec("0.01"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTenor)
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		rate    string
		feeRate string
	}{
		{"zero amount", "0", "0.02", "0.01"},
		{"negative amount", "-5", "0.02", "0.01"},
		{"negative rate", "1000", "-0.02", "0.01"},
		{"fee above one", "1000", "0.02", "1.5"},
		{"sub-cent amount", "1000.005", "0.02", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputePreview(dec(tt.amount), 6, dec(tt.rate), dec(tt.feeRate))
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestCompute_NoShortfall(t *testing.T) {
	amounts := []string{"1", "999", "1000000", "7333333", "10000001", "123456789.55"}
	rates := []string{"0", "0.0125", "0.02", "0.037"}
	feeRates := []string{"0", "0.01", "0.035"}

	for _, a := range amounts {
		for _, r := range rates {
			for _, f := range feeRates {
				for tenor := 1; tenor <= 36; tenor += 5 {
					for _, compute := range []func(decimal.Decimal, int, decimal.Decimal, decimal.Decimal) (Breakdown, error){ComputePreview, ComputeDisbursement} {
						b, err := compute(dec(a), tenor, dec(r), dec(f))
						require.NoError(t, err)

						assert.True(t, b.DisbursedAmount.Add(b.FeesAmount).Equal(dec(a)))
						paid := b.EstimatedInstallment.Mul(decimal.NewFromInt(int64(tenor)))
						assert.Truef(t, paid.GreaterThanOrEqual(b.TotalRepayment),
							"installment %s * %d < total %s", b.EstimatedInstallment, tenor, b.TotalRepayment)
						assert.True(t, b.EstimatedInstallment.Equal(b.EstimatedInstallment.Truncate(0)))
					}
				}
			}
		}
	}
}

func TestCompute_RoundsToStoredScale(t *testing.T) {
	t.Run("Half tie on fees rounds to even", func(t *testing.T) {
		b, err := ComputePreview(dec("1000001"), 12, dec("0.02"), dec("0.005"))
		require.NoError(t, err)

		assertDecimal(t, "5000", b.FeesAmount)
		assertDecimal(t, "995001", b.DisbursedAmount)
		assertDecimal(t, "20000.02", b.InterestAmount)
		assertDecimal(t, "1025001.02", b.TotalRepayment)
		assert.True(t, b.DisbursedAmount.Add(b.FeesAmount).Equal(dec("1000001")))
	})

	t.Run("Every derived amount fits two decimals", func(t *testing.T) {
		for _, compute := range []func(decimal.Decimal, int, decimal.Decimal, decimal.Decimal) (Breakdown, error){ComputePreview, ComputeDisbursement} {
			b, err := compute(dec("1234567.89"), 7, dec("0.013579"), dec("0.004321"))
			require.NoError(t, err)

			for _, d := range []decimal.Decimal{b.FeesAmount, b.DisbursedAmount, b.InterestAmount, b.TotalRepayment} {
				assert.Truef(t, HasMoneyScale(d), "%s has more than two decimals", d)
			}
			assert.True(t, b.DisbursedAmount.Add(b.FeesAmount).Equal(dec("1234567.89")))
		}
	})
}
