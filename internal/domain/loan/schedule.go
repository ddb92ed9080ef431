package loan

import (
	"fmt"
	"time"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
)

type ScheduleEntry struct {
	ID            uuid.UUID
	LoanRequestID uuid.UUID
	Period        int
	DueDate       time.Time
	DueAmount     decimal.Decimal
	Status        PaymentStatus
}

// GenerateSchedule spreads the total repayment over tenor monthly entries.
// Every entry is the estimated installment, capped at what is still owed, and
// the last entry takes the remainder so the schedule sums exactly to the total.
// Small totals can therefore leave trailing entries at zero.
func GenerateSchedule(r *LoanRequest, start time.Time) ([]ScheduleEntry, error) {
	if r.Tenor < 1 || !r.EstimatedInstallment.IsPositive() {
		return nil, fmt.Errorf("%w: invalid loan terms for schedule generation", apperrors.ErrInvalidInput)
	}

	schedule := make([]ScheduleEntry, 0, r.Tenor)
	accumulated := decimal.Zero

	for period := 1; period <= r.Tenor; period++ {
		remaining := r.TotalRepayment.Sub(accumulated)
		amount := decimal.Min(r.EstimatedInstallment, remaining)
		if period == r.Tenor {
			amount = remaining
		}

		schedule = append(schedule, ScheduleEntry{
			ID:            uuid.New(),
			LoanRequestID: r.ID,
			Period:        period,
			DueDate:       dueDate(start, period),
			DueAmount:     amount,
			Status:        PaymentStatusPending,
		})
		accumulated = accumulated.Add(amount)
	}

	if !accumulated.Equal(r.TotalRepayment) {
		return nil, fmt.Errorf("%w: schedule total %s does not match total repayment %s",
			apperrors.ErrInternalServer, accumulated.String(), r.TotalRepayment.String())
	}
	return schedule, nil
}

// dueDate moves start forward by months, keeping the day of month but
// clamping it to the last day of shorter months (Jan 31 -> Feb 28).
func dueDate(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	target := m + time.Month(months)
	if last := time.Date(y, target+1, 0, 0, 0, 0, 0, start.Location()).Day(); d > last {
		d = last
	}
	hh, mm, ss := start.Clock()
	return time.Date(y, target, d, hh, mm, ss, start.Nanosecond(), start.Location())
}
