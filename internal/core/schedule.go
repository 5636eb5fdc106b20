package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// completionTolerance is half a currency minor unit. An order counts as fully
// collected when totalCollected >= totalCost − completionTolerance, absorbing
// the sub-cent noise a rounded schedule can produce.
var completionTolerance = decimal.NewFromFloat(0.005)

// BuildSchedule generates the ScheduleDays-entry payment schedule for the
// remaining balance (totalCost − downpayment). Every day's amount is rounded
// to 2 decimal places and the final day is adjusted so the schedule sum
// reconciles to remaining exactly — simple division would otherwise drift by
// up to half a cent per day across the 50 rows.
func BuildSchedule(remaining decimal.Decimal) []Payment {
	daily := round2(remaining.Div(decimal.NewFromInt(ScheduleDays)))

	// For very small balances half-up rounding can overshoot so far that the
	// reconciled last day would go negative. Rounding down instead keeps every
	// day non-negative: 49 × roundDown(r/50) never exceeds r.
	firstDays := daily.Mul(decimal.NewFromInt(ScheduleDays - 1))
	if remaining.Sub(firstDays).IsNegative() {
		daily = remaining.Div(decimal.NewFromInt(ScheduleDays)).RoundDown(2)
		firstDays = daily.Mul(decimal.NewFromInt(ScheduleDays - 1))
	}

	payments := make([]Payment, ScheduleDays)
	for i := range payments {
		payments[i] = Payment{Day: i + 1, Amount: daily}
	}
	payments[ScheduleDays-1].Amount = remaining.Sub(firstDays)
	return payments
}

// MarkPaid returns a copy of the order with the given schedule day marked
// paid. The receiver is not mutated: the payments vector is replaced, never
// edited in place, so a failed persistence attempt cannot leave a half-applied
// aggregate behind.
//
// Recomputes TotalCollected as downpayment + sum of paid amounts and, when the
// order is fully collected, transitions status to completed.
func (o *Order) MarkPaid(day int, method, notes string, now time.Time) (*Order, error) {
	if o.OrderType != OrderTypeInstallment || o.Terms == nil {
		return nil, fmt.Errorf("order %d has no payment schedule: %w", o.ID, ErrPaymentNotFound)
	}
	if o.Status != OrderStatusActive {
		return nil, fmt.Errorf("order %d is %s: %w", o.ID, o.Status, ErrOrderClosed)
	}
	if day < 1 || day > ScheduleDays {
		return nil, fmt.Errorf("day %d: %w", day, ErrPaymentNotFound)
	}

	idx := -1
	for i, p := range o.Payments {
		if p.Day == day {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("day %d: %w", day, ErrPaymentNotFound)
	}
	if o.Payments[idx].Paid {
		return nil, fmt.Errorf("day %d: %w", day, ErrPaymentAlreadyPaid)
	}

	payments := make([]Payment, len(o.Payments))
	copy(payments, o.Payments)

	entry := &payments[idx]
	entry.Paid = true
	entry.DatePaid = &now
	entry.UpdatedAt = now
	if method != "" {
		entry.PaymentMethod = &method
	}
	if notes != "" {
		entry.Notes = &notes
	}

	collected := o.Terms.Downpayment
	for _, p := range payments {
		if p.Paid {
			collected = collected.Add(p.Amount)
		}
	}

	updated := *o
	updated.Payments = payments
	updated.TotalCollected = collected
	updated.UpdatedAt = now
	if collected.GreaterThanOrEqual(o.TotalCost.Sub(completionTolerance)) {
		updated.Status = OrderStatusCompleted
	}
	return &updated, nil
}

// RemainingBalance is totalCost − totalCollected. Zero for cash orders, which
// are fully collected at creation.
func (o *Order) RemainingBalance() decimal.Decimal {
	return o.TotalCost.Sub(o.TotalCollected)
}

// ProgressPercent is the collected share of total cost, capped at 100.
// Returns zero when totalCost is zero.
func (o *Order) ProgressPercent() decimal.Decimal {
	if o.TotalCost.IsZero() {
		return decimal.Zero
	}
	pct := o.TotalCollected.Div(o.TotalCost).Mul(decimal.NewFromInt(100))
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// PaidDayCount is the number of schedule entries already paid.
func (o *Order) PaidDayCount() int {
	n := 0
	for _, p := range o.Payments {
		if p.Paid {
			n++
		}
	}
	return n
}
