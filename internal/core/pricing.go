package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pricing is the full money breakdown of a proposed order, computed before
// anything is persisted. For cash orders only Subtotal and TotalCost are set.
type Pricing struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Downpayment    decimal.Decimal `json:"downpayment"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Remaining      decimal.Decimal `json:"remaining"`     // TotalCost − Downpayment
	DailyPayment   decimal.Decimal `json:"daily_payment"` // Remaining / ScheduleDays, 2dp
}

// round2 rounds to the currency minor unit (2 decimal places, half away from zero).
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// PriceCart validates the cart and returns its subtotal: the sum of
// quantity × unit price per line, each rounded to 2 decimal places.
func PriceCart(items []OrderItemInput) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, ErrEmptyCart
	}
	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity < 1 {
			return decimal.Zero, fmt.Errorf("line %d: %w", i+1, ErrInvalidQuantity)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("line %d: %w", i+1, ErrInvalidPrice)
		}
		lineTotal := round2(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		subtotal = subtotal.Add(lineTotal)
	}
	return subtotal, nil
}

// PriceInstallment derives the installment money fields from a cart subtotal
// and an interest rate expressed in percent:
//
//	downpayment = round2(subtotal × 2%)   — on the pre-interest subtotal
//	interest    = round2(subtotal × rate / 100)
//	totalCost   = subtotal + interest
//	daily       = round2((totalCost − downpayment) / ScheduleDays)
//
// DailyPayment is the per-day figure shown to the customer; BuildSchedule
// reconciles the final day so the 50-day sum equals Remaining exactly.
func PriceInstallment(subtotal, interestRatePercent decimal.Decimal) (Pricing, error) {
	if interestRatePercent.IsNegative() {
		return Pricing{}, ErrInvalidRate
	}
	downpayment := round2(subtotal.Mul(DownpaymentRate))
	interest := round2(subtotal.Mul(interestRatePercent).Div(decimal.NewFromInt(100)))
	totalCost := subtotal.Add(interest)
	remaining := totalCost.Sub(downpayment)
	daily := round2(remaining.Div(decimal.NewFromInt(ScheduleDays)))

	return Pricing{
		Subtotal:       subtotal,
		Downpayment:    downpayment,
		InterestAmount: interest,
		TotalCost:      totalCost,
		Remaining:      remaining,
		DailyPayment:   daily,
	}, nil
}

// PriceCash prices a cash order: total cost equals the subtotal, with no
// interest, downpayment or schedule. Cash orders settle immediately.
func PriceCash(subtotal decimal.Decimal) Pricing {
	return Pricing{
		Subtotal:  subtotal,
		TotalCost: subtotal,
	}
}
