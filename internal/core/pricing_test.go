package core_test

import (
	"errors"
	"testing"

	"storeledger/internal/core"

	"github.com/shopspring/decimal"
)

func TestPriceCart_Validation(t *testing.T) {
	tests := []struct {
		name    string
		items   []core.OrderItemInput
		wantErr error
	}{
		{
			name:    "empty cart",
			items:   nil,
			wantErr: core.ErrEmptyCart,
		},
		{
			name: "zero quantity",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 0, UnitPrice: decimal.NewFromInt(100)},
			},
			wantErr: core.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: -3, UnitPrice: decimal.NewFromInt(100)},
			},
			wantErr: core.ErrInvalidQuantity,
		},
		{
			name: "negative price",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
			},
			wantErr: core.ErrInvalidPrice,
		},
		{
			name: "free item is fine",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 1, UnitPrice: decimal.Zero},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.PriceCart(tt.items)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("PriceCart failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			// every cart validation error matches the umbrella sentinel
			if !errors.Is(err, core.ErrInvalidCart) {
				t.Errorf("expected error to match ErrInvalidCart, got %v", err)
			}
		})
	}
}

func TestPriceCart_Subtotal(t *testing.T) {
	tests := []struct {
		name  string
		items []core.OrderItemInput
		want  string
	}{
		{
			name: "single line",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
			},
			want: "1000",
		},
		{
			name: "multiple lines",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
				{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("0.01")},
			},
			want: "59.98",
		},
		{
			name: "line totals rounded to 2dp",
			items: []core.OrderItemInput{
				{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("33.335")},
			},
			want: "100.01", // 100.005 rounds half away from zero
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.PriceCart(tt.items)
			if err != nil {
				t.Fatalf("PriceCart failed: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected subtotal %s, got %s", tt.want, got)
			}
		})
	}
}

// Scenario: 2 × 500 at 5% interest — the worked example for the whole
// installment money model.
func TestPriceInstallment_WorkedExample(t *testing.T) {
	subtotal, err := core.PriceCart([]core.OrderItemInput{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
	})
	if err != nil {
		t.Fatalf("PriceCart failed: %v", err)
	}
	if !subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected subtotal 1000, got %s", subtotal)
	}

	p, err := core.PriceInstallment(subtotal, decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("PriceInstallment failed: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"downpayment", p.Downpayment, "20"},
		{"interest", p.InterestAmount, "50"},
		{"total cost", p.TotalCost, "1050"},
		{"remaining", p.Remaining, "1030"},
		{"daily payment", p.DailyPayment, "20.60"},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}
}

func TestPriceInstallment_ZeroRate(t *testing.T) {
	p, err := core.PriceInstallment(decimal.NewFromInt(1000), decimal.Zero)
	if err != nil {
		t.Fatalf("PriceInstallment failed: %v", err)
	}
	if !p.InterestAmount.IsZero() {
		t.Errorf("expected zero interest, got %s", p.InterestAmount)
	}
	if !p.TotalCost.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected total 1000, got %s", p.TotalCost)
	}
}

func TestPriceInstallment_NegativeRate(t *testing.T) {
	_, err := core.PriceInstallment(decimal.NewFromInt(1000), decimal.NewFromInt(-1))
	if !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

func TestPriceCash(t *testing.T) {
	p := core.PriceCash(decimal.NewFromInt(250))
	if !p.TotalCost.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected total 250, got %s", p.TotalCost)
	}
	if !p.Downpayment.IsZero() || !p.InterestAmount.IsZero() {
		t.Errorf("cash pricing must carry no downpayment or interest: %+v", p)
	}
}
