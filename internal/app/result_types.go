package app

import (
	"github.com/shopspring/decimal"

	"storeledger/internal/core"
)

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product `json:"product"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// CustomerResult is returned by single-customer operations.
type CustomerResult struct {
	Customer *core.Customer `json:"customer"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// OrderResult is returned by order operations. The metric fields are derived
// from the aggregate at read time, never stored.
type OrderResult struct {
	Order            *core.Order     `json:"order"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	ProgressPercent  decimal.Decimal `json:"progress_percent"`
	PaidDayCount     int             `json:"paid_day_count"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order `json:"orders"`
}

// ReceivablesResult is returned by GetOutstandingReceivables.
type ReceivablesResult struct {
	Receivables []core.ReceivableLine `json:"receivables"`
	Total       decimal.Decimal       `json:"total"`
}
