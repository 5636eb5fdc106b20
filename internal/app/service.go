package app

import (
	"context"

	"storeledger/internal/core"
)

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// ── Catalog ──────────────────────────────────────────────────────────

	ListProducts(ctx context.Context, includeArchived bool) (*ProductListResult, error)
	CreateProduct(ctx context.Context, req ProductRequest) (*ProductResult, error)
	UpdateProduct(ctx context.Context, id int, req ProductRequest) (*ProductResult, error)
	// ArchiveProduct soft-deletes a product. Historical order lines keep
	// their snapshots.
	ArchiveProduct(ctx context.Context, id int) error

	ListCustomers(ctx context.Context, includeArchived bool) (*CustomerListResult, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResult, error)
	UpdateCustomer(ctx context.Context, id int, req CustomerRequest) (*CustomerResult, error)
	ArchiveCustomer(ctx context.Context, id int) error

	// ── Orders ───────────────────────────────────────────────────────────

	// CreateOrder dispatches on req.OrderType: cash orders settle
	// immediately, installment orders get a priced 50-day schedule.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error)

	// GetOrder returns the full aggregate: header, items and (for
	// installment orders) the payment schedule, plus derived metrics.
	GetOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// MarkPaymentPaid records one installment day as collected.
	MarkPaymentPaid(ctx context.Context, req MarkPaidRequest) (*OrderResult, error)

	// CancelOrder halts collection on an active order. Terminal.
	CancelOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// ── Reports ──────────────────────────────────────────────────────────

	GetDashboardSummary(ctx context.Context) (*core.DashboardSummary, error)
	GetDailyCollections(ctx context.Context, date string) (*core.DailyCollections, error)
	GetOutstandingReceivables(ctx context.Context) (*ReceivablesResult, error)
}
