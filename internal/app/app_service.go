package app

import (
	"context"
	"fmt"
	"time"

	"storeledger/internal/core"
)

type appService struct {
	orders    core.OrderService
	catalog   core.CatalogService
	reporting core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(orders core.OrderService, catalog core.CatalogService, reporting core.ReportingService) ApplicationService {
	return &appService{
		orders:    orders,
		catalog:   catalog,
		reporting: reporting,
	}
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, includeArchived bool) (*ProductListResult, error) {
	products, err := s.catalog.ListProducts(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req ProductRequest) (*ProductResult, error) {
	p, err := s.catalog.CreateProduct(ctx, req.ItemCode, req.ItemName, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id int, req ProductRequest) (*ProductResult, error) {
	p, err := s.catalog.UpdateProduct(ctx, id, req.ItemName, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) ArchiveProduct(ctx context.Context, id int) error {
	return s.catalog.ArchiveProduct(ctx, id)
}

func (s *appService) ListCustomers(ctx context.Context, includeArchived bool) (*CustomerListResult, error) {
	customers, err := s.catalog.ListCustomers(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResult, error) {
	c, err := s.catalog.CreateCustomer(ctx, req.FullName, req.Address, req.ContactNumber)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) UpdateCustomer(ctx context.Context, id int, req CustomerRequest) (*CustomerResult, error) {
	c, err := s.catalog.UpdateCustomer(ctx, id, req.FullName, req.Address, req.ContactNumber)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) ArchiveCustomer(ctx context.Context, id int) error {
	return s.catalog.ArchiveCustomer(ctx, id)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	orderDate := time.Now()
	if req.OrderDate != "" {
		parsed, err := time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("invalid order date %q: %w", req.OrderDate, err)
		}
		orderDate = parsed
	}

	items := make([]core.OrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = core.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	var order *core.Order
	var err error
	switch req.OrderType {
	case core.OrderTypeCash:
		order, err = s.orders.CreateCashOrder(ctx, req.CustomerID, orderDate, items)
	case core.OrderTypeInstallment:
		order, err = s.orders.CreateInstallmentOrder(ctx, req.CustomerID, orderDate, items, req.InterestRate)
	default:
		return nil, fmt.Errorf("unknown order type %q", req.OrderType)
	}
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *appService) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	var f core.OrderFilter
	if req.OrderType != "" {
		t := core.OrderType(req.OrderType)
		f.OrderType = &t
	}
	if req.Status != "" {
		st := core.OrderStatus(req.Status)
		f.Status = &st
	}
	if req.CustomerID != 0 {
		id := req.CustomerID
		f.CustomerID = &id
	}

	orders, err := s.orders.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *appService) MarkPaymentPaid(ctx context.Context, req MarkPaidRequest) (*OrderResult, error) {
	order, err := s.orders.MarkPaymentPaid(ctx, req.OrderID, req.Day, req.PaymentMethod, req.Notes)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *appService) CancelOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.orders.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func orderResult(o *core.Order) *OrderResult {
	return &OrderResult{
		Order:            o,
		RemainingBalance: o.RemainingBalance(),
		ProgressPercent:  o.ProgressPercent().Round(2),
		PaidDayCount:     o.PaidDayCount(),
	}
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) GetDashboardSummary(ctx context.Context) (*core.DashboardSummary, error) {
	return s.reporting.GetDashboardSummary(ctx)
}

func (s *appService) GetDailyCollections(ctx context.Context, date string) (*core.DailyCollections, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.reporting.GetDailyCollections(ctx, date)
}

func (s *appService) GetOutstandingReceivables(ctx context.Context) (*ReceivablesResult, error) {
	lines, err := s.reporting.GetOutstandingReceivables(ctx)
	if err != nil {
		return nil, err
	}
	result := &ReceivablesResult{Receivables: lines}
	for _, l := range lines {
		result.Total = result.Total.Add(l.RemainingBalance)
	}
	return result, nil
}
